package reporting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	t.Run("report key", func(t *testing.T) {
		t.Parallel()

		err := `failed to fetch report: upstream throttled for key deadbeef-8315-465d-9d44-cfc238c64f71`
		want := `failed to fetch report: upstream throttled for key <uuid>`
		require.Equal(t, want, sanitizeError(err))
	})

	t.Run("unhyphenated uuid", func(t *testing.T) {
		t.Parallel()

		err := `failed to fetch report: upstream throttled for key deadbeef8315465d9d44cfc238c64f71`
		want := `failed to fetch report: upstream throttled for key <uuid>`
		require.Equal(t, want, sanitizeError(err))
	})

	t.Run("no uuid", func(t *testing.T) {
		t.Parallel()

		err := `computation abandoned before settling`
		require.Equal(t, err, sanitizeError(err))
	})
}
