package csverr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindConstructors(t *testing.T) {
	t.Run("NotFound carries its kind", func(t *testing.T) {
		err := NotFoundf("table %q missing", "users")
		kind, ok := Of(err)
		assert.True(t, ok)
		assert.Equal(t, KindNotFound, kind)
		assert.Contains(t, err.Error(), "users")
	})

	t.Run("Wrap preserves the wrapped error via Unwrap", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(KindIOError, "failed to write", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Of reports false for a plain error", func(t *testing.T) {
		_, ok := Of(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("errors.As unwraps to *Error", func(t *testing.T) {
		err := Constraint("duplicate value")
		var target *Error
		assert.True(t, errors.As(err, &target))
		assert.Equal(t, KindConstraintError, target.Kind)
	})
}
