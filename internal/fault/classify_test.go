package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_NilErrorIsSuccess(t *testing.T) {
	out := Classify(map[string]string{"name": "Ann"}, nil)

	require.False(t, out.Failed())
	assert.Equal(t, map[string]string{"name": "Ann"}, out.Value())
	assert.Nil(t, out.Fault())
}

func TestClassify_FaultPassesThroughUnchanged(t *testing.T) {
	f := New(NotFound, "student 42 not found").With("id", "42")

	out := Classify(nil, f)
	require.True(t, out.Failed())
	assert.Same(t, f, out.Fault())

	// also through fmt.Errorf wrapping
	out = Classify(nil, fmt.Errorf("get student: %w", f))
	require.True(t, out.Failed())
	assert.Same(t, f, out.Fault())
}

func TestClassify_ValidationErrors(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(payload{Email: "nope"})
	require.Error(t, err)

	out := Classify(nil, err)
	require.True(t, out.Failed())
	f := out.Fault()
	assert.Equal(t, ValidationFailed, f.Kind)
	assert.Equal(t, "required", f.Context["Name"])
	assert.Equal(t, "email", f.Context["Email"])
	// cause retained for the interceptor's log line
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(f, &verrs))
}

func TestClassify_UnknownErrorBecomesInternal(t *testing.T) {
	cause := errors.New("connection reset by peer")

	out := Classify(nil, cause)
	require.True(t, out.Failed())
	f := out.Fault()
	assert.Equal(t, Internal, f.Kind)
	assert.Equal(t, "connection reset by peer", f.Message)
	assert.ErrorIs(t, f, cause)
}

func TestFail_NilFaultCoercedToInternal(t *testing.T) {
	out := Fail(nil)
	require.True(t, out.Failed())
	assert.Equal(t, Internal, out.Fault().Kind)
}

func TestFromPanic(t *testing.T) {
	t.Run("string value", func(t *testing.T) {
		f := FromPanic("boom")
		assert.Equal(t, Internal, f.Kind)
		assert.Contains(t, f.Message, "boom")
	})

	t.Run("plain error", func(t *testing.T) {
		f := FromPanic(errors.New("nil map write"))
		assert.Equal(t, Internal, f.Kind)
		assert.Equal(t, "nil map write", f.Message)
	})

	t.Run("panicked fault keeps its kind", func(t *testing.T) {
		orig := New(PermissionDenied, "restricted record")
		f := FromPanic(orig)
		assert.Same(t, orig, f)
	})

	t.Run("wrapped fault keeps its kind", func(t *testing.T) {
		err := fmt.Errorf("deep: %w", New(NotFound, "gone"))
		f := FromPanic(err)
		assert.Equal(t, NotFound, f.Kind)
	})
}
