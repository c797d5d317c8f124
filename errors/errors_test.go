package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WrapQueryFailed(nil, "dry run"))
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"configuration", Wrap(ErrConfigurationInvalid, "tags"), IsConfigurationInvalid},
		{"translation", NewTranslationFailed([]string{"x"}), IsTranslationFailed},
		{"invalid argument", NewInvalidArgument("bad id %d", -1), IsInvalidArgument},
		{"query", WrapQueryFailed(New("near WHERE: syntax error"), "check"), IsQueryFailed},
		{"not found", NewNotFound("collection %s", "mm_x"), IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(nil))
			assert.False(t, tt.check(New("unrelated")))
		})
	}
}

func TestNewTranslationFailed_RecordsRawInput(t *testing.T) {
	err := NewTranslationFailed([]string{"green", "teal"})

	assert.Contains(t, err.Error(), "green")
	details := GetAllDetails(err)
	require.Len(t, details, 1)
	assert.Contains(t, details[0], "teal")
}

func TestWrapQueryFailed_KeepsDriverMessage(t *testing.T) {
	driverErr := New("no such column: shade")
	err := WrapQueryFailed(driverErr, "validate predicate")

	assert.True(t, Is(err, ErrQueryFailed))
	assert.Contains(t, err.Error(), "no such column: shade")
	assert.Contains(t, err.Error(), "validate predicate")
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func ExampleNewInvalidArgument() {
	err := NewInvalidArgument("item id %d is not a proper id", 0)
	fmt.Println(err)
	// Output: item id 0 is not a proper id: invalid argument
}
