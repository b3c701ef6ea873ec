package errors

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	original := New("original")
	wrapped := Wrapf(original, "decode field %s", "P31")

	assert.Contains(t, wrapped.Error(), "decode field P31")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapStoreIO(t *testing.T) {
	err := WrapStoreIO(sql.ErrConnDone, "open reader")
	require.Error(t, err)

	assert.True(t, IsStoreIOError(err))
	assert.True(t, Is(err, sql.ErrConnDone), "cause must survive the mark")
	assert.Contains(t, err.Error(), "open reader")
	assert.False(t, IsNotFoundError(err))
}

func TestWrapStoreIONil(t *testing.T) {
	assert.Nil(t, WrapStoreIO(nil, "context"))
}

func TestSentinelConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NewNotFoundError("entity %s", "Q42"), IsNotFoundError},
		{"invalid request", NewInvalidRequestError("limit %d", -1), IsInvalidRequestError},
		{"schema violation", NewSchemaViolation("unknown property %s", "P999"), IsSchemaViolation},
		{"unsupported pattern", NewUnsupportedPattern("object without predicate"), IsUnsupportedPatternError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(Wrap(tt.err, "outer")))
		})
	}
}

func TestSentinelsDoNotCrossMatch(t *testing.T) {
	err := NewSchemaViolation("bad calendar %q", "20x1")
	assert.False(t, IsStoreIOError(err))
	assert.False(t, IsUnsupportedPatternError(err))
	assert.False(t, IsNotFoundError(nil))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("timeout"), "increase busy_timeout")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "increase busy_timeout", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func ExampleWrapStoreIO() {
	err := WrapStoreIO(New("disk I/O error"), "commit batch")
	fmt.Println(err)
	fmt.Println(IsStoreIOError(err))
	// Output:
	// commit batch: disk I/O error
	// true
}
