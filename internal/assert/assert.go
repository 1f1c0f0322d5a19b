package assert

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert is a wrapper around assert.Assertions and testing.T
type Assert struct {
	*assert.Assertions
	T *testing.T
}

// New creates a new Assert object
func New(t *testing.T) *Assert {
	return &Assert{
		Assertions: assert.New(t),
		T:          t,
	}
}

// EqualLines compares lines against a block of expected text. Leading and
// trailing blank lines of expected are dropped, so the expected listing can
// be written as a raw string literal starting on its own line.
func (a *Assert) EqualLines(expected string, lines []string, msgAndArgs ...any) bool {
	a.T.Helper()
	want := strings.Split(strings.Trim(expected, "\n"), "\n")
	return a.Equal(strings.Join(want, "\n"), strings.Join(lines, "\n"), msgAndArgs...)
}

// EqualJSON marshals result and compares it with the expected JSON text,
// ignoring formatting differences.
func (a *Assert) EqualJSON(expected string, result any, msgAndArgs ...any) bool {
	a.T.Helper()
	b, err := json.Marshal(result)
	if !a.NoError(err, "Failed to marshal result to JSON") {
		return false
	}
	return a.JSONEq(expected, string(b), msgAndArgs...)
}
