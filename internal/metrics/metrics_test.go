package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleCounter(t *testing.T) {
	assert := assert.New(t)

	b, tok, lines := SimpleCounter{}.Count("This is a test.\nIt has two lines.")
	assert.Equal(33, b)
	assert.Equal(8, tok)
	assert.Equal(2, lines)

	_, _, lines = SimpleCounter{}.Count("one\n")
	assert.Equal(1, lines)

	_, _, lines = SimpleCounter{}.Count("")
	assert.Equal(0, lines)
}

func TestNewCounter(t *testing.T) {
	c, err := NewCounter("")
	assert.NoError(t, err)
	assert.IsType(t, SimpleCounter{}, c)

	_, err = NewCounter("bogus")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenizerUnavailable)
}

func TestNewCounterTokenizerUnavailable(t *testing.T) {
	c, err := newCounter("tiktoken", "no-such-model")
	assert.ErrorIs(t, err, ErrTokenizerUnavailable)
	assert.Nil(t, c)
}

func TestTally(t *testing.T) {
	assert := assert.New(t)

	tally := NewTally(SimpleCounter{}, 3)
	for i := 0; i < 20; i++ {
		tally.Add(fmt.Sprintf("f%02d", i), "abcdefgh\n")
	}
	tally.Add("f00", "more")
	tally.Wait()
	tally.Wait()

	assert.Len(tally.Keys(), 20)
	assert.Equal("f00", tally.Keys()[0])

	item, ok := tally.Get("f00")
	assert.True(ok)
	assert.Equal(Item{Bytes: 13, Tokens: 3, Lines: 2}, item)

	total := tally.Total()
	assert.Equal(20*9+4, total.Bytes)
}
