package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter measures a piece of exported text.
type Counter interface {
	// Count returns the number of bytes, tokens, and lines in the given text
	Count(text string) (bytes, tokens, lines int)
}

// ErrTokenizerUnavailable is returned when the tiktoken encoding cannot be
// loaded, for example when its BPE ranks cannot be downloaded.
var ErrTokenizerUnavailable = errors.New("tokenizer unavailable")

// NewCounter returns the counter for the named estimator: "simple" (the
// default) or "tiktoken".
func NewCounter(estimator string) (Counter, error) {
	return newCounter(estimator, "gpt-4")
}

func newCounter(estimator, model string) (Counter, error) {
	switch estimator {
	case "", "simple":
		return SimpleCounter{}, nil
	case "tiktoken":
		c, err := NewTiktokenCounter(model)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTokenizerUnavailable, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown token estimator: %s", estimator)
	}
}

// SimpleCounter estimates tokens as bytes/4
type SimpleCounter struct{}

// Count returns bytes, estimated tokens, and lines for the given text
func (SimpleCounter) Count(text string) (int, int, int) {
	return len(text), len(text) / 4, countLines(text)
}

// TiktokenCounter counts tokens with the encoding of an OpenAI model.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a new TiktokenCounter for the given model
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("unsupported model for tiktoken: %s: %w", model, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Count returns bytes, tokens (using tiktoken), and lines for the given text
func (c *TiktokenCounter) Count(text string) (int, int, int) {
	tokens := c.enc.Encode(text, nil, nil)
	return len(text), len(tokens), countLines(text)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
