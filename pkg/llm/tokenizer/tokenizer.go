// Package tokenizer provides client-side token counting for conversation logs.
//
// Counts are estimates used for display and logging; the Reasoning Client's own
// usage report is authoritative when available.
package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/webpilot/pkg/types"
)

// perMessageOverhead approximates the role and separator tokens the chat
// format adds around each message.
const perMessageOverhead = 4

// Tokenizer counts tokens with the cl100k_base encoding.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads the cl100k_base encoding. tiktoken-go may need network access to
// fetch the encoding on first use; callers should fall back to Estimate on error.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the token count of text. A nil Tokenizer falls back to Estimate.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.enc == nil {
		return Estimate(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessagesTokens returns the approximate prompt size of a message log,
// including tool call names and arguments.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		total += perMessageOverhead
		total += t.CountTokens(string(msg.Role))
		total += t.CountTokens(msg.Content)
		for _, call := range msg.ToolCalls {
			total += t.CountTokens(call.Name)
			total += t.CountTokens(string(call.Arguments))
		}
	}
	return total
}

// Estimate is the heuristic used when no encoding is available:
// max(runes/4, word count).
func Estimate(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	return estimate
}
