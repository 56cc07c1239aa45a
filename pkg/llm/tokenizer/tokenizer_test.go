package tokenizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/webpilot/pkg/types"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 0, Estimate("  \n\t "))
	// 7 runes / 4 = 1, but 4 words
	assert.Equal(t, 4, Estimate("a b c d"))
	assert.Equal(t, 10, Estimate("abcdefghijabcdefghijabcdefghijabcdefghij"))
}

func TestNilTokenizerFallsBack(t *testing.T) {
	var tok *Tokenizer
	assert.Equal(t, Estimate("hello there world"), tok.CountTokens("hello there world"))
}

func TestCountMessagesTokens(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Logf("tiktoken unavailable, using heuristic: %v", err)
		tok = nil
	}

	plain := []*types.Message{types.NewUserMessage("go to example.com")}
	withCall := []*types.Message{
		types.NewUserMessage("go to example.com"),
		types.NewToolRequestMessage("", []types.ToolInvocation{{
			ID:        "call_1",
			Name:      "navigate",
			Arguments: json.RawMessage(`{"url":"example.com"}`),
		}}),
	}

	base := tok.CountMessagesTokens(plain)
	assert.Greater(t, base, perMessageOverhead)
	assert.Greater(t, tok.CountMessagesTokens(withCall), base)
	assert.Equal(t, 0, tok.CountMessagesTokens(nil))
	assert.Equal(t, base, tok.CountMessagesTokens(append(plain, nil)))
}

func TestCountTokensKnownValue(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	// "hello world" is two tokens in cl100k_base
	assert.Equal(t, 2, tok.CountTokens("hello world"))
}
