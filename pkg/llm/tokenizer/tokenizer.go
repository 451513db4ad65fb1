// Package tokenizer estimates token counts for transcripts.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/pagepilot/pkg/types"
)

// Encoding is the BPE used for estimates. Local models tokenize differently;
// the counts are indicative only.
const Encoding = "cl100k_base"

// perTurnOverhead approximates the role and separator tokens added per message.
const perTurnOverhead = 4

// Tokenizer counts tokens. A nil *Tokenizer falls back to a length heuristic.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads the encoding. tiktoken may need to fetch the BPE ranks on first
// use, so callers should treat an error as "estimate without it".
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", Encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the token count of text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if t == nil || t.enc == nil {
		return (len(text) + 3) / 4
	}
	return len(t.enc.Encode(text, nil, nil))
}

// CountTurnsTokens returns the estimated prompt size of a transcript.
func (t *Tokenizer) CountTurnsTokens(turns []types.Turn) int {
	total := 0
	for _, turn := range turns {
		total += perTurnOverhead + t.CountTokens(turn.Content)
		if turn.ToolCall != nil {
			total += t.CountTokens(turn.ToolCall.Name) + t.CountTokens(string(turn.ToolCall.Arguments))
		}
	}
	return total
}
