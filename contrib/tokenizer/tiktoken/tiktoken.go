package tiktoken

import (
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts and trims text in model tokens
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer resolves name as a model first and as an encoding second.
func NewTiktokenTokenizer(name string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, err
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// Encode returns the token ids of text
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// CountTokens returns the number of tokens in text
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.Encode(text))
}

// Truncate cuts text down to at most maxTokens tokens.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	ids := t.Encode(text)
	if len(ids) <= maxTokens {
		return text
	}
	return t.DecodeIds(ids[:maxTokens])
}

// DecodeIds turns token ids back into text
func (t *Tokenizer) DecodeIds(ids []int) string {
	return t.enc.Decode(ids)
}
