package dataset

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// TextEncoder turns text into one-hot sequences through a BPE tokenizer,
// remapping the tokenizer's sparse token IDs to a dense local vocabulary so
// the one-hot width matches the distinct tokens actually present.
type TextEncoder struct {
	encoding *tiktoken.Tiktoken
	idToken  map[int]int // tokenizer ID -> dense index
	tokens   []int       // dense index -> tokenizer ID
}

// NewTextEncoder creates a text encoder over a tiktoken encoding such as
// "cl100k_base" or "r50k_base".
func NewTextEncoder(encodingName string) (*TextEncoder, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("dataset: loading encoding %q: %w", encodingName, err)
	}
	return &TextEncoder{
		encoding: encoding,
		idToken:  make(map[int]int),
	}, nil
}

// Encode tokenizes text and returns dense vocabulary indices, growing the
// vocabulary as new tokens appear.
func (e *TextEncoder) Encode(text string) []int {
	ids := e.encoding.Encode(text, nil, nil)
	out := make([]int, len(ids))
	for i, id := range ids {
		dense, ok := e.idToken[id]
		if !ok {
			dense = len(e.tokens)
			e.idToken[id] = dense
			e.tokens = append(e.tokens, id)
		}
		out[i] = dense
	}
	return out
}

// Decode maps dense vocabulary indices back to text.
func (e *TextEncoder) Decode(indices []int) (string, error) {
	ids := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(e.tokens) {
			return "", fmt.Errorf("dataset: token index %d out of vocabulary [0,%d)", idx, len(e.tokens))
		}
		ids[i] = e.tokens[idx]
	}
	return e.encoding.Decode(ids), nil
}

// VocabSize returns the dense vocabulary size accumulated so far.
func (e *TextEncoder) VocabSize() int {
	return len(e.tokens)
}

// OneHotSequence encodes text and expands it into one-hot columns sized to
// the current vocabulary. Encode all text before calling this, otherwise
// later growth invalidates the column height.
func (e *TextEncoder) OneHotSequence(indices []int, dtype tensor.DataType) ([]*tensor.RawTensor, error) {
	enc, err := NewOneHotEncoder(e.VocabSize(), dtype)
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(indices)
}
