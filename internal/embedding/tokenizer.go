package embedding

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer produces token IDs and the attention mask for a transformer encoder.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask []int64, err error)
}

// Special token IDs of the XLM-RoBERTa vocabulary used by multilingual-e5.
const (
	xlmrBOS = 0
	xlmrPad = 1
	xlmrEOS = 2
)

// SentencePieceTokenizer runs the model's own tokenizer.json (XLM-R sentencepiece unigram).
type SentencePieceTokenizer struct {
	tk *tokenizer.Tokenizer
}

// LoadTokenizer reads a Hugging Face tokenizer.json.
func LoadTokenizer(path string) (*SentencePieceTokenizer, error) {
	if path == "" {
		return nil, fmt.Errorf("tokenizer path is required")
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &SentencePieceTokenizer{tk: tk}, nil
}

// Tokenize returns <s> pieces </s> followed by padding, truncated to maxTokens.
func (t *SentencePieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask []int64, err error) {
	enc, err := t.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: tokenize: %v", ErrEmbedding, err)
	}
	inputIDs, attentionMask = frameTokens(enc.Ids, maxTokens)
	return inputIDs, attentionMask, nil
}

// frameTokens wraps piece IDs in <s> and </s> and pads to maxTokens. Pieces past
// maxTokens-2 are dropped; </s> always closes the sequence.
func frameTokens(pieces []int, maxTokens int) (inputIDs, attentionMask []int64) {
	if maxTokens < 2 {
		maxTokens = 512
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	for i := range inputIDs {
		inputIDs[i] = xlmrPad
	}

	inputIDs[0] = xlmrBOS
	attentionMask[0] = 1
	pos := 1
	for _, id := range pieces {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(id)
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = xlmrEOS
	attentionMask[pos] = 1
	return inputIDs, attentionMask
}

// SplitWords lowercases text and splits it into words on anything that is not a letter or digit.
func SplitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// HashString returns a deterministic non-negative hash for use as a bucket.
func HashString(s string) int {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return int(h & 0x7fffffff)
}
