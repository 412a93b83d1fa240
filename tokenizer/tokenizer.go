package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the GPT-3 BPE encoding.
const DefaultEncoding = "r50k_base"

// Tokenizer counts the tokens in a text.
// Implementations must be deterministic and safe for concurrent use.
type Tokenizer interface {
	// Count returns the number of tokens text encodes to.
	Count(text string) int
}

// Tiktoken counts tokens with a tiktoken BPE encoding.
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

var _ Tokenizer = (*Tiktoken)(nil)

// NewTiktoken loads the named encoding. An empty name selects DefaultEncoding.
// The BPE ranks are fetched on first use and cached under TIKTOKEN_CACHE_DIR.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading encoding %q: %w", encoding, err)
	}
	return &Tiktoken{encoding: encoding, enc: enc}, nil
}

// Encoding returns the name of the loaded encoding.
func (t *Tiktoken) Encoding() string {
	return t.encoding
}

// Count returns the number of BPE tokens in text.
// Special-token markers are encoded as ordinary text.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Words counts whitespace-separated words.
type Words struct{}

var _ Tokenizer = Words{}

// Count returns the number of whitespace-separated fields in text.
func (Words) Count(text string) int {
	return len(strings.Fields(text))
}
