package ai

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter estimates token counts with tiktoken when the provider
// response carries no usage block.
type TokenCounter struct {
	mu     sync.Mutex
	codecs map[tokenizer.Encoding]tokenizer.Codec
}

// NewTokenCounter creates an empty counter; codecs load lazily.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{codecs: make(map[tokenizer.Encoding]tokenizer.Codec)}
}

// Count returns the token count of text under the model's encoding, or
// 0 when the encoding cannot be loaded. Counts feed observability rows
// only, so a zero is acceptable.
func (c *TokenCounter) Count(model, text string) int {
	codec, err := c.codec(modelEncoding(model))
	if err != nil {
		return 0
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}

func (c *TokenCounter) codec(encoding tokenizer.Encoding) (tokenizer.Codec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if codec, ok := c.codecs[encoding]; ok {
		return codec, nil
	}
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, err
	}
	c.codecs[encoding] = codec
	return codec, nil
}

func modelEncoding(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"),
		strings.HasPrefix(model, "gpt-4.1"),
		strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"),
		strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.Cl100kBase
	default:
		return tokenizer.O200kBase
	}
}
