package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// WordCounter counts source words, the unit translation effort is quoted in.
// Japanese has no spaces between words, so it is tokenised with kagome.
type WordCounter struct {
	once sync.Once
	tok  *tokenizer.Tokenizer
	err  error
}

// NewWordCounter creates a counter. The Japanese dictionary is loaded on
// first use.
func NewWordCounter() *WordCounter {
	return &WordCounter{}
}

// Count returns the number of words in text for the given language tag.
func (c *WordCounter) Count(lang, text string) (int, error) {
	if !isJapanese(lang) {
		return len(strings.Fields(text)), nil
	}

	c.once.Do(func() {
		c.tok, c.err = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	})
	if c.err != nil {
		return 0, fmt.Errorf("loading tokenizer: %w", c.err)
	}

	n := 0
	for _, token := range c.tok.Tokenize(text) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		// 記号: punctuation and symbols
		if f := token.Features(); len(f) > 0 && f[0] == "記号" {
			continue
		}
		n++
	}
	return n, nil
}

func isJapanese(lang string) bool {
	l := strings.ToLower(lang)
	return l == "ja" || l == "jpn" || strings.HasPrefix(l, "ja-")
}
