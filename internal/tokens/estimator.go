// Package tokens estimates token counts for LLM payload budgeting.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used when the configured model has no registered
// tokenizer.
const fallbackEncoding = "cl100k_base"

// Estimator counts tokens for a fixed model. It is safe for concurrent use.
type Estimator struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewEstimator creates an estimator for the given model name. The tokenizer
// is resolved lazily on first use.
func NewEstimator(model string) *Estimator {
	return &Estimator{model: model}
}

// Estimate returns the token count for text. It never fails: when no
// tokenizer can be resolved it falls back to a bytes/4 heuristic, which
// overestimates slightly for typical English prose.
func (e *Estimator) Estimate(text string) int {
	e.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(e.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding(fallbackEncoding)
			if err != nil {
				return
			}
		}
		e.enc = enc
	})

	if e.enc == nil {
		return len(text) / 4
	}
	return len(e.enc.Encode(text, nil, nil))
}
