package llm

import (
	"context"
	"iter"
	"time"
)

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout bounds the whole stream, retries included, by d.
// A non-positive d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, timeout: d}
}

func (t *timeoutProvider) Stream(ctx context.Context, req Request) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, t.timeout)
		defer cancel()

		for frag, err := range t.inner.Stream(ctx, req) {
			if !yield(frag, err) || err != nil {
				return
			}
		}
	}
}

func (t *timeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
