package embeddings

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// RetryingEmbedder wraps an Embedder with exponential-backoff retries.
// Ingestion runs hundreds of embedding calls against local or remote
// models that hiccup; a transient failure should not scrap the batch.
type RetryingEmbedder struct {
	inner      Embedder
	maxRetries uint64
}

// WithRetries wraps e so each Embed call is retried up to maxRetries
// times with exponential backoff.
func WithRetries(e Embedder, maxRetries uint64) *RetryingEmbedder {
	return &RetryingEmbedder{inner: e, maxRetries: maxRetries}
}

func (r *RetryingEmbedder) Name() string    { return r.inner.Name() }
func (r *RetryingEmbedder) Dimensions() int { return r.inner.Dimensions() }

func (r *RetryingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result [][]float32
	operation := func() error {
		var err error
		result, err = r.inner.Embed(ctx, texts)
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return result, nil
}
