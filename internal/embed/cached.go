package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of cached embeddings.
const DefaultCacheSize = 4096

// CachedEmbedder wraps an Embedder with an in-memory LRU cache.
// Repeated queries and re-indexed documents skip the model round trip.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with an LRU cache of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// cacheKey hashes text together with the model name so swapping models
// never serves stale vectors.
func (e *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(e.inner.ModelName() + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// Embed returns the cached embedding or delegates to the inner embedder.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := e.cacheKey(text)
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, vec)
	return vec, nil
}

// EmbedBatch embeds texts, serving cached entries and batching only the
// misses through the inner embedder.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := e.cache.Get(e.cacheKey(text)); ok {
			result[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return result, nil
	}

	vecs, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		i := missIdx[j]
		result[i] = vec
		e.cache.Add(e.cacheKey(texts[i]), vec)
	}
	return result, nil
}

// Dimensions returns the inner embedder's dimension.
func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// ModelName returns the inner embedder's model identifier.
func (e *CachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}

// Available delegates to the inner embedder.
func (e *CachedEmbedder) Available(ctx context.Context) bool {
	return e.inner.Available(ctx)
}

// Close purges the cache and closes the inner embedder.
func (e *CachedEmbedder) Close() error {
	e.cache.Purge()
	return e.inner.Close()
}

// Len reports the number of cached embeddings.
func (e *CachedEmbedder) Len() int {
	return e.cache.Len()
}
