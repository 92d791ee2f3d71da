package embed

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// StaticEmbedder generates deterministic embeddings from token hashes.
// It needs no external service, which makes it useful for tests and for
// running without an Ollama install. Quality is far below a learned
// model; vectors are only stable, not semantic.
type StaticEmbedder struct {
	dimensions int
	model      string
}

var _ Embedder = (*StaticEmbedder)(nil)

// NewStaticEmbedder creates a static embedder with the given dimension.
func NewStaticEmbedder(dimensions int) *StaticEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &StaticEmbedder{
		dimensions: dimensions,
		model:      "static-hash",
	}
}

// Embed generates a deterministic embedding for text.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		// Spread each token over a handful of buckets so that
		// sharing tokens moves vectors measurably closer.
		for i := 0; i < 4; i++ {
			idx := int((sum >> (i * 16)) % uint64(e.dimensions))
			sign := float32(1)
			if (sum>>(i*16+15))&1 == 1 {
				sign = -1
			}
			vec[idx] += sign
		}
	}

	return normalizeVector(vec), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

// Dimensions returns the embedding dimension.
func (e *StaticEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the model identifier.
func (e *StaticEmbedder) ModelName() string {
	return e.model
}

// Available always returns true; there is no external dependency.
func (e *StaticEmbedder) Available(_ context.Context) bool {
	return true
}

// Close is a no-op.
func (e *StaticEmbedder) Close() error {
	return nil
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
