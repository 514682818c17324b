package embedding

import (
	"context"
	"hash/fnv"
)

// DeterministicProvider maps text to a hashed bag-of-words unit vector.
// It needs no network and always produces the same vector for the same
// text, which makes retrieval results reproducible. Used for offline
// development and tests; identical texts score cosine similarity 1.
type DeterministicProvider struct {
	Dimensions int
}

var _ Provider = (*DeterministicProvider)(nil)

func NewDeterministicProvider(dimensions int) *DeterministicProvider {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &DeterministicProvider{Dimensions: dimensions}
}

func (p *DeterministicProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.Dimensions)

	// Character bigrams instead of space-split words: the knowledge base
	// is largely CJK text without word separators.
	runes := []rune(text)
	if len(runes) == 1 {
		vec[p.bucket(string(runes))]++
	}
	for i := 0; i+1 < len(runes); i++ {
		vec[p.bucket(string(runes[i:i+2]))]++
	}

	return Normalize(vec), nil
}

func (p *DeterministicProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (p *DeterministicProvider) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(p.Dimensions))
}
