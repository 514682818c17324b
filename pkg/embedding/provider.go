package embedding

import "context"

// Provider defines the interface for generating text embeddings.
//
// Implementations must fail explicitly when any text cannot be embedded:
// EmbedBatch either returns one vector per input, in input order, or an
// error. It never silently drops or truncates entries.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
