// Package embeddings
package embeddings

import "context"

// ModelInfo describes the loaded embedding model. Zero values mean the
// backend does not expose the attribute.
type ModelInfo struct {
	// Name is the model identifier the backend was configured with.
	Name string

	// Dimensions is the length of every vector the model produces.
	Dimensions int

	// MaxSequenceLength is the longest input the model accepts, in tokens.
	MaxSequenceLength int

	// Device is the compute device the model runs on (e.g. "cpu", "cuda:0").
	Device string
}

// Embedder provides batch text embedding capabilities backed by a single
// preloaded model.
type Embedder interface {
	// Load performs the one-time blocking startup of the backing model.
	// It must succeed before EmbedBatch is called; a failed Load means the
	// embedder is unusable.
	Load(ctx context.Context) error

	// EmbedBatch converts texts into vector embeddings as one batch call.
	// The result has one vector per input, in input order, all with
	// identical length.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Info reports metadata about the loaded model.
	Info() ModelInfo

	// Close releases any resources held by the embedder.
	Close() error
}
