package embeddings

import "errors"

var (
	// ErrModelLoad is returned when the backing model fails to load.
	ErrModelLoad = errors.New("model load failed")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrNotLoaded is returned when EmbedBatch is called before Load.
	ErrNotLoaded = errors.New("model not loaded")
)
