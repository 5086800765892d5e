// Package api provides the HTTP embedding service: batch inference plus
// health and metadata endpoints.
package api

import "github.com/papercomputeco/embedder/pkg/embeddings"

// Config is the embedding service configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g. ":8000")
	ListenAddr string

	// ModelName is the configured model identifier, reported by the
	// metadata endpoints.
	ModelName string

	// Embedder is the loaded model handle. A nil Embedder means the model
	// is not loaded and model-dependent endpoints return 503.
	Embedder embeddings.Embedder
}
