package testutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/embedder/pkg/embeddings"
)

// MockEmbedder is a test embedder that returns deterministic, hash-derived
// embeddings so positional and repeat-call properties can be asserted.
type MockEmbedder struct {
	// Dimensions is the vector length produced. Defaults to 8.
	Dimensions int

	// FailOn causes EmbedBatch to return an error when any input text matches.
	FailOn string

	// LoadErr is returned from Load when set.
	LoadErr error

	// BatchCalls counts EmbedBatch invocations.
	BatchCalls int

	// Name reported via Info. Defaults to "mock-model".
	Name string

	// MaxSequenceLength and Device reported via Info; zero values mean unknown.
	MaxSequenceLength int
	Device            string

	loaded bool
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Dimensions: 8,
		Name:       "mock-model",
	}
}

func (m *MockEmbedder) Load(_ context.Context) error {
	if m.LoadErr != nil {
		return m.LoadErr
	}
	m.loaded = true
	return nil
}

func (m *MockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.BatchCalls++

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if m.FailOn != "" && text == m.FailOn {
			return nil, fmt.Errorf("mock embedding failure for: %s", text)
		}
		vectors[i] = m.embedOne(text)
	}

	return vectors, nil
}

func (m *MockEmbedder) Info() embeddings.ModelInfo {
	return embeddings.ModelInfo{
		Name:              m.Name,
		Dimensions:        m.Dimensions,
		MaxSequenceLength: m.MaxSequenceLength,
		Device:            m.Device,
	}
}

func (m *MockEmbedder) Close() error {
	return nil
}

// embedOne derives a vector from a djb2 hash of the text, so equal inputs
// always produce equal vectors.
func (m *MockEmbedder) embedOne(text string) []float32 {
	var hash uint64 = 5381
	for _, c := range text {
		hash = ((hash << 5) + hash) + uint64(c)
	}

	vector := make([]float32, m.Dimensions)
	for i := range vector {
		vector[i] = float32((hash >> (i % 32)) & 1)
	}
	return vector
}

var _ embeddings.Embedder = (*MockEmbedder)(nil)
