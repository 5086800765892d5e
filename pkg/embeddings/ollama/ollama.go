// Package ollama implements pkg/embeddings' Embedder against Ollama's
// embedding APIs.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/embedder/pkg/embeddings"
)

const (
	// DefaultModel is the default embedding model. It is the Ollama
	// packaging of all-MiniLM-L6-v2.
	DefaultModel = "all-minilm"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// probeText is embedded once during Load to warm the model and learn
	// its output dimensionality.
	probeText = "warmup"
)

// Embedder wraps Ollama's embedding API.
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client

	info   embeddings.ModelInfo
	loaded bool
}

// Config holds configuration for the Ollama embedder.
type Config struct {
	// BaseURL is the Ollama API URL (e.g. "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model to use (e.g. "all-minilm",
	// "nomic-embed-text"). Defaults to DefaultModel if empty.
	Model string
}

// embedRequest is the request body for Ollama's embedding API.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the response from Ollama's embedding API.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// showRequest is the request body for Ollama's model show API.
type showRequest struct {
	Model string `json:"model"`
}

// showResponse is the subset of Ollama's model show response we read.
type showResponse struct {
	ModelInfo map[string]any `json:"model_info"`
}

// NewEmbedder creates a new embedder using Ollama's embedding API.
// The model is not contacted until Load is called.
func NewEmbedder(cfg Config) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Embedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Load warms the model with a probe embedding and records its output
// dimensionality. Best-effort metadata (context length) is read from the
// model show API; its absence is not an error.
func (e *Embedder) Load(ctx context.Context) error {
	vectors, err := e.embed(ctx, []string{probeText})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", embeddings.ErrModelLoad, e.model, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return fmt.Errorf("%w: %s: empty probe embedding", embeddings.ErrModelLoad, e.model)
	}

	e.info = embeddings.ModelInfo{
		Name:              e.model,
		Dimensions:        len(vectors[0]),
		MaxSequenceLength: e.probeContextLength(ctx),
	}
	e.loaded = true

	return nil
}

// EmbedBatch converts texts into vector embeddings as one batch call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.loaded {
		return nil, embeddings.ErrNotLoaded
	}

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			embeddings.ErrEmbedding, len(vectors), len(texts))
	}

	return vectors, nil
}

// Info reports metadata about the loaded model.
func (e *Embedder) Info() embeddings.ModelInfo {
	return e.info
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embedRequest{
		Model: e.model,
		Input: texts,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", embeddings.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", embeddings.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", embeddings.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", embeddings.ErrEmbedding, err)
	}

	return embedResp.Embeddings, nil
}

// probeContextLength reads the model's context length from the show API.
// Ollama reports it under an architecture-prefixed key (e.g.
// "bert.context_length"), so match on the suffix. Returns 0 when the
// attribute is unavailable for any reason.
func (e *Embedder) probeContextLength(ctx context.Context) int {
	jsonBody, err := json.Marshal(showRequest{Model: e.model})
	if err != nil {
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/show", bytes.NewReader(jsonBody))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var showResp showResponse
	if err := json.NewDecoder(resp.Body).Decode(&showResp); err != nil {
		return 0
	}

	for key, value := range showResp.ModelInfo {
		if !strings.HasSuffix(key, ".context_length") {
			continue
		}
		if n, ok := value.(float64); ok && n > 0 {
			return int(n)
		}
	}

	return 0
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
