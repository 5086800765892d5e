// Package openai implements pkg/embeddings' Embedder against
// OpenAI-compatible embedding APIs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/papercomputeco/embedder/pkg/embeddings"
)

const (
	// DefaultModel is the default OpenAI embedding model.
	DefaultModel = "text-embedding-3-small"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultAPIKeyEnv is the environment variable the API key is read from.
	DefaultAPIKeyEnv = "OPENAI_API_KEY"

	probeText = "warmup"
)

// Embedder wraps an OpenAI-compatible embedding API.
type Embedder struct {
	baseURL    string
	model      string
	apiKeyEnv  string
	httpClient *http.Client

	info   embeddings.ModelInfo
	loaded bool
}

// Config holds configuration for the OpenAI embedder.
type Config struct {
	// BaseURL is the API URL (e.g. "https://api.openai.com/v1").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model to use. Defaults to DefaultModel if empty.
	Model string

	// APIKeyEnv names the environment variable holding the bearer token.
	// Defaults to DefaultAPIKeyEnv if empty.
	APIKeyEnv string
}

// NewEmbedder creates a new embedder using an OpenAI-compatible embedding
// API. The model is not contacted until Load is called.
func NewEmbedder(cfg Config) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	apiKeyEnv := cfg.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = DefaultAPIKeyEnv
	}

	return &Embedder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		apiKeyEnv: apiKeyEnv,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Load embeds a probe sentence to verify the model is reachable and to
// record its output dimensionality.
func (e *Embedder) Load(ctx context.Context) error {
	vectors, err := e.embed(ctx, []string{probeText})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", embeddings.ErrModelLoad, e.model, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return fmt.Errorf("%w: %s: empty probe embedding", embeddings.ErrModelLoad, e.model)
	}

	e.info = embeddings.ModelInfo{
		Name:       e.model,
		Dimensions: len(vectors[0]),
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
	return nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Model:          e.model,
		Input:          texts,
		EncodingFormat: "float",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", embeddings.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	apiKey := os.Getenv(e.apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: empty api key from env %s", embeddings.ErrEmbedding, e.apiKeyEnv)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", embeddings.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: api returned status %d: %s", embeddings.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", embeddings.ErrEmbedding, err)
	}

	if len(embedResp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", embeddings.ErrEmbedding)
	}

	// The API does not guarantee data ordering; re-order by index.
	sort.Slice(embedResp.Data, func(i, j int) bool {
		return embedResp.Data[i].Index < embedResp.Data[j].Index
	})

	vectors := make([][]float32, len(embedResp.Data))
	for i, d := range embedResp.Data {
		vectors[i] = d.Embedding
	}

	return vectors, nil
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
