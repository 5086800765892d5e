package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/embedder/pkg/utils"
)

const (
	// ServiceName identifies this service in the root endpoint payload.
	ServiceName = "embedder"

	// MaxBatchSize is the largest sentence batch a single request may carry.
	// It bounds peak memory and compute per request.
	MaxBatchSize = 100

	// unknownAttr is reported for model attributes the backend does not expose.
	unknownAttr = "unknown"
)

// ErrorResponse is the uniform error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EmbeddingRequest is a batch of sentences to embed.
type EmbeddingRequest struct {
	Sentences []string `json:"sentences"`

	// Model is accepted for schema compatibility but never switches the
	// loaded model.
	Model string `json:"model,omitempty"`
}

// EmbeddingResponse carries one vector per input sentence, positionally
// aligned with the request.
type EmbeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// ServiceInfoResponse is the static root endpoint payload.
type ServiceInfoResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Model   string `json:"model"`
	Status  string `json:"status"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// ModelInfoResponse reports metadata about the loaded model. MaxSeqLength is
// an int when known and the string "unknown" otherwise, matching the wire
// contract consumers already depend on.
type ModelInfoResponse struct {
	ModelName          string `json:"model_name"`
	MaxSeqLength       any    `json:"max_seq_length"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	Device             string `json:"device"`
}

// handleRoot returns the static service description. It does not depend on
// model readiness.
func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(ServiceInfoResponse{
		Service: ServiceName,
		Version: utils.Version,
		Model:   s.config.ModelName,
		Status:  "running",
	})
}

// handleHealth reports healthy only when the model handle is present.
// Cheap and non-blocking: no inference work happens on this path.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	if s.config.Embedder == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "model not loaded",
		})
	}

	return c.JSON(HealthResponse{
		Status:      "healthy",
		ModelLoaded: true,
	})
}

// handleModelInfo returns best-effort metadata about the loaded model.
func (s *Server) handleModelInfo(c *fiber.Ctx) error {
	if s.config.Embedder == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "model not loaded",
		})
	}

	info := s.config.Embedder.Info()

	var maxSeqLength any = unknownAttr
	if info.MaxSequenceLength > 0 {
		maxSeqLength = info.MaxSequenceLength
	}

	device := info.Device
	if device == "" {
		device = unknownAttr
	}

	return c.JSON(ModelInfoResponse{
		ModelName:          s.config.ModelName,
		MaxSeqLength:       maxSeqLength,
		EmbeddingDimension: info.Dimensions,
		Device:             device,
	})
}

// handleEmbeddings validates and serves a single batch-inference request.
// Preconditions are checked in order: model loaded, non-empty batch, batch
// within the size cap. Validation fails fast, before any model call.
func (s *Server) handleEmbeddings(c *fiber.Ctx) error {
	if s.config.Embedder == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "model not loaded",
		})
	}

	var req EmbeddingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	if len(req.Sentences) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "no sentences provided",
		})
	}

	if len(req.Sentences) > MaxBatchSize {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: fmt.Sprintf("too many sentences (max %d)", MaxBatchSize),
		})
	}

	// The per-request model field is accepted and ignored; surface the
	// mismatch for diagnostics without changing behavior.
	if req.Model != "" && req.Model != s.config.ModelName {
		s.logger.Debug("ignoring per-request model override",
			"requested", req.Model,
			"loaded", s.config.ModelName,
		)
	}

	s.logger.Info("generating embeddings",
		"sentences", len(req.Sentences),
	)

	vectors, err := s.config.Embedder.EmbedBatch(c.Context(), req.Sentences)
	if err != nil {
		s.logger.Error("embedding generation failed",
			"sentences", len(req.Sentences),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to generate embeddings: " + err.Error(),
		})
	}

	dimensions := 0
	if len(vectors) > 0 {
		dimensions = len(vectors[0])
	}
	s.logger.Info("generated embeddings",
		"count", len(vectors),
		"dimensions", dimensions,
	)

	return c.JSON(EmbeddingResponse{Embeddings: vectors})
}
