package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/embedder/pkg/embeddings"
	"github.com/papercomputeco/embedder/pkg/embeddings/ollama"
)

// fakeOllama emulates the /api/embed and /api/show endpoints.
type fakeOllama struct {
	dimensions    int
	contextLength int
	failEmbed     bool

	embedRequests [][]string
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		if f.failEmbed {
			http.Error(w, `{"error":"model runner crashed"}`, http.StatusInternalServerError)
			return
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.embedRequests = append(f.embedRequests, req.Input)

		vectors := make([][]float32, len(req.Input))
		for i := range req.Input {
			vector := make([]float32, f.dimensions)
			// Tag the first component with the input index so order is
			// observable.
			vector[0] = float32(i)
			vectors[i] = vector
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": vectors})
	})

	mux.HandleFunc("/api/show", func(w http.ResponseWriter, _ *http.Request) {
		info := map[string]any{}
		if f.contextLength > 0 {
			info["bert.context_length"] = f.contextLength
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"model_info": info})
	})

	return mux
}

var _ = Describe("Embedder", func() {
	var (
		fake     *fakeOllama
		server   *httptest.Server
		embedder *ollama.Embedder
		ctx      context.Context
	)

	BeforeEach(func() {
		fake = &fakeOllama{dimensions: 4, contextLength: 512}
		server = httptest.NewServer(fake.handler())
		ctx = context.Background()

		var err error
		embedder, err = ollama.NewEmbedder(ollama.Config{
			BaseURL: server.URL,
			Model:   "all-minilm",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Load", func() {
		It("probes the model and records its dimensionality", func() {
			Expect(embedder.Load(ctx)).To(Succeed())

			info := embedder.Info()
			Expect(info.Name).To(Equal("all-minilm"))
			Expect(info.Dimensions).To(Equal(4))
		})

		It("reads the context length from the show API", func() {
			Expect(embedder.Load(ctx)).To(Succeed())
			Expect(embedder.Info().MaxSequenceLength).To(Equal(512))
		})

		It("leaves the context length at zero when the show API omits it", func() {
			fake.contextLength = 0
			Expect(embedder.Load(ctx)).To(Succeed())
			Expect(embedder.Info().MaxSequenceLength).To(Equal(0))
		})

		It("fails with ErrModelLoad when the model is unavailable", func() {
			fake.failEmbed = true

			err := embedder.Load(ctx)
			Expect(err).To(MatchError(embeddings.ErrModelLoad))
			Expect(err.Error()).To(ContainSubstring("all-minilm"))
		})
	})

	Describe("EmbedBatch", func() {
		It("returns ErrNotLoaded before Load", func() {
			_, err := embedder.EmbedBatch(ctx, []string{"hello"})
			Expect(err).To(MatchError(embeddings.ErrNotLoaded))
		})

		Context("after a successful Load", func() {
			BeforeEach(func() {
				Expect(embedder.Load(ctx)).To(Succeed())
			})

			It("sends the whole batch as a single request", func() {
				_, err := embedder.EmbedBatch(ctx, []string{"one", "two", "three"})
				Expect(err).NotTo(HaveOccurred())

				// First request is the Load probe.
				Expect(fake.embedRequests).To(HaveLen(2))
				Expect(fake.embedRequests[1]).To(Equal([]string{"one", "two", "three"}))
			})

			It("returns one vector per input in input order", func() {
				vectors, err := embedder.EmbedBatch(ctx, []string{"a", "b", "c"})
				Expect(err).NotTo(HaveOccurred())

				Expect(vectors).To(HaveLen(3))
				for i, vector := range vectors {
					Expect(vector).To(HaveLen(4))
					Expect(vector[0]).To(Equal(float32(i)))
				}
			})

			It("wraps backend failures in ErrEmbedding", func() {
				fake.failEmbed = true

				_, err := embedder.EmbedBatch(ctx, []string{"hello"})
				Expect(err).To(MatchError(embeddings.ErrEmbedding))
				Expect(err.Error()).To(ContainSubstring("model runner crashed"))
			})
		})
	})
})
