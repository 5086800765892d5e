package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/embedder/pkg/embeddings"
	"github.com/papercomputeco/embedder/pkg/embeddings/openai"
)

const testAPIKeyEnv = "EMBEDDER_TEST_OPENAI_KEY"

// fakeOpenAI emulates an OpenAI-compatible /embeddings endpoint that returns
// data entries in reverse index order.
type fakeOpenAI struct {
	dimensions int

	authHeaders []string
	inputs      [][]string
}

func (f *fakeOpenAI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/embeddings", func(w http.ResponseWriter, r *http.Request) {
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.inputs = append(f.inputs, req.Input)

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}

		data := make([]datum, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			vector := make([]float32, f.dimensions)
			vector[0] = float32(i)
			data = append(data, datum{Object: "embedding", Index: i, Embedding: vector})
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	})

	return mux
}

var _ = Describe("Embedder", func() {
	var (
		fake     *fakeOpenAI
		server   *httptest.Server
		embedder *openai.Embedder
		ctx      context.Context
	)

	BeforeEach(func() {
		fake = &fakeOpenAI{dimensions: 3}
		server = httptest.NewServer(fake.handler())
		ctx = context.Background()
		os.Setenv(testAPIKeyEnv, "sk-test")

		var err error
		embedder, err = openai.NewEmbedder(openai.Config{
			BaseURL:   server.URL,
			Model:     "text-embedding-3-small",
			APIKeyEnv: testAPIKeyEnv,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.Unsetenv(testAPIKeyEnv)
		server.Close()
	})

	Describe("Load", func() {
		It("probes the model and records its dimensionality", func() {
			Expect(embedder.Load(ctx)).To(Succeed())

			info := embedder.Info()
			Expect(info.Name).To(Equal("text-embedding-3-small"))
			Expect(info.Dimensions).To(Equal(3))
		})

		It("fails with ErrModelLoad when the api key env is empty", func() {
			os.Unsetenv(testAPIKeyEnv)

			err := embedder.Load(ctx)
			Expect(err).To(MatchError(embeddings.ErrModelLoad))
			Expect(err.Error()).To(ContainSubstring(testAPIKeyEnv))
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

			It("sends the bearer token from the configured env var", func() {
				_, err := embedder.EmbedBatch(ctx, []string{"hello"})
				Expect(err).NotTo(HaveOccurred())
				Expect(fake.authHeaders).NotTo(BeEmpty())
				Expect(fake.authHeaders[len(fake.authHeaders)-1]).To(Equal("Bearer sk-test"))
			})

			It("re-orders results by index", func() {
				vectors, err := embedder.EmbedBatch(ctx, []string{"a", "b", "c"})
				Expect(err).NotTo(HaveOccurred())

				Expect(vectors).To(HaveLen(3))
				for i, vector := range vectors {
					Expect(vector[0]).To(Equal(float32(i)))
				}
			})

			It("sends the whole batch as a single request", func() {
				_, err := embedder.EmbedBatch(ctx, []string{"one", "two"})
				Expect(err).NotTo(HaveOccurred())

				// First request is the Load probe.
				Expect(fake.inputs).To(HaveLen(2))
				Expect(fake.inputs[1]).To(Equal([]string{"one", "two"}))
			})
		})
	})
})
