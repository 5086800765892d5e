package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/embedder/pkg/config"
)

var _ = Describe("NewDefaultConfig", func() {
	It("populates every field", func() {
		cfg := config.NewDefaultConfig()

		Expect(cfg.Server.Listen).To(Equal(":8000"))
		Expect(cfg.Embedding.Provider).To(Equal("ollama"))
		Expect(cfg.Embedding.Target).To(Equal("http://localhost:11434"))
		Expect(cfg.Embedding.Model).To(Equal("all-minilm"))
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("decodes section-structured TOML", func() {
		data := []byte(`
version = 0

[server]
listen = ":9000"

[embedding]
provider = "openai"
model = "text-embedding-3-small"
`)

		cfg, err := config.ParseConfigTOML(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Listen).To(Equal(":9000"))
		Expect(cfg.Embedding.Provider).To(Equal("openai"))
		Expect(cfg.Embedding.Model).To(Equal("text-embedding-3-small"))
	})

	It("rejects malformed TOML", func() {
		_, err := config.ParseConfigTOML([]byte("not = [valid"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Configer", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("returns defaults when no config file exists", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Embedding.Model).To(Equal("all-minilm"))
	})

	It("round-trips values through set and get", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("embedding.model", "nomic-embed-text")).To(Succeed())

		value, err := cfger.GetConfigValue("embedding.model")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("nomic-embed-text"))

		// The file on disk reflects the change too.
		data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("nomic-embed-text"))
	})

	It("fills unset fields with defaults after a partial save", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("server.listen", ":9999")).To(Succeed())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Listen).To(Equal(":9999"))
		Expect(cfg.Embedding.Provider).To(Equal("ollama"))
	})

	It("rejects unknown keys", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("bogus.key", "x")).NotTo(Succeed())

		_, err = cfger.GetConfigValue("bogus.key")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("returns every supported key", func() {
		keys := config.ValidConfigKeys()

		Expect(keys).To(ContainElements(
			"server.listen",
			"embedding.provider",
			"embedding.target",
			"embedding.model",
		))

		for _, key := range keys {
			Expect(config.IsValidConfigKey(key)).To(BeTrue())
		}
	})

	It("rejects unknown keys", func() {
		Expect(config.IsValidConfigKey("nope")).To(BeFalse())
	})
})

var _ = Describe("InitViper", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("applies defaults when no config file exists", func() {
		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("server.listen")).To(Equal(":8000"))
		Expect(v.GetString("embedding.model")).To(Equal("all-minilm"))
	})

	It("reads values from config.toml", func() {
		content := []byte("[embedding]\nmodel = \"nomic-embed-text\"\n")
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), content, 0o600)).To(Succeed())

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("embedding.model")).To(Equal("nomic-embed-text"))
		// Unset keys still fall back to defaults.
		Expect(v.GetString("embedding.provider")).To(Equal("ollama"))
	})

	It("lets environment variables override the config file", func() {
		content := []byte("[embedding]\nmodel = \"nomic-embed-text\"\n")
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), content, 0o600)).To(Succeed())

		GinkgoT().Setenv("EMBEDDER_EMBEDDING_MODEL", "all-minilm")

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("embedding.model")).To(Equal("all-minilm"))
	})
})
