package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundworkhq/groundwork/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Load", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns default config when no config file exists", func() {
		cfg, err := config.Load(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).NotTo(BeNil())

		defaults := config.NewDefaultConfig()
		Expect(cfg.Version).To(Equal(defaults.Version))
		Expect(cfg.Server.Listen).To(Equal(defaults.Server.Listen))
		Expect(cfg.Storage.Provider).To(Equal(defaults.Storage.Provider))
		Expect(cfg.Storage.SQLitePath).To(Equal(defaults.Storage.SQLitePath))
		Expect(cfg.Model.Provider).To(Equal(defaults.Model.Provider))
		Expect(cfg.Model.Target).To(Equal(defaults.Model.Target))
		Expect(cfg.Model.Model).To(Equal(defaults.Model.Model))
		Expect(cfg.Embedding.Model).To(Equal(defaults.Embedding.Model))
		Expect(cfg.Embedding.Dimensions).To(Equal(defaults.Embedding.Dimensions))
		Expect(cfg.VectorStore.Provider).To(Equal(defaults.VectorStore.Provider))
		Expect(cfg.VectorStore.Collection).To(Equal(defaults.VectorStore.Collection))
		Expect(cfg.Reranker.Threshold).To(Equal(defaults.Reranker.Threshold))
		Expect(cfg.Retrieval.TopK).To(Equal(defaults.Retrieval.TopK))
		Expect(cfg.Events.Topic).To(Equal(defaults.Events.Topic))
		Expect(cfg.Client.APITarget).To(Equal(defaults.Client.APITarget))
	})

	It("loads a valid config file", func() {
		data := `version = 0

[server]
listen = ":9090"

[storage]
provider = "postgres"
postgres_dsn = "postgres://localhost/groundwork"

[model]
model = "llama3.1"

[reranker]
target = "http://localhost:9200/rerank"
threshold = 0.35

[retrieval]
top_k = 4

[events]
brokers = ["localhost:9092", "localhost:9093"]
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Listen).To(Equal(":9090"))
		Expect(cfg.Storage.Provider).To(Equal("postgres"))
		Expect(cfg.Storage.PostgresDSN).To(Equal("postgres://localhost/groundwork"))
		Expect(cfg.Model.Model).To(Equal("llama3.1"))
		Expect(cfg.Reranker.Target).To(Equal("http://localhost:9200/rerank"))
		Expect(cfg.Reranker.Threshold).To(Equal(0.35))
		Expect(cfg.Retrieval.TopK).To(Equal(4))
		Expect(cfg.Events.Brokers).To(Equal([]string{"localhost:9092", "localhost:9093"}))
	})

	It("keeps defaults for sections the file omits", func() {
		data := `version = 0

[model]
model = "mistral"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model.Model).To(Equal("mistral"))
		Expect(cfg.Model.Target).To(Equal(config.NewDefaultConfig().Model.Target))
		Expect(cfg.Server.Listen).To(Equal(config.NewDefaultConfig().Server.Listen))
	})

	It("lets environment variables override file values", func() {
		data := `version = 0

[server]
listen = ":9090"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		os.Setenv("GROUNDWORK_SERVER_LISTEN", ":7070")
		DeferCleanup(os.Unsetenv, "GROUNDWORK_SERVER_LISTEN")

		cfg, err := config.Load(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Listen).To(Equal(":7070"))
	})

	It("returns error for malformed TOML", func() {
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not valid toml [[["), 0o600)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(tmpDir)
		Expect(err).To(HaveOccurred())
		Expect(cfg).To(BeNil())
	})

	It("returns error for unsupported config version", func() {
		data := `version = 99
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(tmpDir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported config version"))
		Expect(cfg).To(BeNil())
	})
})
