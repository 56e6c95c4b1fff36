package config

const (
	// CurrentV is the currently supported config schema version.
	CurrentV = 0

	defaultListen = ":8080"

	defaultStorageProvider = "sqlite"
	defaultSQLitePath      = "groundwork.db"

	defaultModelProvider = "ollama"
	defaultModelTarget   = "http://localhost:11434"
	defaultModel         = "llama3.2"

	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultVectorProvider   = "sqlite"
	defaultVectorTarget     = "groundwork-vec.db"
	defaultVectorCollection = "groundwork_passages"

	defaultRerankThreshold = 0.5
	defaultTopK            = 10

	defaultEventsTopic = "groundwork.turns"

	defaultClientAPITarget = "http://localhost:8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Storage: StorageConfig{
			Provider:   defaultStorageProvider,
			SQLitePath: defaultSQLitePath,
		},
		Model: ModelConfig{
			Provider: defaultModelProvider,
			Target:   defaultModelTarget,
			Model:    defaultModel,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultModelProvider,
			Target:     defaultModelTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Target:     defaultVectorTarget,
			Collection: defaultVectorCollection,
		},
		Reranker: RerankerConfig{
			Threshold: defaultRerankThreshold,
		},
		Retrieval: RetrievalConfig{
			TopK: defaultTopK,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
	}
}
