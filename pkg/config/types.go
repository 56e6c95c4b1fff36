// Package config defines the groundwork configuration schema and the viper
// loader that resolves it from defaults, config.toml and environment.
package config

// Config represents the groundwork configuration stored as config.toml.
// The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version" mapstructure:"version"`
	Server      ServerConfig      `toml:"server" mapstructure:"server"`
	Storage     StorageConfig     `toml:"storage" mapstructure:"storage"`
	Model       ModelConfig       `toml:"model" mapstructure:"model"`
	Embedding   EmbeddingConfig   `toml:"embedding" mapstructure:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store" mapstructure:"vector_store"`
	Reranker    RerankerConfig    `toml:"reranker" mapstructure:"reranker"`
	Retrieval   RetrievalConfig   `toml:"retrieval" mapstructure:"retrieval"`
	Events      EventsConfig      `toml:"events" mapstructure:"events"`
	Client      ClientConfig      `toml:"client" mapstructure:"client"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty" mapstructure:"listen"`
}

// StorageConfig holds the session store settings.
type StorageConfig struct {
	// Provider selects the backend: "sqlite", "postgres" or "memory".
	Provider string `toml:"provider,omitempty" mapstructure:"provider"`

	SQLitePath  string `toml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn,omitempty" mapstructure:"postgres_dsn"`
}

// ModelConfig holds the chat model settings.
type ModelConfig struct {
	Provider string `toml:"provider,omitempty" mapstructure:"provider"`
	Target   string `toml:"target,omitempty" mapstructure:"target"`
	Model    string `toml:"model,omitempty" mapstructure:"model"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty" mapstructure:"provider"`
	Target     string `toml:"target,omitempty" mapstructure:"target"`
	Model      string `toml:"model,omitempty" mapstructure:"model"`
	Dimensions uint   `toml:"dimensions,omitempty" mapstructure:"dimensions"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	// Provider selects the backend: "sqlite", "qdrant" or "memory".
	Provider string `toml:"provider,omitempty" mapstructure:"provider"`

	// Target is a file path for sqlite or host:port for qdrant.
	Target string `toml:"target,omitempty" mapstructure:"target"`

	Collection string `toml:"collection,omitempty" mapstructure:"collection"`
}

// RerankerConfig holds cross-encoder reranker settings. An empty target
// disables reranking.
type RerankerConfig struct {
	Target    string  `toml:"target,omitempty" mapstructure:"target"`
	Threshold float64 `toml:"threshold,omitempty" mapstructure:"threshold"`
}

// RetrievalConfig holds retrieval tuning.
type RetrievalConfig struct {
	TopK int `toml:"top_k,omitempty" mapstructure:"top_k"`
}

// EventsConfig holds the Kafka event stream settings. No brokers means the
// event stream is disabled.
type EventsConfig struct {
	Brokers []string `toml:"brokers,omitempty" mapstructure:"brokers"`
	Topic   string   `toml:"topic,omitempty" mapstructure:"topic"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// API server (e.g. groundwork ask, groundwork sessions).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty" mapstructure:"api_target"`
}
