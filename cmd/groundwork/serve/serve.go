// Package servecmder provides the serve command for running the groundwork
// API server.
package servecmder

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/api"
	"github.com/groundworkhq/groundwork/pkg/config"
	embeddingsollama "github.com/groundworkhq/groundwork/pkg/embeddings/ollama"
	"github.com/groundworkhq/groundwork/pkg/eventstream"
	eventkafka "github.com/groundworkhq/groundwork/pkg/eventstream/kafka"
	eventworker "github.com/groundworkhq/groundwork/pkg/eventstream/worker"
	llmollama "github.com/groundworkhq/groundwork/pkg/llm/ollama"
	"github.com/groundworkhq/groundwork/pkg/logger"
	"github.com/groundworkhq/groundwork/pkg/rerank"
	"github.com/groundworkhq/groundwork/pkg/retrieval"
	"github.com/groundworkhq/groundwork/pkg/storage"
	storageinmemory "github.com/groundworkhq/groundwork/pkg/storage/inmemory"
	storagepostgres "github.com/groundworkhq/groundwork/pkg/storage/postgres"
	storagesqlite "github.com/groundworkhq/groundwork/pkg/storage/sqlite"
	"github.com/groundworkhq/groundwork/pkg/turn"
	"github.com/groundworkhq/groundwork/pkg/vector"
	vectorinmemory "github.com/groundworkhq/groundwork/pkg/vector/inmemory"
	vectorqdrant "github.com/groundworkhq/groundwork/pkg/vector/qdrant"
	vectorsqlitevec "github.com/groundworkhq/groundwork/pkg/vector/sqlitevec"
	"github.com/groundworkhq/groundwork/pkg/workflow"
)

type ServeCommander struct {
	cfg    *config.Config
	debug  bool
	logger *zap.Logger
}

const serveLongDesc string = `Run the groundwork API server.

The server exposes session management and the chat streaming endpoint.
Configuration is resolved from flags, GROUNDWORK_* environment variables and
config.toml, in that order of precedence.`

const serveShortDesc string = "Run the groundwork API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	var (
		listen       string
		storageProv  string
		sqlitePath   string
		postgresDSN  string
		modelTarget  string
		model        string
		embedModel   string
		vectorProv   string
		vectorTarget string
		rerankTarget string
		kafkaBrokers []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.cfg, err = config.Load(configDir)
			if err != nil {
				return err
			}

			// Explicit flags win over config file and environment.
			flags := cmd.Flags()
			if flags.Changed("listen") {
				cmder.cfg.Server.Listen = listen
			}
			if flags.Changed("storage") {
				cmder.cfg.Storage.Provider = storageProv
			}
			if flags.Changed("sqlite") {
				cmder.cfg.Storage.SQLitePath = sqlitePath
			}
			if flags.Changed("postgres") {
				cmder.cfg.Storage.PostgresDSN = postgresDSN
			}
			if flags.Changed("model-target") {
				cmder.cfg.Model.Target = modelTarget
				cmder.cfg.Embedding.Target = modelTarget
			}
			if flags.Changed("model") {
				cmder.cfg.Model.Model = model
			}
			if flags.Changed("embed-model") {
				cmder.cfg.Embedding.Model = embedModel
			}
			if flags.Changed("vector") {
				cmder.cfg.VectorStore.Provider = vectorProv
			}
			if flags.Changed("vector-target") {
				cmder.cfg.VectorStore.Target = vectorTarget
			}
			if flags.Changed("reranker") {
				cmder.cfg.Reranker.Target = rerankTarget
			}
			if flags.Changed("kafka-brokers") {
				cmder.cfg.Events.Brokers = kafkaBrokers
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&listen, "listen", "l", defaults.Server.Listen, "Address for the API server to listen on")
	cmd.Flags().StringVar(&storageProv, "storage", defaults.Storage.Provider, "Session store backend (sqlite, postgres, memory)")
	cmd.Flags().StringVarP(&sqlitePath, "sqlite", "s", defaults.Storage.SQLitePath, "Path to the SQLite session database")
	cmd.Flags().StringVar(&postgresDSN, "postgres", "", "PostgreSQL connection string for the session store")
	cmd.Flags().StringVarP(&modelTarget, "model-target", "u", defaults.Model.Target, "Ollama API URL")
	cmd.Flags().StringVarP(&model, "model", "m", defaults.Model.Model, "Chat model name")
	cmd.Flags().StringVar(&embedModel, "embed-model", defaults.Embedding.Model, "Embedding model name")
	cmd.Flags().StringVar(&vectorProv, "vector", defaults.VectorStore.Provider, "Vector store backend (sqlite, qdrant, memory)")
	cmd.Flags().StringVar(&vectorTarget, "vector-target", defaults.VectorStore.Target, "Vector store target (file path for sqlite, host:port for qdrant)")
	cmd.Flags().StringVar(&rerankTarget, "reranker", "", "Cross-encoder reranker URL (empty disables reranking)")
	cmd.Flags().StringSliceVar(&kafkaBrokers, "kafka-brokers", nil, "Kafka broker addresses for turn events (empty disables)")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	store, err := c.createStore()
	if err != nil {
		return err
	}
	defer store.Close()

	vectorDriver, err := c.createVectorDriver()
	if err != nil {
		return err
	}
	defer vectorDriver.Close()

	embedder := embeddingsollama.NewEmbedder(embeddingsollama.Config{
		BaseURL: c.cfg.Embedding.Target,
		Model:   c.cfg.Embedding.Model,
	})
	defer embedder.Close()

	searcher := retrieval.NewVectorSearcher(embedder, vectorDriver, c.logger)

	var scorer rerank.Scorer
	if c.cfg.Reranker.Target != "" {
		scorer = rerank.NewHTTPScorer(rerank.HTTPScorerConfig{BaseURL: c.cfg.Reranker.Target})
		c.logger.Info("reranking enabled", zap.String("target", c.cfg.Reranker.Target))
	}

	model := llmollama.NewClient(llmollama.Config{
		BaseURL: c.cfg.Model.Target,
		Model:   c.cfg.Model.Model,
	})

	graph, err := workflow.New(workflow.Config{
		Model:     model,
		Searcher:  searcher,
		Scorer:    scorer,
		TopK:      c.cfg.Retrieval.TopK,
		Threshold: c.cfg.Reranker.Threshold,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating workflow graph: %w", err)
	}

	events, publisher, err := c.createEventPool()
	if err != nil {
		return err
	}
	if events != nil {
		// Drain the pool before closing the publisher it writes to.
		defer func() {
			events.Close()
			_ = publisher.Close()
		}()
	}

	controller, err := turn.NewController(turn.Config{
		Store:  store,
		Runner: graph,
		Events: events,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating turn controller: %w", err)
	}

	apiServer := api.NewServer(api.Config{
		ListenAddr: c.cfg.Server.Listen,
	}, store, controller, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

func (c *ServeCommander) createStore() (storage.Store, error) {
	switch c.cfg.Storage.Provider {
	case "postgres":
		store, err := storagepostgres.NewStore(context.Background(), c.cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL store: %w", err)
		}
		c.logger.Info("using PostgreSQL session store")
		return store, nil
	case "memory":
		c.logger.Info("using in-memory session store")
		return storageinmemory.NewStore(), nil
	default:
		store, err := storagesqlite.NewStore(c.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		c.logger.Info("using SQLite session store", zap.String("path", c.cfg.Storage.SQLitePath))
		return store, nil
	}
}

func (c *ServeCommander) createVectorDriver() (vector.Driver, error) {
	switch c.cfg.VectorStore.Provider {
	case "qdrant":
		host, port, err := splitHostPort(c.cfg.VectorStore.Target)
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant target %q: %w", c.cfg.VectorStore.Target, err)
		}
		driver, err := vectorqdrant.NewDriver(context.Background(), vectorqdrant.Config{
			Host:       host,
			Port:       port,
			Collection: c.cfg.VectorStore.Collection,
			Dimensions: uint64(c.cfg.Embedding.Dimensions),
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Qdrant driver: %w", err)
		}
		c.logger.Info("using Qdrant vector store", zap.String("target", c.cfg.VectorStore.Target))
		return driver, nil
	case "memory":
		c.logger.Info("using in-memory vector store")
		return vectorinmemory.NewDriver(), nil
	default:
		driver, err := vectorsqlitevec.NewDriver(vectorsqlitevec.Config{
			DBPath:     c.cfg.VectorStore.Target,
			Dimensions: c.cfg.Embedding.Dimensions,
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite-vec driver: %w", err)
		}
		c.logger.Info("using sqlite-vec vector store", zap.String("path", c.cfg.VectorStore.Target))
		return driver, nil
	}
}

func (c *ServeCommander) createEventPool() (*eventworker.Pool, eventstream.Publisher, error) {
	if len(c.cfg.Events.Brokers) == 0 {
		return nil, nil, nil
	}

	publisher, err := eventkafka.NewPublisher(eventkafka.Config{
		Brokers: c.cfg.Events.Brokers,
		Topic:   c.cfg.Events.Topic,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating Kafka publisher: %w", err)
	}

	pool, err := eventworker.NewPool(&eventworker.Config{
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		_ = publisher.Close()
		return nil, nil, fmt.Errorf("creating event worker pool: %w", err)
	}

	c.logger.Info("turn event stream enabled",
		zap.Strings("brokers", c.cfg.Events.Brokers),
		zap.String("topic", c.cfg.Events.Topic),
	)
	return pool, publisher, nil
}

func splitHostPort(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	return host, port, nil
}
