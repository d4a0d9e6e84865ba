package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ragchat/src/core/rag"
	"ragchat/src/infrastructure/events"
	"ragchat/src/infrastructure/integrations/ollama"
	"ragchat/src/log"
	"ragchat/src/storage/memory"
	"ragchat/src/storage/minioctrl"
	"ragchat/src/storage/postgres/documentctrl"
	"ragchat/src/storage/redisctrl"
	"ragchat/src/storage/weaviate"
)

// app holds the wired services shared by the serve, chat and ingest commands.
type app struct {
	session  *rag.Session
	store    rag.VectorStore
	client   *ollama.Client
	ingestor *rag.Ingestor
	pipeline *rag.Pipeline
	history  rag.HistoryStore
	registry rag.DocumentRegistry
	bus      *events.Bus

	collection string
	closers    []func() error
}

func buildApp() (*app, error) {
	a := &app{
		session:    rag.NewSession(),
		collection: viper.GetString("vector.collection"),
	}

	timeout, err := time.ParseDuration(viper.GetString("ollama.timeout"))
	if err != nil {
		log.Error(err, "Invalid ollama timeout, using default 120s")
		timeout = 120 * time.Second
	}
	a.client = ollama.NewClient(
		viper.GetString("ollama.url"),
		&http.Client{Timeout: timeout},
		viper.GetString("ollama.embed_model"),
		viper.GetString("ollama.generate_model"),
		viper.GetInt("ollama.dimension"),
	)

	switch backend := viper.GetString("vector.backend"); backend {
	case "memory":
		a.store = memory.NewStore()
	case "weaviate":
		wc := weaviateClient.New(weaviateClient.Config{
			Host:   viper.GetString("weaviate.host"),
			Scheme: "http",
		})
		a.store = weaviate.NewStore(wc)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}

	switch backend := viper.GetString("history.backend"); backend {
	case "memory":
		a.history = rag.NewMemoryHistory()
	case "redis":
		store := redisctrl.NewHistoryStore(
			viper.GetString("redis.addr"),
			viper.GetString("redis.password"),
			viper.GetInt("redis.db"),
		)
		a.history = store
		a.closers = append(a.closers, store.Close)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}

	ingestor, err := rag.NewIngestor(a.client, a.store, a.session, rag.IngestConfig{
		Collection:    a.collection,
		ChunkSize:     viper.GetInt("ingest.chunk_size"),
		Overlap:       viper.GetInt("ingest.chunk_overlap"),
		Strategy:      viper.GetString("ingest.strategy"),
		MinChunkRunes: viper.GetInt("ingest.min_chunk_chars"),
	})
	if err != nil {
		return nil, err
	}
	a.ingestor = ingestor

	if viper.GetBool("registry.enabled") {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			viper.GetString("postgres.host"),
			viper.GetString("postgres.user"),
			viper.GetString("postgres.password"),
			viper.GetString("postgres.db"),
			viper.GetString("postgres.port"))
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		registry, err := documentctrl.NewDocumentService(db)
		if err != nil {
			return nil, err
		}
		a.registry = registry
		ingestor.WithRegistry(registry)
		a.closers = append(a.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	if viper.GetBool("archive.enabled") {
		archive, err := minioctrl.NewMinioService(
			viper.GetString("minio.endpoint"),
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			false,
		)
		if err != nil {
			return nil, err
		}
		if err := archive.EnsureBucketExists(context.Background()); err != nil {
			return nil, err
		}
		ingestor.WithArchive(archive)
	}

	a.bus = events.NewBus()
	ingestor.WithNotifier(a.bus)
	a.closers = append(a.closers, a.bus.Close)

	retriever := rag.NewRetriever(a.client, a.store, a.collection, viper.GetFloat64("retrieval.min_score"))
	builder := rag.NewPromptBuilder(viper.GetInt("generation.history_turns"))
	a.pipeline = rag.NewPipeline(retriever, builder, a.client, a.history, rag.PipelineConfig{
		RetrieveK:    viper.GetInt("retrieval.k"),
		HistoryTurns: viper.GetInt("generation.history_turns"),
	})

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Error(err, "Error closing resource")
		}
	}
}
