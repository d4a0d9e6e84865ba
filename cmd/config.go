package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for Ollama
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("ollama.embed_model", "OLLAMA_EMBED_MODEL")
	viper.BindEnv("ollama.generate_model", "OLLAMA_GENERATE_MODEL")
	viper.BindEnv("ollama.dimension", "OLLAMA_DIMENSION")
	viper.BindEnv("ollama.timeout", "OLLAMA_TIMEOUT")

	// Map environment variables to Viper keys for the vector store
	viper.BindEnv("vector.backend", "VECTOR_BACKEND")
	viper.BindEnv("vector.collection", "VECTOR_COLLECTION")
	viper.BindEnv("weaviate.host", "WEAVIATE_HOST")

	// Map environment variables to Viper keys for retrieval and ingestion
	viper.BindEnv("retrieval.k", "RETRIEVAL_K")
	viper.BindEnv("retrieval.min_score", "RETRIEVAL_MIN_SCORE")
	viper.BindEnv("ingest.chunk_size", "INGEST_CHUNK_SIZE")
	viper.BindEnv("ingest.chunk_overlap", "INGEST_CHUNK_OVERLAP")
	viper.BindEnv("ingest.strategy", "INGEST_STRATEGY")
	viper.BindEnv("ingest.min_chunk_chars", "INGEST_MIN_CHUNK_CHARS")
	viper.BindEnv("generation.history_turns", "GENERATION_HISTORY_TURNS")

	// Map environment variables to Viper keys for PostgreSQL
	viper.BindEnv("registry.enabled", "REGISTRY_ENABLED")
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.db", "POSTGRES_DB")

	// Map environment variables to Viper keys for MinIO
	viper.BindEnv("archive.enabled", "ARCHIVE_ENABLED")
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")

	// Map environment variables to Viper keys for history and the server
	viper.BindEnv("history.backend", "HISTORY_BACKEND")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Set default values for Ollama
	viper.SetDefault("ollama.url", "http://localhost:11434/api")
	viper.SetDefault("ollama.embed_model", "nomic-embed-text")
	viper.SetDefault("ollama.generate_model", "llama3")
	viper.SetDefault("ollama.dimension", 768)
	viper.SetDefault("ollama.timeout", "120s")

	// Set default values for the vector store
	viper.SetDefault("vector.backend", "memory")
	viper.SetDefault("vector.collection", "Workspace")
	viper.SetDefault("weaviate.host", "localhost:8088")

	// Set default values for retrieval and ingestion
	viper.SetDefault("retrieval.k", 5)
	viper.SetDefault("retrieval.min_score", 0.0)
	viper.SetDefault("ingest.chunk_size", 1000)
	viper.SetDefault("ingest.chunk_overlap", 200)
	viper.SetDefault("ingest.strategy", "window")
	viper.SetDefault("ingest.min_chunk_chars", 0)
	viper.SetDefault("generation.history_turns", 6)

	// Set default values for PostgreSQL
	viper.SetDefault("registry.enabled", false)
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.db", "ragchat")

	// Set default values for MinIO
	viper.SetDefault("archive.enabled", false)
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")

	// Set default values for history and the server
	viper.SetDefault("history.backend", "memory")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")
}
