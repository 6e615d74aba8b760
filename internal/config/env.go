package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	AIAPIKey   string
	EmbedModel string
	EmbedDim   int
	GenModel   string

	// Remote search index. Backend "rest" talks to the hosted index service;
	// "postgres" serves the same interface from the local pgvector tables.
	IndexBackend     string
	SearchEndpoint   string
	SearchAPIKey     string
	SearchIndexName  string
	SearchAPIVersion string
	PgChunkTable     string

	// Layout-aware extraction service.
	LayoutEndpoint string
	LayoutAPIKey   string

	ExtractMethod string
	JobStorePath  string
	Workers       int
	Port          string
	JWTSecret     string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "orgsearch-docs"),

		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:   getEnvInt("EMBED_DIM", 1536),
		GenModel:   getEnv("GEN_MODEL", "gemini-1.5-flash"),

		IndexBackend:     getEnv("INDEX_BACKEND", "rest"),
		SearchEndpoint:   getEnv("SEARCH_ENDPOINT", ""),
		SearchAPIKey:     getEnv("SEARCH_API_KEY", ""),
		SearchIndexName:  getEnv("SEARCH_INDEX", "org-knowledge-base"),
		SearchAPIVersion: getEnv("SEARCH_API_VERSION", "2023-11-01"),
		PgChunkTable:     getEnv("PG_CHUNK_TABLE", "org_chunks"),

		LayoutEndpoint: getEnv("LAYOUT_ENDPOINT", ""),
		LayoutAPIKey:   getEnv("LAYOUT_API_KEY", ""),

		ExtractMethod: getEnv("EXTRACT_METHOD", "docconv"),
		JobStorePath:  getEnv("JOB_STORE_PATH", "orgsearch-jobs.db"),
		Workers:       getEnvInt("INGEST_WORKERS", 2),
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.IndexBackend == "rest" && cfg.SearchEndpoint == "" {
		log.Fatal("SEARCH_ENDPOINT not set (required for INDEX_BACKEND=rest)")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
