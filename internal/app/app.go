package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/orgsearch-io/orgsearch/internal/config"
	"github.com/orgsearch-io/orgsearch/internal/core"
	db "github.com/orgsearch-io/orgsearch/internal/core/database"
	"github.com/orgsearch-io/orgsearch/internal/core/extract"
	ingest "github.com/orgsearch-io/orgsearch/internal/core/ingestion_engine"
	"github.com/orgsearch-io/orgsearch/internal/core/llm"
	objectclient "github.com/orgsearch-io/orgsearch/internal/core/object-client"
	"github.com/orgsearch-io/orgsearch/internal/core/retrieval"
	"github.com/orgsearch-io/orgsearch/internal/core/searchindex"
	"github.com/orgsearch-io/orgsearch/internal/jobstore"
)

type App struct {
	DBClient     *db.DatabaseClient
	ObjectClient core.ObjectClient
	JobStore     *jobstore.BoltStore
	Ingestor     *ingest.DocumentIngestor
	Engine       *retrieval.Engine
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	var index core.SearchIndex
	switch cfg.IndexBackend {
	case "postgres":
		index, err = searchindex.NewPgIndex(dbClient.DB(), cfg.PgChunkTable)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the postgres index, %w", err)
		}
	default:
		index = searchindex.NewClient(cfg.SearchEndpoint, cfg.SearchIndexName, cfg.SearchAPIKey, cfg.SearchAPIVersion)
	}
	log.Printf("Search index ready (backend=%s, index=%s).", cfg.IndexBackend, cfg.SearchIndexName)

	jobs, err := jobstore.NewBoltStore(cfg.JobStorePath)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the job store, %w", err)
	}

	selector := extract.NewSelector(
		extract.NewDocconvExtractor(),
		extract.NewLayoutExtractor(cfg.LayoutEndpoint, cfg.LayoutAPIKey),
	)

	docIngestor := ingest.NewDocumentIngestor(objClient, index, geminiEmbedder, llmProvider, selector, jobs, cfg)
	docIngestor.Start(ctx, cfg.Workers)

	engine := retrieval.NewEngine(geminiEmbedder, index, cfg.EmbedDim)

	server := NewServer(cfg, dbClient, objClient, docIngestor, engine)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		JobStore:     jobs,
		Ingestor:     docIngestor,
		Engine:       engine,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.JobStore != nil {
		_ = a.JobStore.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
