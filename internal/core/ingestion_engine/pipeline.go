package ingestionengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/orgsearch-io/orgsearch/internal/config"
	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/core/embedding"
	"github.com/orgsearch-io/orgsearch/internal/core/extract"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

func NewDocumentIngestor(
	obj core.ObjectClient,
	index core.SearchIndex,
	embedder core.EmbeddingProvider,
	llm core.LLMProvider,
	selector *extract.Selector,
	jobs core.JobStore,
	cfg *config.Config,
) *DocumentIngestor {
	return &DocumentIngestor{
		obj:      obj,
		index:    index,
		embedder: embedder,
		llm:      llm,
		selector: selector,
		jobs:     jobs,
		cfg:      cfg,
		queue:    make(chan string, 64),
		opts:     make(map[string]IngestOptions),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled.
func (di *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go func(worker int) {
			for {
				select {
				case <-ctx.Done():
					return
				case jobID, ok := <-di.queue:
					if !ok {
						return
					}
					if err := di.processJob(ctx, jobID); err != nil {
						log.Printf("worker %d: job %s failed: %v", worker, jobID, err)
					}
				}
			}
		}(i)
	}
}

// Submit registers a new job for the given files and queues it. The returned
// job id can be polled immediately; the record starts in the queued state.
func (di *DocumentIngestor) Submit(ctx context.Context, files []models.JobFile, opts IngestOptions) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no files to ingest")
	}

	jobID := uuid.NewString()
	job := &models.IngestionJob{
		ID:        jobID,
		Status:    models.JobQueued,
		Total:     len(files),
		Files:     []models.FileOutcome{},
		Errors:    []string{},
		Pending:   files,
		CreatedAt: time.Now().UTC(),
	}
	if err := di.jobs.Put(ctx, job); err != nil {
		return "", fmt.Errorf("record job: %w", err)
	}

	di.mu.Lock()
	di.opts[jobID] = opts
	di.mu.Unlock()

	select {
	case di.queue <- jobID:
	default:
		// Queue full: block rather than drop, but honor cancellation.
		select {
		case di.queue <- jobID:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return jobID, nil
}

// Progress returns the current job record, or nil for an unknown id.
func (di *DocumentIngestor) Progress(ctx context.Context, jobID string) (*models.IngestionJob, error) {
	return di.jobs.Get(ctx, jobID)
}

func (di *DocumentIngestor) takeOpts(jobID string) IngestOptions {
	di.mu.Lock()
	defer di.mu.Unlock()
	opts := di.opts[jobID]
	delete(di.opts, jobID)
	return opts
}

// update applies a mutation to the job record and persists it.
func (di *DocumentIngestor) update(ctx context.Context, jobID string, fn func(*models.IngestionJob)) {
	job, err := di.jobs.Get(ctx, jobID)
	if err != nil || job == nil {
		log.Printf("job %s: progress read failed: %v", jobID, err)
		return
	}
	fn(job)
	if err := di.jobs.Put(ctx, job); err != nil {
		log.Printf("job %s: progress write failed: %v", jobID, err)
	}
}

// processJob runs every file of the job in order. A single file's failure is
// recorded and the job moves on; only the final status reflects it.
func (di *DocumentIngestor) processJob(ctx context.Context, jobID string) error {
	opts := di.takeOpts(jobID)

	job, err := di.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}

	index := di.index.WithIndex(opts.IndexName)
	embedder := di.embedder.WithModel(opts.EmbedModel)
	dim := opts.EmbedDim
	if dim <= 0 {
		dim = di.cfg.EmbedDim
	}
	batcher := embedding.NewBatcher(embedder, dim)

	for _, file := range job.Pending {
		file := file
		di.update(ctx, jobID, func(j *models.IngestionJob) {
			j.Status = models.JobExtracting
			j.CurrentFile = file.Filename
		})

		result, err := di.ingestOne(ctx, jobID, file, opts, index, batcher)
		di.update(ctx, jobID, func(j *models.IngestionJob) {
			j.Current++
			if err != nil {
				j.Errors = append(j.Errors, fmt.Sprintf("%s: %v", file.Filename, err))
				j.Files = append(j.Files, models.FileOutcome{
					File:  file.Filename,
					OK:    false,
					Error: err.Error(),
				})
			} else {
				j.Files = append(j.Files, models.FileOutcome{
					File:     file.Filename,
					OK:       true,
					SourceID: result.SourceID,
					Chunks:   result.Chunks,
				})
			}
		})
		if err != nil {
			log.Printf("job %s: file %s failed: %v", jobID, file.Filename, err)
		}
	}

	di.update(ctx, jobID, func(j *models.IngestionJob) {
		j.CurrentFile = ""
		j.Pending = nil
		if len(j.Errors) > 0 {
			j.Status = models.JobErrorPartial
		} else {
			j.Status = models.JobDone
		}
	})
	return nil
}

// ingestOne runs the full pipeline for a single file: fetch, extract, clean,
// profile, chunk, embed, upsert.
func (di *DocumentIngestor) ingestOne(
	ctx context.Context,
	jobID string,
	file models.JobFile,
	opts IngestOptions,
	index core.SearchIndex,
	batcher *embedding.Batcher,
) (*models.IngestResult, error) {
	data, err := di.obj.GetFile(ctx, file.Bucket, file.Key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", file.Key, err)
	}

	method := opts.ExtractMethod
	if method == "" {
		method = di.cfg.ExtractMethod
	}
	text, blocks, used, err := di.selector.Extract(ctx, data, file.Filename, method, opts.Fallback)
	if err != nil {
		return nil, err
	}
	log.Printf("job %s: extracted %s via %s (%d bytes of text)", jobID, file.Filename, used, len(text))

	text = Clean(text)
	if text == "" {
		return nil, fmt.Errorf("no text left after cleaning %s", file.Filename)
	}

	fields := map[string]any{}
	if di.llm != nil && !opts.SkipProfile {
		semantic := BuildSemanticText(blocks)
		if semantic == "" {
			semantic = text
			if len(semantic) > semanticTextMaxChars {
				semantic = semantic[:semanticTextMaxChars]
			}
		}
		profile := ExtractProfile(ctx, di.llm, semantic)
		fields = Flatten(profile)
	}

	sourceID := file.SourceID
	if sourceID == "" {
		sourceID = uuid.NewString()
	}

	size, overlap := ChunkParams(len(text), opts.ChunkSize, opts.ChunkOverlap)
	chunks := ChunkText(text, size, overlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunking produced nothing for %s", file.Filename)
	}

	di.update(ctx, jobID, func(j *models.IngestionJob) {
		j.Status = models.JobIndexing
	})

	vectors, err := batcher.EmbedAll(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", file.Filename, err)
	}

	batchSize := opts.BatchUploadSize
	if batchSize <= 0 {
		batchSize = DefaultBatchUploadSize
	}

	batch := make([]map[string]any, 0, batchSize)
	for i, content := range chunks {
		chunk := models.Chunk{
			ID:         fmt.Sprintf("%s-%d", sourceID, i),
			SourceID:   sourceID,
			ChunkIndex: i,
			Content:    content,
			Filepath:   file.Filepath,
			Embedding:  vectors[i],
			Fields:     fields,
		}
		batch = append(batch, chunk.IndexDoc())
		if len(batch) >= batchSize {
			if err := di.flushBatch(ctx, index, batch); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}
	if err := di.flushBatch(ctx, index, batch); err != nil {
		return nil, err
	}

	return &models.IngestResult{
		Filename:  file.Filename,
		SourceID:  sourceID,
		Chunks:    len(chunks),
		ChunkSize: size,
		Overlap:   overlap,
		TextLen:   len(text),
	}, nil
}

// flushBatch upserts one batch. Per-item rejections are logged and tolerated;
// transport-level failures are fatal for the document.
func (di *DocumentIngestor) flushBatch(ctx context.Context, index core.SearchIndex, batch []map[string]any) error {
	if len(batch) == 0 {
		return nil
	}
	err := index.MergeOrUpload(ctx, batch)
	var upsertErr *core.UpsertError
	if errors.As(err, &upsertErr) {
		log.Printf("index rejected %d document(s) in batch: %v", len(upsertErr.Failed), upsertErr)
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}
