package searchindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PgIndex serves the SearchIndex contract from Postgres: cosine distance over
// a pgvector column for the vector side, tsvector full-text rank for the
// lexical side. Non-base chunk fields live in a JSONB profile column.
type PgIndex struct {
	db    *sql.DB
	table string
}

// NewPgIndex binds the index to a chunk table. Hyphenated index names (the
// hosted-index naming convention) are translated to valid table identifiers.
func NewPgIndex(db *sql.DB, table string) (*PgIndex, error) {
	table = strings.ReplaceAll(table, "-", "_")
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid index table name %q", table)
	}
	return &PgIndex{db: db, table: table}, nil
}

func (p *PgIndex) WithIndex(name string) core.SearchIndex {
	if name == "" || name == p.table {
		return p
	}
	idx, err := NewPgIndex(p.db, name)
	if err != nil {
		// Bad names fall back to the configured table rather than panicking
		// mid-query; the caller validated the default at startup.
		return p
	}
	return idx
}

func (p *PgIndex) MergeOrUpload(ctx context.Context, docs []map[string]any) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := fmt.Sprintf(`
		INSERT INTO %s (id, source_id, chunk_index, content, filepath, page_from, page_to, profile, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO UPDATE SET
			source_id   = EXCLUDED.source_id,
			chunk_index = EXCLUDED.chunk_index,
			content     = EXCLUDED.content,
			filepath    = EXCLUDED.filepath,
			page_from   = EXCLUDED.page_from,
			page_to     = EXCLUDED.page_to,
			profile     = EXCLUDED.profile,
			embedding   = EXCLUDED.embedding,
			updated_at  = now()`, p.table)

	var failed []core.UpsertItemError
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		profile, vec, args := splitDoc(doc)
		profileJSON, err := json.Marshal(profile)
		if err != nil {
			failed = append(failed, core.UpsertItemError{Key: id, Message: err.Error()})
			continue
		}
		_, err = tx.ExecContext(ctx, q,
			id, args["source_id"], args["chunk_index"], args["content"], args["filepath"],
			args["page_from"], args["page_to"], profileJSON, pgvector.NewVector(vec))
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	if len(failed) > 0 {
		return &core.UpsertError{Failed: failed}
	}
	return nil
}

// splitDoc separates the relational columns and the embedding from the
// profile payload that goes to JSONB.
func splitDoc(doc map[string]any) (profile map[string]any, vec []float32, cols map[string]any) {
	base := map[string]bool{
		"id": true, "source_id": true, "chunk_index": true, "content": true,
		"filepath": true, "page_from": true, "page_to": true, "content_vector": true,
	}
	profile = make(map[string]any)
	cols = make(map[string]any)
	for k, v := range doc {
		switch {
		case k == "content_vector":
			if fv, ok := v.([]float32); ok {
				vec = fv
			}
		case base[k]:
			cols[k] = v
		default:
			profile[k] = v
		}
	}
	return profile, vec, cols
}

func (p *PgIndex) VectorTopK(ctx context.Context, vector []float32, k int, selectFields []string) ([]models.IndexHit, error) {
	q := fmt.Sprintf(`
		SELECT id, source_id, chunk_index, content, filepath, page_from, page_to, profile,
		       1 - (embedding <=> $1) AS score
		FROM %s
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`, p.table)

	rows, err := p.db.QueryContext(ctx, q, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()
	return scanHits(rows, selectFields)
}

func (p *PgIndex) LexicalTopK(ctx context.Context, text string, top int, selectFields []string) ([]models.IndexHit, error) {
	q := fmt.Sprintf(`
		SELECT id, source_id, chunk_index, content, filepath, page_from, page_to, profile,
		       ts_rank_cd(tsv, websearch_to_tsquery('english', $1)) AS score
		FROM %s
		WHERE tsv @@ websearch_to_tsquery('english', $1)
		ORDER BY score DESC
		LIMIT $2`, p.table)

	rows, err := p.db.QueryContext(ctx, q, text, top)
	if err != nil {
		return nil, fmt.Errorf("lexical query: %w", err)
	}
	defer rows.Close()
	return scanHits(rows, selectFields)
}

func scanHits(rows *sql.Rows, selectFields []string) ([]models.IndexHit, error) {
	var hits []models.IndexHit
	for rows.Next() {
		var (
			id, sourceID, content string
			chunkIndex            int
			filepath              sql.NullString
			pageFrom, pageTo      sql.NullInt64
			profileJSON           []byte
			score                 float64
		)
		if err := rows.Scan(&id, &sourceID, &chunkIndex, &content, &filepath, &pageFrom, &pageTo, &profileJSON, &score); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}

		fields := map[string]any{
			"id":          id,
			"source_id":   sourceID,
			"chunk_index": float64(chunkIndex),
			"content":     content,
		}
		if filepath.Valid {
			fields["filepath"] = filepath.String
		}
		if pageFrom.Valid {
			fields["page_from"] = float64(pageFrom.Int64)
		}
		if pageTo.Valid {
			fields["page_to"] = float64(pageTo.Int64)
		}
		var profile map[string]any
		if len(profileJSON) > 0 {
			if err := json.Unmarshal(profileJSON, &profile); err == nil {
				for k, v := range profile {
					fields[k] = v
				}
			}
		}
		if len(selectFields) > 0 {
			filtered := make(map[string]any, len(selectFields))
			for _, f := range selectFields {
				if v, ok := fields[f]; ok {
					filtered[f] = v
				}
			}
			fields = filtered
		}

		s := score
		hits = append(hits, models.IndexHit{ID: id, Score: &s, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}
	return hits, nil
}

var _ core.SearchIndex = (*PgIndex)(nil)
