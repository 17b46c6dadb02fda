// Package semstore is the ranked semantic search store over element
// descriptions. Rows live in PostgreSQL; ranking happens in-process by
// cosine similarity over embeddings produced by the embedding engine.
package semstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kalyptra/ariadne/internal/embedding"
)

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Record is one stored element description. Content is the single source of
// truth for equality: two records are the same iff role and content are
// byte-equal.
type Record struct {
	ID      string
	Role    string
	Content string
}

// SearchResult is one ranked hit, score descending across the result list.
type SearchResult struct {
	ID      string
	Content string
	Score   float64
}

const schemaSQL = `
    CREATE TABLE IF NOT EXISTS element_memories (
        id UUID PRIMARY KEY,
        scope_id TEXT NOT NULL,
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        embedding JSONB NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    );
    CREATE INDEX IF NOT EXISTS element_memories_scope_idx
        ON element_memories (scope_id);
`

// Store is the PostgreSQL-backed semantic store. The rate limiter caps
// embedding API calls, which dominate cost.
type Store struct {
	pool    DBPool
	engine  embedding.Engine
	limiter *rate.Limiter
	log     *zap.Logger
}

// New verifies the connection and returns the store.
func New(ctx context.Context, pool DBPool, engine embedding.Engine, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool:    pool,
		engine:  engine,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		log:     logger.Named("semstore"),
	}, nil
}

// EnsureSchema creates the backing table when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Add embeds and inserts the records under the scope. Records keep the ids
// assigned here for later deletion.
func (s *Store) Add(ctx context.Context, records []Record, scope string) ([]Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Content
	}
	vectors, err := s.engine.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed records: %w", err)
	}

	now := time.Now().UTC()
	out := make([]Record, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		embJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return nil, fmt.Errorf("serialize embedding: %w", err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO element_memories (id, scope_id, role, content, embedding, created_at)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, scope, r.Role, r.Content, embJSON, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert record %s: %w", r.ID, err)
		}
		out[i] = r
	}
	s.log.Debug("Added records to semantic store.",
		zap.Int("count", len(out)), zap.String("scope", scope))
	return out, nil
}

// Search embeds the query once and returns the scope's rows ranked by
// cosine similarity, descending, truncated to limit.
func (s *Store) Search(ctx context.Context, query, scope string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, content, embedding FROM element_memories WHERE scope_id = $1`,
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			id, content string
			embJSON     []byte
		)
		if err := rows.Scan(&id, &content, &embJSON); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal(embJSON, &vec); err != nil {
			s.log.Warn("Skipping record with malformed embedding.", zap.String("id", id))
			continue
		}
		score, err := embedding.Cosine(queryVec, vec)
		if err != nil {
			s.log.Warn("Skipping record with mismatched embedding.", zap.String("id", id), zap.Error(err))
			continue
		}
		results = append(results, SearchResult{ID: id, Content: content, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Delete removes one record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM element_memories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// GetAll returns every record under the scope, oldest first.
func (s *Store) GetAll(ctx context.Context, scope string) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, role, content FROM element_memories WHERE scope_id = $1 ORDER BY created_at ASC`,
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Role, &r.Content); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return records, nil
}

// Reset drops every record under the scope. Previously issued record ids
// are invalid afterwards.
func (s *Store) Reset(ctx context.Context, scope string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM element_memories WHERE scope_id = $1`, scope); err != nil {
		return fmt.Errorf("reset scope %s: %w", scope, err)
	}
	return nil
}
