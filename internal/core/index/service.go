package index

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"askweb/internal/core/chunker"
	"askweb/internal/logger"
	"askweb/internal/platform/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
)

// CollectionTable is the single logical collection holding indexed chunks.
const CollectionTable = "documents"

// Service is the vector index: it owns all persisted chunks and is the sole
// writer to the collection table.
type Service struct {
	log  *logger.Logger
	db   *postgres.Service
	dim  int
	topK int
}

func NewService(ctx context.Context, db *postgres.Service, dim, topK int) (*Service, error) {
	s := &Service{log: logger.New("VectorIndex"), db: db, dim: dim, topK: topK}
	if err := db.EnsureVectorExtension(ctx); err != nil {
		return nil, fmt.Errorf("ensure vector extension: %w", err)
	}
	if err := db.EnsureCollection(ctx, CollectionTable, dim); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	if n := s.Count(ctx); n > 0 {
		s.log.LogInfof("loaded existing collection with %d documents", n)
	}
	return s, nil
}

// Embed exposes the pseudo-embedding at the configured dimensionality.
func (s *Service) Embed(text string) []float32 { return Embed(text, s.dim) }

// Add persists the chunks as one transactional batch. Each chunk gets a
// unique time-ordered id so identical text never collides. A failure rolls
// the whole batch back: the collection never holds a partial batch.
func (s *Service) Add(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			s.log.LogErrorf("marshal chunk metadata: %v", err)
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}
		batch.Queue(
			fmt.Sprintf("INSERT INTO %s (id, content, metadata, embedding) VALUES ($1, $2, $3, $4)", CollectionTable),
			generateUniqueID(), chunk.Text, metadataJSON, pgvector.NewVector(s.Embed(chunk.Text)),
		)
	}

	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		s.log.LogErrorf("begin add batch: %v", err)
		return err
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close()
			s.log.LogErrorf("error adding documents to collection: %v", err)
			return err
		}
	}
	if err := br.Close(); err != nil {
		s.log.LogErrorf("close add batch: %v", err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		s.log.LogErrorf("commit add batch: %v", err)
		return err
	}

	s.log.LogSuccessf("added %d documents to the collection", len(chunks))
	return nil
}

// Search embeds the query with the same pseudo-embedding and returns up to
// min(k, count) nearest chunks, best match first. An empty index yields an
// empty result; storage errors are logged and also yield an empty result.
func (s *Service) Search(ctx context.Context, query string, k int) []chunker.Chunk {
	if k <= 0 {
		k = s.topK
	}
	count := s.Count(ctx)
	if count == 0 {
		s.log.LogWarn("no documents in the collection")
		return nil
	}
	if k > count {
		k = count
	}

	rows, err := s.db.Pool().Query(ctx,
		fmt.Sprintf("SELECT content, metadata FROM %s ORDER BY embedding <=> $1 LIMIT $2", CollectionTable),
		pgvector.NewVector(s.Embed(query)), k,
	)
	if err != nil {
		s.log.LogErrorf("similarity search: %v", err)
		return nil
	}
	defer rows.Close()

	var results []chunker.Chunk
	for rows.Next() {
		var content string
		var metadataJSON []byte
		if err := rows.Scan(&content, &metadataJSON); err != nil {
			s.log.LogErrorf("scan search row: %v", err)
			return nil
		}
		metadata := map[string]string{}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
				s.log.LogErrorf("unmarshal chunk metadata: %v", err)
				return nil
			}
		}
		results = append(results, chunker.Chunk{Text: content, Metadata: metadata})
	}
	if err := rows.Err(); err != nil {
		s.log.LogErrorf("iterate search rows: %v", err)
		return nil
	}

	s.log.LogInfof("found %d relevant documents", len(results))
	return results
}

// Clear drops all persisted chunks and recreates the empty collection.
// Idempotent: clearing an empty index is not an error.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.db.DropCollection(ctx, CollectionTable); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	if err := s.db.EnsureCollection(ctx, CollectionTable, s.dim); err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.log.LogInfo("collection cleared")
	return nil
}

// Count returns the number of persisted chunks, 0 on any storage error.
func (s *Service) Count(ctx context.Context) int {
	var n int
	err := s.db.Pool().QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", CollectionTable)).Scan(&n)
	if err != nil {
		return 0
	}
	return n
}

// generateUniqueID combines a millisecond timestamp with a random suffix so
// ids stay time-ordered yet unique even for identical chunk text.
func generateUniqueID() string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}
