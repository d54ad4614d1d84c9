package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/providers/rag"
	"github.com/sandevgo/caterbot/pkg/log"
	"github.com/sandevgo/caterbot/pkg/retry"
)

// Indexer chunks catalog documents, embeds each chunk, and persists the
// result. Re-indexing a source replaces its previous entries first so the
// catalog never holds duplicates.
type Indexer struct {
	embedder core.Embedder
	repo     core.CatalogRepository
	retrier  *retry.Retrier
}

func NewIndexer(embedder core.Embedder, repo core.CatalogRepository) *Indexer {
	return &Indexer{
		embedder: embedder,
		repo:     repo,
		retrier:  retry.NewDefaultRetrier(),
	}
}

// Index rebuilds the stored catalog from docs and returns the number of
// chunks written. Embedding calls go through the retrier; a chunk that
// still fails aborts the run so a partial index is visible immediately.
func (i *Indexer) Index(ctx context.Context, docs []Document) (int, error) {
	logger := log.FromCtx(ctx)

	seen := make(map[string]bool)
	for _, doc := range docs {
		if seen[doc.Source] {
			continue
		}
		seen[doc.Source] = true
		if err := i.repo.DeleteBySource(ctx, doc.Source); err != nil {
			return 0, fmt.Errorf("failed to clear source %s: %w", doc.Source, err)
		}
	}

	written := 0
	cfg := rag.CatalogChunkerConfig()
	for _, doc := range docs {
		for _, chunk := range rag.ChunkText(doc.Content, cfg) {
			var vec []float32
			err := i.retrier.Do(ctx, func() error {
				var embErr error
				vec, embErr = i.embedder.Embed(ctx, chunk.Text)
				return embErr
			})
			if err != nil {
				return written, fmt.Errorf("failed to embed chunk %d of %s: %w", chunk.Index, doc.Source, err)
			}

			item := core.CatalogItem{
				ItemType:  doc.ItemType,
				Content:   chunk.Text,
				Metadata:  doc.Metadata,
				Source:    doc.Source,
				Embedding: vec,
				CreatedAt: time.Now(),
			}
			if err := i.repo.SaveItem(ctx, item); err != nil {
				return written, fmt.Errorf("failed to save chunk %d of %s: %w", chunk.Index, doc.Source, err)
			}
			written++
		}
	}

	logger.Info().Int("documents", len(docs)).Int("chunks", written).Msg("catalog indexed")
	return written, nil
}
