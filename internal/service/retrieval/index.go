package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/log"
)

// Index is an in-process semantic search over the indexed catalog. Vectors
// are held in memory and compared by cosine distance at query time; the
// catalog is small enough that a linear scan beats an external vector
// store on both latency and moving parts.
type Index struct {
	embedder core.Embedder
	repo     core.CatalogRepository

	mu    sync.RWMutex
	items []core.CatalogItem
}

func NewIndex(embedder core.Embedder, repo core.CatalogRepository) *Index {
	return &Index{embedder: embedder, repo: repo}
}

// Load pulls the full catalog from the repository into memory. Items
// without an embedding are skipped; they exist when indexing was
// interrupted and cannot be ranked.
func (i *Index) Load(ctx context.Context) error {
	items, err := i.repo.LoadItems(ctx)
	if err != nil {
		return err
	}

	usable := items[:0]
	for _, item := range items {
		if len(item.Embedding) == 0 {
			continue
		}
		usable = append(usable, item)
	}

	i.mu.Lock()
	i.items = usable
	i.mu.Unlock()

	log.FromCtx(ctx).Info().Int("items", len(usable)).Msg("catalog index loaded")
	return nil
}

// Search embeds the query and returns at most k items filtered by itemType,
// ordered by ascending cosine distance. An empty itemType matches all; an
// empty corpus yields an empty slice.
func (i *Index) Search(ctx context.Context, query, itemType string, k int) ([]core.RetrievalResult, error) {
	i.mu.RLock()
	items := i.items
	i.mu.RUnlock()

	if len(items) == 0 || k <= 0 {
		return []core.RetrievalResult{}, nil
	}

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]core.RetrievalResult, 0, k)
	for _, item := range items {
		if itemType != "" && item.ItemType != itemType {
			continue
		}
		results = append(results, core.RetrievalResult{
			Content:  item.Content,
			Metadata: item.Metadata,
			Distance: cosineDistance(vec, item.Embedding),
			Source:   item.Source,
		})
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// cosineDistance is 1 - cosine similarity. Mismatched or zero-norm vectors
// rank last rather than erroring.
func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, normA, normB float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
		normA += float64(a[n]) * float64(a[n])
		normB += float64(b[n]) * float64(b[n])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
