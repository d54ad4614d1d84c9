package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/log"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) SaveItem(ctx context.Context, item core.CatalogItem) error {
	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	vecBlob, err := serializeVector(item.Embedding)
	if err != nil {
		return err
	}

	query := `INSERT INTO catalog_items (item_type, content, metadata, source, embedding) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, item.ItemType, item.Content, string(metadata), item.Source, vecBlob); err != nil {
		return fmt.Errorf("failed to insert catalog item: %w", err)
	}
	return nil
}

func (r *CatalogRepo) LoadItems(ctx context.Context) ([]core.CatalogItem, error) {
	query := `SELECT id, item_type, content, metadata, source, embedding, created_at FROM catalog_items ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var items []core.CatalogItem
	for rows.Next() {
		var item core.CatalogItem
		var metadata string
		var vecBlob []byte

		if err := rows.Scan(&item.ID, &item.ItemType, &item.Content, &metadata, &item.Source, &vecBlob, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}

		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		vec, err := deserializeVector(vecBlob)
		if err != nil {
			return nil, err
		}
		item.Embedding = vec

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(items)).Msg("loaded catalog items")
	return items, nil
}

func (r *CatalogRepo) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_type, COUNT(*) FROM catalog_items GROUP BY item_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog items: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var itemType string
		var n int
		if err := rows.Scan(&itemType, &n); err != nil {
			return nil, err
		}
		counts[itemType] = n
	}
	return counts, rows.Err()
}

// DeleteBySource clears previously indexed rows for a source file so a
// re-index never duplicates entries.
func (r *CatalogRepo) DeleteBySource(ctx context.Context, source string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM catalog_items WHERE source = ?`, source); err != nil {
		return fmt.Errorf("failed to delete catalog items for source %q: %w", source, err)
	}
	return nil
}
