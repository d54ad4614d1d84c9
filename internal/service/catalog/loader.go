package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/conv"
	"github.com/sandevgo/caterbot/pkg/log"
)

// Document is one catalog entry ready for chunking and embedding.
type Document struct {
	Content  string
	ItemType string
	Source   string
	Metadata map[string]string
}

// LoadDocuments reads the product and service CSV exports. Either file may
// be absent; the catalog then simply holds fewer entries. A missing data
// dir means an empty catalog, never a startup failure.
func LoadDocuments(ctx context.Context, productsPath, servicesPath string) []Document {
	var docs []Document
	docs = append(docs, loadCSV(ctx, productsPath, core.ItemTypeProduct)...)
	docs = append(docs, loadCSV(ctx, servicesPath, core.ItemTypeService)...)
	return docs
}

func loadCSV(ctx context.Context, path, itemType string) []Document {
	logger := log.FromCtx(ctx)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", path).Msg("catalog file missing, skipping")
		} else {
			logger.Error().Err(err).Str("path", path).Msg("failed to open catalog file")
		}
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // WooCommerce exports are ragged

	header, err := r.Read()
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to read catalog header")
		return nil
	}
	cols := columnIndex(header)

	var docs []Document
	for {
		record, err := r.Read()
		if err != nil {
			break
		}

		name := field(record, cols, "name")
		desc := conv.HTMLToPlainText(field(record, cols, "description"))
		price := field(record, cols, "price", "regular price")
		if name == "" && desc == "" {
			continue
		}
		if price == "" {
			price = "N/A"
		}

		label := "Product"
		if itemType == core.ItemTypeService {
			label = "Service"
		}
		docs = append(docs, Document{
			Content:  fmt.Sprintf("%s: %s - %s - Price: %s", label, name, desc, price),
			ItemType: itemType,
			Source:   path,
			Metadata: map[string]string{
				"type":       itemType,
				"name":       name,
				"price":      price,
				"categories": field(record, cols, "categories"),
			},
		})
	}

	logger.Info().Str("path", path).Int("documents", len(docs)).Msg("loaded catalog file")
	return docs
}

// columnIndex maps lower-cased header names to positions so exports with
// either French or WooCommerce English headers resolve the same way.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for n, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = n
	}
	return cols
}

func field(record []string, cols map[string]int, names ...string) string {
	for _, name := range names {
		if n, ok := cols[name]; ok && n < len(record) {
			return strings.TrimSpace(record[n])
		}
	}
	return ""
}
