package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandevgo/caterbot/internal/core"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDocuments_MissingFilesYieldEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	docs := LoadDocuments(context.Background(),
		filepath.Join(dir, "products_rag.csv"),
		filepath.Join(dir, "services_rag.csv"))
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}

func TestLoadDocuments_ParsesBothFiles(t *testing.T) {
	dir := t.TempDir()
	products := writeCSV(t, dir, "products_rag.csv",
		"Name,Description,Price,Categories\nTajine royal,Agneau aux pruneaux,250 MAD,Plats\n")
	services := writeCSV(t, dir, "services_rag.csv",
		"Name,Description,Price\nLivraison,Livraison sur Casablanca,N/A\n")

	docs := LoadDocuments(context.Background(), products, services)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	p := docs[0]
	if p.ItemType != core.ItemTypeProduct {
		t.Errorf("ItemType = %s", p.ItemType)
	}
	if want := "Product: Tajine royal - Agneau aux pruneaux - Price: 250 MAD"; p.Content != want {
		t.Errorf("Content = %q, want %q", p.Content, want)
	}
	if p.Metadata["name"] != "Tajine royal" || p.Metadata["price"] != "250 MAD" {
		t.Errorf("Metadata = %v", p.Metadata)
	}
	if p.Metadata["type"] != core.ItemTypeProduct {
		t.Errorf("Metadata[type] = %q, want %q", p.Metadata["type"], core.ItemTypeProduct)
	}

	s := docs[1]
	if s.ItemType != core.ItemTypeService || !strings.HasPrefix(s.Content, "Service: Livraison") {
		t.Errorf("service doc = %+v", s)
	}
	if s.Metadata["type"] != core.ItemTypeService {
		t.Errorf("Metadata[type] = %q, want %q", s.Metadata["type"], core.ItemTypeService)
	}
}

func TestLoadDocuments_StripsHTMLFromDescriptions(t *testing.T) {
	dir := t.TempDir()
	products := writeCSV(t, dir, "products_rag.csv",
		"Name,Description,Price\nBuffet,<p>Un buffet <strong>complet</strong></p>,1200 MAD\n")

	docs := LoadDocuments(context.Background(), products, filepath.Join(dir, "absent.csv"))
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if strings.ContainsAny(docs[0].Content, "<>") {
		t.Errorf("markup survived: %q", docs[0].Content)
	}
	if !strings.Contains(docs[0].Content, "buffet") {
		t.Errorf("text lost during HTML stripping: %q", docs[0].Content)
	}
}

func TestLoadDocuments_SkipsEmptyRowsAndDefaultsPrice(t *testing.T) {
	dir := t.TempDir()
	products := writeCSV(t, dir, "products_rag.csv",
		"Name,Description,Price\nMignardises,Assortiment sucré,\n,,\n")

	docs := LoadDocuments(context.Background(), products, filepath.Join(dir, "absent.csv"))
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if !strings.HasSuffix(docs[0].Content, "Price: N/A") {
		t.Errorf("missing price should read N/A: %q", docs[0].Content)
	}
}
