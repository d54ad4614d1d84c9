package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	items []core.CatalogItem
	err   error
}

func (f *fakeCatalog) SaveItem(context.Context, core.CatalogItem) error { return nil }
func (f *fakeCatalog) LoadItems(context.Context) ([]core.CatalogItem, error) {
	return f.items, f.err
}
func (f *fakeCatalog) CountByType(context.Context) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := map[string]int{}
	for _, item := range f.items {
		counts[item.ItemType]++
	}
	return counts, nil
}
func (f *fakeCatalog) DeleteBySource(context.Context, string) error { return nil }

func newTestServer(t *testing.T, catalog *fakeCatalog) *Server {
	t.Helper()
	store := session.NewStore(30*time.Minute, nil)
	t.Cleanup(func() { _ = store.Shutdown() })
	return NewServer(0, http.NotFoundHandler(), store, catalog)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &fakeCatalog{})

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleStats(t *testing.T) {
	catalog := &fakeCatalog{items: []core.CatalogItem{
		{ItemType: core.ItemTypeProduct},
		{ItemType: core.ItemTypeProduct},
		{ItemType: core.ItemTypeService},
	}}
	s := newTestServer(t, catalog)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products map[string]int    `json:"products"`
		Services map[string]int    `json:"services"`
		Sessions core.SessionStats `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Products["total_products"])
	assert.Equal(t, 1, body.Services["total_services"])
	assert.Equal(t, 0, body.Sessions.ActiveSessions)
}

func TestHandleItems_FiltersTypeAndDropsEmbeddings(t *testing.T) {
	catalog := &fakeCatalog{items: []core.CatalogItem{
		{ItemType: core.ItemTypeProduct, Content: "tajine", Embedding: []float32{1, 2}},
		{ItemType: core.ItemTypeService, Content: "livraison"},
	}}
	s := newTestServer(t, catalog)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var items []core.CatalogItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "tajine", items[0].Content)
	assert.Empty(t, items[0].Embedding)
}
