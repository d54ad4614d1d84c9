package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/session"
	"github.com/sandevgo/caterbot/pkg/log"
)

// Server exposes the chat websocket plus the read-only health/stats/catalog
// surface. It owns the http.Server lifecycle.
type Server struct {
	srv      *http.Server
	sessions *session.Store
	catalog  core.CatalogRepository
}

func NewServer(port int, chat http.Handler, sessions *session.Store, catalog core.CatalogRepository) *Server {
	s := &Server{
		sessions: sessions,
		catalog:  catalog,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Handle("/ws/chat", chat)
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/products", s.handleItems(core.ItemTypeProduct))
	r.Get("/api/services", s.handleItems(core.ItemTypeService))

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting http server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   core.CaterVersion,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.catalog.CountByType(r.Context())
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to count catalog items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": map[string]int{"total_products": counts[core.ItemTypeProduct]},
		"services": map[string]int{"total_services": counts[core.ItemTypeService]},
		"sessions": s.sessions.Stats(),
	})
}

// handleItems lists indexed catalog entries of one type. Embeddings stay
// out of the payload.
func (s *Server) handleItems(itemType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.catalog.LoadItems(r.Context())
		if err != nil {
			log.FromCtx(r.Context()).Error().Err(err).Msg("failed to load catalog items")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
			return
		}

		out := make([]core.CatalogItem, 0)
		for _, item := range items {
			if item.ItemType == itemType {
				item.Embedding = nil
				out = append(out, item)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
