package core

import "context"

// SessionRepository is the durable side of the session store. Writes are
// fire-and-forget relative to the reply path; a corrupt or missing store
// loads as empty, never as an error that stops the process.
type SessionRepository interface {
	SaveSession(ctx context.Context, s Session) error
	LoadSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// CatalogRepository persists indexed catalog entries and their vectors.
type CatalogRepository interface {
	SaveItem(ctx context.Context, item CatalogItem) error
	LoadItems(ctx context.Context) ([]CatalogItem, error)
	CountByType(ctx context.Context) (map[string]int, error)
	DeleteBySource(ctx context.Context, source string) error
}
