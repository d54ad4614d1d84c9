package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/log"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) SaveSession(ctx context.Context, s core.Session) error {
	messages, err := json.Marshal(s.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	userCtx, err := json.Marshal(s.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal user context: %w", err)
	}

	query := `
		INSERT INTO sessions (session_id, created_at, last_activity, messages, user_context)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			last_activity = excluded.last_activity,
			messages      = excluded.messages,
			user_context  = excluded.user_context
	`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.CreatedAt, s.LastActivity, string(messages), string(userCtx)); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// LoadSessions reads every persisted session. Rows that fail to decode are
// skipped with a warning so one corrupt record never blocks startup.
func (r *SessionRepo) LoadSessions(ctx context.Context) ([]core.Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT session_id, created_at, last_activity, messages, user_context FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	logger := log.FromCtx(ctx)
	var sessions []core.Session
	for rows.Next() {
		var s core.Session
		var messages, userCtx string

		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.LastActivity, &messages, &userCtx); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if err := json.Unmarshal([]byte(messages), &s.Messages); err != nil {
			logger.Warn().Err(err).Str("session_id", s.ID).Msg("skipping session with corrupt messages")
			continue
		}
		if err := json.Unmarshal([]byte(userCtx), &s.Context); err != nil {
			logger.Warn().Err(err).Str("session_id", s.ID).Msg("skipping session with corrupt context")
			continue
		}
		if s.Context.Preferences == nil {
			s.Context.Preferences = make(map[string]string)
		}

		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.Debug().Int("count", len(sessions)).Msg("loaded persisted sessions")
	return sessions, nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
