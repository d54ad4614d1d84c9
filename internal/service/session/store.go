package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/log"
)

// ContextUpdate is a partial user-context mutation. Preferences entries merge
// into the existing map; the other fields replace only when set.
type ContextUpdate struct {
	Preferences     map[string]string
	CurrentInquiry  *string
	OrderInProgress *bool
}

type entry struct {
	mu      sync.Mutex
	session core.Session
}

// Store keeps live sessions in memory and mirrors them to an optional
// repository. Mutations on one session are serialized by a per-session lock;
// unrelated sessions never contend beyond the map lookup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	timeout time.Duration
	repo    core.SessionRepository

	persistCh chan core.Session
	deleteCh  chan string
	done      chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
}

func NewStore(timeout time.Duration, repo core.SessionRepository) *Store {
	s := &Store{
		sessions:  make(map[string]*entry),
		timeout:   timeout,
		repo:      repo,
		persistCh: make(chan core.Session, 256),
		deleteCh:  make(chan string, 64),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	if repo != nil {
		go s.persistLoop()
	}
	return s
}

// Load restores persisted sessions into memory. A failing or corrupt store
// logs and starts empty; it never aborts startup.
func (s *Store) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}

	sessions, err := s.repo.LoadSessions(ctx)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to load persisted sessions, starting empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		s.sessions[sess.ID] = &entry{session: sess}
	}
	log.FromCtx(ctx).Info().Int("count", len(sessions)).Msg("restored sessions")
}

// Create allocates a session with empty history and default context. An
// empty id generates a fresh one; an existing id is overwritten.
func (s *Store) Create(sessionID string) string {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	now := time.Now()
	e := &entry{session: core.Session{
		ID:           sessionID,
		CreatedAt:    now,
		LastActivity: now,
		Context:      core.NewUserContext(),
	}}

	s.mu.Lock()
	s.sessions[sessionID] = e
	s.mu.Unlock()

	s.enqueuePersist(e.session)
	return sessionID
}

// Get returns a snapshot of the session, or nil if it is absent or expired.
// Detecting expiry deletes the entry as a side effect.
func (s *Store) Get(sessionID string) *core.Session {
	e := s.lookup(sessionID)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	expired := time.Since(e.session.LastActivity) > s.timeout
	snapshot := cloneSession(e.session)
	e.mu.Unlock()

	if expired {
		s.delete(sessionID)
		return nil
	}
	return &snapshot
}

// AppendMessage adds a message to the session's history, creating the
// session first when absent. It never fails on a missing session.
func (s *Store) AppendMessage(sessionID string, msg core.Message) {
	e := s.getOrCreate(sessionID)

	e.mu.Lock()
	e.session.Messages = append(e.session.Messages, msg)
	e.session.LastActivity = time.Now()
	snapshot := cloneSession(e.session)
	e.mu.Unlock()

	s.enqueuePersist(snapshot)
}

// UpdateContext merges a partial context update, creating the session when
// absent.
func (s *Store) UpdateContext(sessionID string, update ContextUpdate) {
	e := s.getOrCreate(sessionID)

	e.mu.Lock()
	for k, v := range update.Preferences {
		e.session.Context.Preferences[k] = v
	}
	if update.CurrentInquiry != nil {
		e.session.Context.CurrentInquiry = *update.CurrentInquiry
	}
	if update.OrderInProgress != nil {
		e.session.Context.OrderInProgress = *update.OrderInProgress
	}
	e.session.LastActivity = time.Now()
	snapshot := cloneSession(e.session)
	e.mu.Unlock()

	s.enqueuePersist(snapshot)
}

// Context returns the session's user context, or a zero value when the
// session is absent or expired.
func (s *Store) Context(sessionID string) core.UserContext {
	sess := s.Get(sessionID)
	if sess == nil {
		return core.UserContext{}
	}
	return sess.Context
}

// History returns the most recent limit messages in original order. A zero
// or negative limit means all; absent or expired sessions yield an empty
// slice.
func (s *Store) History(sessionID string, limit int) []core.Message {
	sess := s.Get(sessionID)
	if sess == nil {
		return nil
	}

	msgs := sess.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}

// Delete removes the session from memory and the repository.
func (s *Store) Delete(sessionID string) {
	s.delete(sessionID)
}

// Stats sweeps expired sessions first, then aggregates over survivors.
func (s *Store) Stats() core.SessionStats {
	s.CleanupExpired()

	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	stats := core.SessionStats{ActiveSessions: len(entries)}
	for _, e := range entries {
		e.mu.Lock()
		stats.TotalMessages += len(e.session.Messages)
		e.mu.Unlock()
	}
	if stats.ActiveSessions > 0 {
		stats.AvgMessagesPerSession = float64(stats.TotalMessages) / float64(stats.ActiveSessions)
	}
	return stats
}

// CleanupExpired deletes every session past the inactivity timeout.
func (s *Store) CleanupExpired() {
	s.mu.RLock()
	var expired []string
	for id, e := range s.sessions {
		e.mu.Lock()
		if time.Since(e.session.LastActivity) > s.timeout {
			expired = append(expired, id)
		}
		e.mu.Unlock()
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.delete(id)
	}
}

// Shutdown stops the persistence loop and waits for it to drain queued
// writes and deletions. Safe to call more than once.
func (s *Store) Shutdown() error {
	if s.repo != nil {
		s.stopOnce.Do(func() { close(s.done) })
		<-s.stopped
	}
	return nil
}

func (s *Store) lookup(sessionID string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

func (s *Store) getOrCreate(sessionID string) *entry {
	if e := s.lookup(sessionID); e != nil {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sessionID]; ok {
		return e
	}

	now := time.Now()
	e := &entry{session: core.Session{
		ID:           sessionID,
		CreatedAt:    now,
		LastActivity: now,
		Context:      core.NewUserContext(),
	}}
	s.sessions[sessionID] = e
	return e
}

func (s *Store) delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.repo != nil {
		select {
		case s.deleteCh <- sessionID:
		default:
		}
	}
}

// enqueuePersist hands a snapshot to the write-behind loop. The reply path
// never waits on durability; a full queue drops the write and the next
// mutation re-snapshots the whole session.
func (s *Store) enqueuePersist(snapshot core.Session) {
	if s.repo == nil {
		return
	}
	select {
	case s.persistCh <- snapshot:
	default:
	}
}

func (s *Store) persistLoop() {
	defer close(s.stopped)
	ctx := context.Background()
	for {
		select {
		case snapshot := <-s.persistCh:
			if err := s.repo.SaveSession(ctx, snapshot); err != nil {
				log.FromCtx(ctx).Error().Err(err).Str("session_id", snapshot.ID).Msg("failed to persist session")
			}
		case id := <-s.deleteCh:
			if err := s.repo.DeleteSession(ctx, id); err != nil {
				log.FromCtx(ctx).Error().Err(err).Str("session_id", id).Msg("failed to delete persisted session")
			}
		case <-s.done:
			// Flush both queues so writes and deletions accepted before
			// shutdown still reach the store.
			for {
				select {
				case snapshot := <-s.persistCh:
					if err := s.repo.SaveSession(ctx, snapshot); err != nil {
						log.FromCtx(ctx).Error().Err(err).Str("session_id", snapshot.ID).Msg("failed to persist session")
					}
				case id := <-s.deleteCh:
					if err := s.repo.DeleteSession(ctx, id); err != nil {
						log.FromCtx(ctx).Error().Err(err).Str("session_id", id).Msg("failed to delete persisted session")
					}
				default:
					return
				}
			}
		}
	}
}

func cloneSession(s core.Session) core.Session {
	out := s
	out.Messages = append([]core.Message(nil), s.Messages...)
	out.Context.Preferences = make(map[string]string, len(s.Context.Preferences))
	for k, v := range s.Context.Preferences {
		out.Context.Preferences[k] = v
	}
	return out
}
