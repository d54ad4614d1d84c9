package core

import "time"

const (
	CaterName    = "CaterBot"
	CaterVersion = "0.1.0"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one entry of a session's conversation history.
// Immutable once appended; owned by its session.
type Message struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	Content   string            `json:"content"`
	Sender    string            `json:"sender"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewTextMessage builds a plain text message stamped now.
func NewTextMessage(sender, content string) Message {
	return Message{
		Timestamp: time.Now(),
		Type:      "text",
		Content:   content,
		Sender:    sender,
	}
}

// UserContext holds per-session derived state.
type UserContext struct {
	Preferences     map[string]string `json:"preferences"`
	CurrentInquiry  string            `json:"current_inquiry,omitempty"`
	OrderInProgress bool              `json:"order_in_progress"`
}

func NewUserContext() UserContext {
	return UserContext{Preferences: make(map[string]string)}
}

// Session is the durable conversational state for one client.
type Session struct {
	ID           string      `json:"session_id"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActivity time.Time   `json:"last_activity"`
	Messages     []Message   `json:"messages"`
	Context      UserContext `json:"user_context"`
}

// SessionStats aggregates over non-expired sessions.
type SessionStats struct {
	ActiveSessions        int     `json:"active_sessions"`
	TotalMessages         int     `json:"total_messages"`
	AvgMessagesPerSession float64 `json:"avg_messages_per_session"`
}

// Catalog item types used as retrieval filters.
const (
	ItemTypeProduct = "product"
	ItemTypeService = "service"
)

// CatalogItem is one indexed entry of the product/service catalog.
type CatalogItem struct {
	ID        int64             `json:"id"`
	ItemType  string            `json:"item_type"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Source    string            `json:"source"`
	Embedding []float32         `json:"-"`
	CreatedAt time.Time         `json:"created_at"`
}

// RetrievalResult is a ranked hit from semantic search.
// Distance has cosine semantics: lower is more relevant.
type RetrievalResult struct {
	Content  string
	Metadata map[string]string
	Distance float32
	Source   string
}
