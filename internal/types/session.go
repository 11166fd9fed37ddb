package types

import (
	"time"

	"github.com/google/uuid"
)

type TravelSession struct {
	ID                  uuid.UUID         `json:"id"`
	UserID              uuid.UUID         `json:"user_id"`
	ConversationState   ConversationState `json:"conversation_state"`
	ConversationHistory []ChatTurn        `json:"conversation_history"`
	Status              SessionStatus     `json:"status"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	ExpiresAt           time.Time         `json:"expires_at"`
}

// ChatTurn is one message in a session's conversation history.
type ChatTurn struct {
	ID        uuid.UUID   `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionClosed  SessionStatus = "closed"
	SessionExpired SessionStatus = "expired"
)

// Request/Response types for the travel session API
type CreateSessionRequest struct {
	Message string `json:"message"`
}

type SessionChatRequest struct {
	Message string `json:"message"`
}

// SessionChatResponse embeds the hint pipeline output in the wire shape the
// frontend consumes.
type SessionChatResponse struct {
	SessionID         uuid.UUID         `json:"session_id"`
	Message           string            `json:"message"`
	IsNewSession      bool              `json:"is_new_session"`
	Hints             []Hint            `json:"hints"`
	ConversationState ConversationState `json:"conversation_state"`
	ExtractedEntities []ExtractedEntity `json:"extracted_entities"`
	NextSteps         []string          `json:"next_steps"`
	Fallback          bool              `json:"fallback,omitempty"`
}
