package model

import (
	"context"
	"time"
)

// SessionStore persists per-session engine state. Implementations bound
// the lifetime of a session with a TTL refreshed on every Put.
type SessionStore interface {
	// Get returns the stored session, or nil when none exists or it expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Put stores the session and refreshes its expiry.
	Put(ctx context.Context, sessionID string, session *Session) error

	// Evict removes a session immediately.
	Evict(ctx context.Context, sessionID string) error
}

type TurnLog interface {
	// Append records one turn.
	Append(ctx context.Context, turn TurnRecord) error

	// BySession returns the turns of a session in chronological order.
	BySession(ctx context.Context, sessionID string) ([]TurnRecord, error)

	// ByUser returns the turns of a user across sessions in chronological order.
	ByUser(ctx context.Context, userID string) ([]TurnRecord, error)
}

type ProfileStore interface {
	// Get returns the profile for the user+session pair, or nil when unknown.
	Get(ctx context.Context, userID, sessionID string) (*Profile, error)

	// Upsert merges the non-empty fields of p into the stored profile.
	Upsert(ctx context.Context, p Profile) error
}

// TurnRecord is one durable turn log entry.
type TurnRecord struct {
	SessionID        string       `json:"session_id"`
	UserID           string       `json:"user_id"`
	Role             Role         `json:"role"`
	Content          string       `json:"content"`
	ResponseType     ResponseType `json:"response_type,omitempty"`
	PromptTokens     int          `json:"prompt_tokens,omitempty"`
	CompletionTokens int          `json:"completion_tokens,omitempty"`
	CostUSD          float64      `json:"cost_usd,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Profile holds the contact details known for a user in a session.
type Profile struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasContact reports whether an email or phone is known.
func (p *Profile) HasContact() bool {
	return p != nil && (p.Email != "" || p.Phone != "")
}

// Merge copies the non-empty fields of other into p.
func (p *Profile) Merge(other Profile) {
	if other.Name != "" {
		p.Name = other.Name
	}
	if other.Email != "" {
		p.Email = other.Email
	}
	if other.Phone != "" {
		p.Phone = other.Phone
	}
}
