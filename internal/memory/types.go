package memory

import (
	"context"
	"errors"
	"time"

	"github.com/ent0n29/sereno/internal/emotion"
)

// Exchange is one user-turn/companion-response pair. Immutable once stored.
type Exchange struct {
	ID         string        `json:"id"`
	Seq        int           `json:"seq"`
	Timestamp  time.Time     `json:"timestamp"`
	UserInput  string        `json:"user_input"`
	Emotion    emotion.Label `json:"emotion"`
	Confidence float64       `json:"confidence"`
	Response   string        `json:"response"`
}

// Session is the per-conversation record. Exchanges are append-only and
// trimmed oldest-first at the retention boundary; Seq stays monotonic across
// trims.
type Session struct {
	ID             string     `json:"session_id"`
	UserID         string     `json:"user_id"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	NextSeq        int        `json:"next_seq"`
	Exchanges      []Exchange `json:"exchanges"`
}

var ErrNotFound = errors.New("session not found")

// Store persists sessions and their exchange logs. Append on an unknown
// session implicitly creates it; Create is idempotent.
type Store interface {
	Create(ctx context.Context, sessionID, userID string) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Append(ctx context.Context, sessionID string, ex Exchange) error
	Trim(ctx context.Context, sessionID string, max int) error
	Delete(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int, error)
	Close() error
}
