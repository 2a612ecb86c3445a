package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/ent0n29/sereno/internal/emotion"
)

const DefaultMaxHistory = 20

// Conversations is the high-level conversational memory API layered over an
// injected Store.
type Conversations struct {
	store      Store
	maxHistory int
}

func NewConversations(store Store, maxHistory int) *Conversations {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Conversations{store: store, maxHistory: maxHistory}
}

func (c *Conversations) Store() Store { return c.store }

func (c *Conversations) MaxHistory() int { return c.maxHistory }

// StartSession creates the session if needed and returns it.
func (c *Conversations) StartSession(ctx context.Context, sessionID, userID string) (*Session, error) {
	return c.store.Create(ctx, sessionID, userID)
}

// EndSession removes the session and returns its final derived context.
func (c *Conversations) EndSession(ctx context.Context, sessionID string) (Context, error) {
	sess, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return Context{}, err
	}
	if err := c.store.Delete(ctx, sessionID); err != nil {
		return Context{}, fmt.Errorf("delete session: %w", err)
	}
	return buildContext(sess), nil
}

// AddExchange appends one exchange and trims the log to the retention bound,
// oldest first. Unknown sessions are created implicitly.
func (c *Conversations) AddExchange(ctx context.Context, sessionID string, ex Exchange) error {
	if err := c.store.Append(ctx, sessionID, ex); err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	if err := c.store.Trim(ctx, sessionID, c.maxHistory); err != nil {
		return fmt.Errorf("trim exchanges: %w", err)
	}
	return nil
}

// Context derives the conversational context for a session. An unknown
// session yields an empty context rather than an error.
func (c *Conversations) Context(ctx context.Context, sessionID string) (Context, error) {
	sess, err := c.store.Get(ctx, sessionID)
	if err == ErrNotFound {
		return Context{
			SessionID: sessionID,
			Trend:     Trend{Dominant: emotion.Neutral, Direction: TrendInsufficientData, Stability: StabilityUnknown},
			Summary:   "New session started",
		}, nil
	}
	if err != nil {
		return Context{}, err
	}
	return buildContext(sess), nil
}

// PersonalizedContext renders a compact context string for response drafting.
func (c *Conversations) PersonalizedContext(ctx context.Context, sessionID string) string {
	sess, err := c.store.Get(ctx, sessionID)
	if err != nil || len(sess.Exchanges) == 0 {
		return ""
	}

	var parts []string

	n := len(sess.Exchanges)
	start := n - 3
	if start < 0 {
		start = 0
	}
	recent := make([]string, 0, 3)
	for _, ex := range sess.Exchanges[start:] {
		recent = append(recent, string(ex.Emotion))
	}
	parts = append(parts, "Recent emotions: "+strings.Join(recent, ", "))

	if topics := extractSessionTopics(sess.Exchanges); len(topics) > 0 {
		if len(topics) > 5 {
			topics = topics[:5]
		}
		parts = append(parts, "Topics discussed: "+strings.Join(topics, ", "))
	}

	parts = append(parts, fmt.Sprintf("Session length: %d exchanges", n))
	return strings.Join(parts, " | ")
}
