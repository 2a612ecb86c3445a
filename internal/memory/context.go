package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ent0n29/sereno/internal/emotion"
)

type TrendDirection string

const (
	TrendImproving        TrendDirection = "improving"
	TrendDeclining        TrendDirection = "declining"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

type Stability string

const (
	StabilityStable   Stability = "stable"
	StabilityVariable Stability = "variable"
	StabilityUnknown  Stability = "unknown"
)

// Trend is derived from the exchange history on demand; it holds no state of
// its own.
type Trend struct {
	Dominant  emotion.Label  `json:"dominant"`
	Direction TrendDirection `json:"direction"`
	Stability Stability      `json:"stability"`
}

// Context is the derived conversational context for one session.
type Context struct {
	SessionID     string        `json:"session_id"`
	ExchangeCount int           `json:"exchange_count"`
	RecentHistory []Exchange    `json:"recent_history"`
	Trend         Trend         `json:"trend"`
	Topics        []string      `json:"topics"`
	Summary       string        `json:"summary"`
	Duration      time.Duration `json:"duration"`
}

const (
	recentHistorySize = 5
	trendWindow       = 3
	trendEpsilon      = 0.05
)

// moodValence maps emotions onto a single mood axis for trend math.
var moodValence = map[emotion.Label]float64{
	emotion.Happiness: 1.0,
	emotion.Surprise:  0.6,
	emotion.Neutral:   0.5,
	emotion.Anxiety:   0.25,
	emotion.Fear:      0.25,
	emotion.Sadness:   0.2,
	emotion.Anger:     0.2,
	emotion.Disgust:   0.2,
}

// topicKeywords categorizes user input into discussion topics.
var topicKeywords = map[string][]string{
	"anxiety":       {"anxious", "worry", "nervous", "panic", "fear"},
	"depression":    {"sad", "depressed", "down", "hopeless", "blue"},
	"stress":        {"stressed", "overwhelmed", "pressure", "tension"},
	"relationships": {"relationship", "partner", "family", "friend", "social"},
	"work":          {"work", "job", "career", "boss", "colleague"},
	"health":        {"health", "sick", "pain", "medical", "doctor"},
	"sleep":         {"sleep", "insomnia", "tired", "exhausted"},
	"self-esteem":   {"confidence", "self-worth", "worthless"},
	"trauma":        {"trauma", "abuse", "ptsd", "flashback", "trigger"},
}

func buildContext(sess *Session) Context {
	c := Context{
		SessionID:     sess.ID,
		ExchangeCount: len(sess.Exchanges),
		Trend:         computeTrend(sess.Exchanges),
		Topics:        extractSessionTopics(sess.Exchanges),
	}

	if n := len(sess.Exchanges); n > 0 {
		start := n - recentHistorySize
		if start < 0 {
			start = 0
		}
		c.RecentHistory = append(c.RecentHistory, sess.Exchanges[start:]...)
		c.Duration = sess.Exchanges[n-1].Timestamp.Sub(sess.StartedAt)
	}

	c.Summary = summarize(c)
	return c
}

// computeTrend compares the mean mood of the most recent exchanges against
// the mean of all earlier ones.
func computeTrend(exchanges []Exchange) Trend {
	t := Trend{Dominant: emotion.Neutral, Direction: TrendStable, Stability: StabilityUnknown}
	if len(exchanges) == 0 {
		return t
	}

	counts := map[emotion.Label]int{}
	distinct := map[emotion.Label]struct{}{}
	for _, ex := range exchanges {
		counts[ex.Emotion]++
		distinct[ex.Emotion] = struct{}{}
	}
	best := 0
	for label, n := range counts {
		if n > best || (n == best && label < t.Dominant) {
			best = n
			t.Dominant = label
		}
	}
	if len(distinct) <= 2 {
		t.Stability = StabilityStable
	} else {
		t.Stability = StabilityVariable
	}

	if len(exchanges) < trendWindow {
		t.Direction = TrendInsufficientData
		return t
	}

	recent := exchanges[len(exchanges)-trendWindow:]
	earlier := exchanges[:len(exchanges)-trendWindow]
	if len(earlier) == 0 {
		return t
	}

	diff := meanValence(recent) - meanValence(earlier)
	switch {
	case diff > trendEpsilon:
		t.Direction = TrendImproving
	case diff < -trendEpsilon:
		t.Direction = TrendDeclining
	default:
		t.Direction = TrendStable
	}
	return t
}

func meanValence(exchanges []Exchange) float64 {
	if len(exchanges) == 0 {
		return 0
	}
	var sum float64
	for _, ex := range exchanges {
		v, ok := moodValence[ex.Emotion]
		if !ok {
			v = 0.5
		}
		sum += v
	}
	return sum / float64(len(exchanges))
}

// ExtractTopics returns the therapeutic topics mentioned in a single input.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)
	var topics []string
	for topic, keywords := range topicKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}
	sort.Strings(topics)
	return topics
}

func extractSessionTopics(exchanges []Exchange) []string {
	seen := map[string]struct{}{}
	for _, ex := range exchanges {
		for _, topic := range ExtractTopics(ex.UserInput) {
			seen[topic] = struct{}{}
		}
	}
	topics := make([]string, 0, len(seen))
	for topic := range seen {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

func summarize(c Context) string {
	if c.ExchangeCount == 0 {
		return "New session started"
	}
	parts := []string{fmt.Sprintf("Session with %d exchanges", c.ExchangeCount)}
	if len(c.Topics) > 0 {
		top := c.Topics
		if len(top) > 3 {
			top = top[:3]
		}
		parts = append(parts, "discussing "+strings.Join(top, ", "))
	}
	if n := len(c.RecentHistory); n > 0 {
		parts = append(parts, "current emotion: "+string(c.RecentHistory[n-1].Emotion))
	}
	return strings.Join(parts, " | ")
}
