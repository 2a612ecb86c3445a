package policy

import (
	"sync"
	"time"
)

type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// EngagementSample is one observation of how involved the user appears.
type EngagementSample struct {
	At time.Time `json:"at,omitempty"`
	// ResponseLatency is how long the user took to reply, in nanoseconds on
	// the wire.
	ResponseLatency time.Duration `json:"response_latency,omitempty"`
	// ComfortLevel is the reported comfort in [0,1].
	ComfortLevel float64 `json:"comfort_level"`
	// Flow labels the conversational flow: "halting", "normal" or "flowing".
	Flow string `json:"flow,omitempty"`
}

const engagementWindow = 50

// EngagementTracker keeps a rolling per-user window of engagement samples and
// collapses it into a coarse level. Recent samples weigh more than older ones.
type EngagementTracker struct {
	mu      sync.RWMutex
	samples map[string][]EngagementSample
}

func NewEngagementTracker() *EngagementTracker {
	return &EngagementTracker{samples: make(map[string][]EngagementSample)}
}

func (t *EngagementTracker) Record(userID string, sample EngagementSample) {
	if userID == "" {
		return
	}
	if sample.At.IsZero() {
		sample.At = time.Now().UTC()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	arr := append(t.samples[userID], sample)
	if len(arr) > engagementWindow {
		arr = arr[len(arr)-engagementWindow:]
	}
	t.samples[userID] = arr
}

// Level classifies the user's engagement. Users with no history default to
// medium.
func (t *EngagementTracker) Level(userID string) EngagementLevel {
	t.mu.RLock()
	arr := t.samples[userID]
	t.mu.RUnlock()

	if len(arr) == 0 {
		return EngagementMedium
	}

	var weighted, total float64
	for i, s := range arr {
		w := float64(i + 1)
		weighted += w * sampleScore(s)
		total += w
	}

	score := weighted / total
	switch {
	case score < 0.4:
		return EngagementLow
	case score >= 0.7:
		return EngagementHigh
	default:
		return EngagementMedium
	}
}

func sampleScore(s EngagementSample) float64 {
	score := clamp01(s.ComfortLevel)

	switch s.Flow {
	case "flowing":
		score += 0.3
	case "halting":
		score -= 0.3
	}

	// Quick replies read as engaged, slow ones as disengaged.
	switch {
	case s.ResponseLatency > 0 && s.ResponseLatency < 5*time.Second:
		score += 0.2
	case s.ResponseLatency > 30*time.Second:
		score -= 0.2
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
