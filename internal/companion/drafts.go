package companion

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ent0n29/sereno/internal/emotion"
)

// RandomSource supplies the randomness behind draft template selection so
// tests can pin the choice.
type RandomSource interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRandomSource returns a time-seeded source safe for concurrent turns.
func NewRandomSource() RandomSource {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// draftTemplates hold the base therapeutic reply per emotion.
var draftTemplates = map[emotion.Label][]string{
	emotion.Happiness: {
		"I'm so glad to hear you're feeling happy. What's been contributing to this positive energy?",
		"Your joy is wonderful to witness. Can you tell me more about what's been going well for you?",
		"It's wonderful to see you in such a good mood. What's been making you feel this way?",
	},
	emotion.Sadness: {
		"I can sense you might be going through a difficult time. I'm here to listen and support you.",
		"It sounds like you're feeling down. Would you like to talk about what's been weighing on you?",
		"It takes courage to share when you're feeling sad. I'm here to listen and help.",
	},
	emotion.Anxiety: {
		"I can hear the worry in your words. Let's work through this together, one step at a time.",
		"Anxiety can feel overwhelming. What's been causing you the most concern lately?",
		"I'm here to help you navigate through these anxious feelings. What's on your mind?",
	},
	emotion.Anger: {
		"I can feel the frustration in your message. Let's explore what's been bothering you.",
		"It sounds like you're dealing with some strong emotions. What's been making you feel this way?",
		"Anger is a valid emotion. Let's talk about what's been frustrating you lately.",
	},
	emotion.Fear: {
		"I can sense some fear in your words. You're safe here, and I'm here to support you.",
		"Fear can be overwhelming. What's been making you feel afraid?",
		"It's okay to feel afraid sometimes. What's been causing you concern?",
	},
	emotion.Neutral: {
		"I'm here to listen and help you explore your thoughts. What's on your mind today?",
		"How are you feeling right now? I'm here to support you in whatever way feels helpful.",
		"I'm here to listen. What's been going on in your life lately?",
	},
}

// fallbackResponse is the safe reply when a turn fails mid-pipeline.
const fallbackResponse = "I'm here with you. Whatever you're feeling right now is okay, and we can take this at your pace."

// DraftBank picks base responses for an emotion, optionally weaving in a
// memory callback to previously discussed topics.
type DraftBank struct {
	random RandomSource
}

func NewDraftBank(random RandomSource) *DraftBank {
	if random == nil {
		random = NewRandomSource()
	}
	return &DraftBank{random: random}
}

// Draft returns a base response for the emotion. Unknown labels use the
// neutral templates.
func (b *DraftBank) Draft(label emotion.Label, topics []string) string {
	templates, ok := draftTemplates[label]
	if !ok {
		templates = draftTemplates[emotion.Neutral]
	}
	text := templates[b.random.Intn(len(templates))]

	if len(topics) > 0 {
		shown := topics
		if len(shown) > 3 {
			shown = shown[:3]
		}
		text += " I remember we've talked about " + strings.Join(shown, ", ") + " before."
	}
	return text
}
