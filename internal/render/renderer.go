package render

import (
	"strings"

	"github.com/ent0n29/sereno/internal/emotion"
	"github.com/ent0n29/sereno/internal/policy"
)

// Renderer turns a plan plus draft text into the final response and voice
// hints. Rendering is deterministic: the same (plan, draft, emotion) triple
// always produces byte-identical output.
type Renderer struct{}

func New() *Renderer { return &Renderer{} }

// Render applies the textual transforms in fixed order: validation phrase,
// length, tone, pace. A nil override keeps the emotion's voice table entry.
func (r *Renderer) Render(plan policy.Plan, draft string, label emotion.Label, override *VoiceInstructions) (string, VoiceInstructions) {
	text := strings.TrimSpace(draft)
	if text == "" {
		text = "I'm here with you. Tell me more about what's on your mind."
	}

	text = applyValidation(text, plan, label)
	text = applyLength(text, plan.Length)
	text = applyTone(text, plan.Tone)
	text = applyPace(text, plan.Pace)

	return text, voiceFor(label, text, override)
}

func applyValidation(text string, plan policy.Plan, label emotion.Label) string {
	if !plan.RequiresValidationPhrase() {
		return text
	}
	phrase := policy.ValidationPhrase(label)
	if !strings.Contains(text, phrase) {
		text = phrase + ". " + text
	}
	if plan.Validation == policy.ValidationVeryHigh && !strings.Contains(text, "you're not alone") {
		text = "I want you to know that you're not alone in this. " + text
	}
	return text
}

func applyLength(text string, length policy.LengthClass) string {
	switch length {
	case policy.LengthShorter:
		sentences := splitSentences(text)
		if len(sentences) > 2 {
			return strings.Join(sentences[:2], " ")
		}
	case policy.LengthLonger:
		if !strings.Contains(text, "?") {
			return text + " How does that feel to you?"
		}
	}
	return text
}

func applyTone(text string, tone policy.Tone) string {
	switch tone {
	case policy.ToneEncouraging:
		const starter = "I believe in your ability to work through this"
		if !strings.Contains(text, starter) {
			return starter + ". " + text
		}
	case policy.ToneTherapeutic:
		if !strings.Contains(strings.ToLower(text), "let's explore") {
			return text + " Let's explore this together and find a path forward."
		}
	}
	return text
}

func applyPace(text string, pace policy.Pace) string {
	switch pace {
	case policy.PaceSlower, policy.PaceGentle:
		text = strings.ReplaceAll(text, "!", ".")
		text = strings.ReplaceAll(text, "urgent", "important")
	case policy.PaceCalm:
		text = strings.ReplaceAll(text, "!", ".")
		text = strings.ReplaceAll(text, "need to", "might consider")
	}
	return text
}

// splitSentences cuts on sentence-terminal punctuation, keeping the
// terminator with its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
