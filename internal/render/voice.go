package render

import (
	"sort"
	"strings"

	"github.com/ent0n29/sereno/internal/emotion"
)

// VoiceInstructions are synthesis hints for the downstream TTS collaborator.
type VoiceInstructions struct {
	// Rate is words per minute.
	Rate int `json:"rate"`
	// Pitch is a multiplier around 1.0.
	Pitch float64 `json:"pitch"`
	// Volume is in [0,1].
	Volume float64 `json:"volume"`
	// Emphasis is a free-form delivery hint.
	Emphasis string `json:"emphasis"`
	// PausePoints are byte indices of sentence-terminal and comma characters
	// in the final text.
	PausePoints []int `json:"pause_points"`
	// EmphasisWords are therapeutic keywords present in the final text.
	EmphasisWords []string `json:"emphasis_words"`
}

// voiceTable maps each emotion to fixed synthesis parameters.
var voiceTable = map[emotion.Label]VoiceInstructions{
	emotion.Sadness:   {Rate: 150, Pitch: 0.9, Volume: 0.8, Emphasis: "gentle, slow"},
	emotion.Anger:     {Rate: 160, Pitch: 0.8, Volume: 0.7, Emphasis: "calm, steady"},
	emotion.Anxiety:   {Rate: 170, Pitch: 1.0, Volume: 0.85, Emphasis: "reassuring, clear"},
	emotion.Fear:      {Rate: 165, Pitch: 0.95, Volume: 0.85, Emphasis: "soothing, steady"},
	emotion.Happiness: {Rate: 200, Pitch: 1.1, Volume: 0.95, Emphasis: "warm, energetic"},
	emotion.Disgust:   {Rate: 170, Pitch: 0.95, Volume: 0.85, Emphasis: "even, measured"},
	emotion.Surprise:  {Rate: 190, Pitch: 1.05, Volume: 0.9, Emphasis: "bright, curious"},
	emotion.Neutral:   {Rate: 180, Pitch: 1.0, Volume: 0.9, Emphasis: "professional, warm"},
}

// DefaultVoice returns the neutral voice parameters.
func DefaultVoice() VoiceInstructions {
	return voiceTable[emotion.Neutral]
}

// emphasisWords are therapeutic keywords worth stressing in delivery.
var emphasisWords = []string{
	"important", "valid", "understand", "support", "care", "listen",
	"together", "progress", "strength", "courage", "hope",
}

func voiceFor(label emotion.Label, finalText string, override *VoiceInstructions) VoiceInstructions {
	v, ok := voiceTable[label]
	if !ok {
		v = voiceTable[emotion.Neutral]
	}
	if override != nil {
		if override.Rate > 0 {
			v.Rate = override.Rate
		}
		if override.Pitch > 0 {
			v.Pitch = override.Pitch
		}
		if override.Volume > 0 {
			v.Volume = override.Volume
		}
		if override.Emphasis != "" {
			v.Emphasis = override.Emphasis
		}
	}
	v.PausePoints = pausePoints(finalText)
	v.EmphasisWords = matchEmphasisWords(finalText)
	return v
}

func pausePoints(text string) []int {
	var points []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?', ',':
			points = append(points, i)
		}
	}
	return points
}

func matchEmphasisWords(text string) []string {
	present := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		present[strings.Trim(w, ".,!?;:'\"()")] = struct{}{}
	}
	var out []string
	for _, w := range emphasisWords {
		if _, ok := present[w]; ok {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}
