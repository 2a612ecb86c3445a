package emotion

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Scores maps emotion labels to raw scores.
type Scores map[Label]float64

// Fusion weights for the three signal sources.
const (
	textWeight  = 0.6
	audioWeight = 0.3
	trendWeight = 0.1

	minConfidence = 0.1
	maxConfidence = 0.95
)

// Detail carries the diagnostic breakdown behind a detection result.
type Detail struct {
	Keywords        map[Label][]string   `json:"keywords,omitempty"`
	Tiers           map[Label]TierCounts `json:"tiers,omitempty"`
	ContextMatches  map[Label][]string   `json:"context_matches,omitempty"`
	AudioIndicators []string             `json:"audio_indicators,omitempty"`
	Factors         []string             `json:"factors,omitempty"`
	Degraded        bool                 `json:"degraded,omitempty"`
	Insights        string               `json:"insights,omitempty"`
}

// Result is one emotion detection outcome.
type Result struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Detail     Detail  `json:"detail"`
}

// Input bundles everything a single detection may consume.
type Input struct {
	Text    string
	Context string
	// Features is optional; when nil only the text path runs.
	Features *FeatureVector
	// RecentDominant is the dominant emotion of recent history, empty when
	// there is no usable trend.
	RecentDominant Label
}

// Engine fuses keyword, acoustic and historical signals into one emotion.
type Engine struct {
	audio Scorer
}

// NewEngine builds a fusion engine. A nil scorer falls back to the built-in
// acoustic heuristics.
func NewEngine(audio Scorer) *Engine {
	if audio == nil {
		audio = NewHeuristicScorer()
	}
	return &Engine{audio: audio}
}

// Detect scores the input and returns the arg-max emotion with a clamped
// confidence. It never fails: unusable audio degrades to text-only scoring
// and a fully silent input yields neutral at confidence 0.5.
func (e *Engine) Detect(ctx context.Context, in Input) Result {
	var (
		text     textAnalysis
		audio    Scores
		audioErr error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		text = scoreText(in.Text, in.Context)
		return nil
	})
	if in.Features != nil {
		features := *in.Features
		eg.Go(func() error {
			// Audio failures degrade to text-only scoring, never abort.
			audio, audioErr = e.audio.ScoreAudio(egCtx, features)
			return nil
		})
	}
	_ = eg.Wait()

	detail := Detail{
		Keywords:       text.keywords,
		Tiers:          text.tiers,
		ContextMatches: text.contextMatches,
		Factors:        text.factors,
	}
	if audioErr != nil {
		detail.Degraded = true
		detail.Factors = append(detail.Factors, "audio scoring degraded: "+audioErr.Error())
	}
	if in.Features != nil && audioErr == nil {
		detail.AudioIndicators = in.Features.Indicators()
	}

	combined := fuse(text.scores, audio, in.RecentDominant)
	primary, primaryScore, total := argmax(combined)
	if primary == "" || primary == Neutral {
		detail.Insights = "no emotional signal detected"
		return Result{Label: Neutral, Confidence: 0.5, Detail: detail}
	}

	confidence := primaryScore / total
	if len(text.keywords[primary]) > 1 {
		confidence += 0.1
		detail.Factors = append(detail.Factors, "multiple keyword matches")
	}
	if text.tiers[primary].High > 0 {
		confidence += 0.15
		detail.Factors = append(detail.Factors, "high intensity expression")
	}
	if len(text.contextMatches[primary]) > 0 {
		confidence += 0.1
		detail.Factors = append(detail.Factors, "context match")
	}
	confidence = clampConfidence(confidence)

	detail.Factors = append(detail.Factors,
		fmt.Sprintf("primary score %.2f of %.2f total", primaryScore, total))
	detail.Insights = insights(primary, confidence, detail)

	return Result{Label: primary, Confidence: confidence, Detail: detail}
}

// fuse combines the normalized per-source scores with fixed weights.
func fuse(text Scores, audio Scores, recent Label) Scores {
	combined := Scores{}

	var maxText float64
	for _, v := range text {
		if v > maxText {
			maxText = v
		}
	}
	for label, v := range text {
		combined[label] += textWeight * (v / maxText)
	}
	for label, v := range audio {
		if label == Neutral {
			continue
		}
		combined[label] += audioWeight * v
	}
	if recent != "" && recent != Neutral {
		combined[recent] += trendWeight
	}
	return combined
}

func argmax(scores Scores) (Label, float64, float64) {
	var (
		primary Label
		best    float64
		total   float64
	)
	for _, label := range Labels {
		v := scores[label]
		if v <= 0 {
			continue
		}
		total += v
		if v > best {
			best = v
			primary = label
		}
	}
	return primary, best, total
}

func clampConfidence(v float64) float64 {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}

func insights(label Label, confidence float64, d Detail) string {
	var parts []string
	switch {
	case confidence >= 0.8:
		parts = append(parts, "high confidence detection")
	case confidence >= 0.6:
		parts = append(parts, "moderate confidence detection")
	default:
		parts = append(parts, "low confidence detection")
	}

	tiers := d.Tiers[label]
	switch {
	case tiers.High > 0:
		parts = append(parts, "high intensity emotional expression")
	case tiers.Medium > 0:
		parts = append(parts, "medium intensity emotional expression")
	case tiers.Low > 0:
		parts = append(parts, "low intensity emotional expression")
	}

	if len(d.ContextMatches[label]) > 0 {
		parts = append(parts, "context-appropriate detection")
	}
	if len(d.AudioIndicators) > 0 {
		parts = append(parts, "acoustic signals: "+strings.Join(d.AudioIndicators, ", "))
	}
	return strings.Join(parts, " | ")
}
