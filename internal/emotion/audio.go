package emotion

import (
	"context"
	"errors"
	"math"
)

// FeatureVector carries the pre-extracted acoustic features of an utterance.
// Energy, Pitch and SpectralCentroid are normalized to [0,1]; Tempo is BPM.
type FeatureVector struct {
	Energy           float64 `json:"energy"`
	Pitch            float64 `json:"pitch"`
	Tempo            float64 `json:"tempo"`
	SpectralCentroid float64 `json:"spectral_centroid"`
}

var ErrBadFeatures = errors.New("audio features out of range")

// Scorer produces per-emotion scores from an audio feature vector. The fusion
// step is agnostic to the backing strategy, so a model-based scorer can
// replace the heuristic one without touching fusion or policy code.
type Scorer interface {
	ScoreAudio(ctx context.Context, features FeatureVector) (Scores, error)
}

// HeuristicScorer maps coarse acoustic patterns to emotions with fixed rules.
// Every rule yields a score bounded to [0, 0.9].
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer { return &HeuristicScorer{} }

func (h *HeuristicScorer) ScoreAudio(_ context.Context, f FeatureVector) (Scores, error) {
	if err := validateFeatures(f); err != nil {
		return nil, err
	}

	scores := Scores{Neutral: 0.5}

	switch {
	case f.Energy > 0.7 && f.Pitch > 0.6:
		scores[Happiness] = clampScore(f.Energy + f.Pitch - 0.5)
	case f.Energy < 0.4 && f.Pitch < 0.4:
		scores[Sadness] = clampScore((0.5 - f.Energy) + (0.5 - f.Pitch))
	case f.Energy > 0.7 && f.Pitch < 0.4:
		scores[Anger] = clampScore(f.Energy + (0.5 - f.Pitch))
	case f.Tempo > 140 && f.SpectralCentroid > 0.6:
		scores[Fear] = clampScore((f.Tempo-120)/100 + f.SpectralCentroid)
	}

	return scores, nil
}

func validateFeatures(f FeatureVector) error {
	for _, v := range []float64{f.Energy, f.Pitch, f.SpectralCentroid} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return ErrBadFeatures
		}
	}
	if math.IsNaN(f.Tempo) || f.Tempo < 0 || f.Tempo > 400 {
		return ErrBadFeatures
	}
	return nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 0.9 {
		return 0.9
	}
	return v
}

// Indicators describes the acoustic signals a feature vector exhibits.
func (f FeatureVector) Indicators() []string {
	var out []string
	if f.Energy > 0.7 {
		out = append(out, "high_energy")
	}
	if f.Pitch > 0.6 {
		out = append(out, "high_pitch")
	}
	if f.Tempo > 140 {
		out = append(out, "fast_tempo")
	}
	if f.SpectralCentroid > 0.6 {
		out = append(out, "bright_tone")
	}
	return out
}
