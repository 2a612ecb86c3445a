package policy

import (
	"time"

	"github.com/ent0n29/sereno/internal/emotion"
	"github.com/ent0n29/sereno/internal/memory"
)

// Stage buckets elapsed session time into therapy phases.
type Stage string

const (
	StageEarly  Stage = "early"
	StageMiddle Stage = "middle"
	StageLate   Stage = "late"
)

const (
	earlyStageLimit  = 5 * time.Minute
	middleStageLimit = 15 * time.Minute
)

// StageFor buckets a session duration.
func StageFor(d time.Duration) Stage {
	switch {
	case d < earlyStageLimit:
		return StageEarly
	case d < middleStageLimit:
		return StageMiddle
	default:
		return StageLate
	}
}

// Plan is the abstract response strategy for one turn. It is not persisted
// beyond the turn.
type Plan struct {
	Techniques []Technique     `json:"techniques"`
	Tone       Tone            `json:"tone"`
	Length     LengthClass     `json:"length"`
	Validation ValidationLevel `json:"validation"`
	Pace       Pace            `json:"pace"`
	Depth      Depth           `json:"depth"`
	Stage      Stage           `json:"stage"`
	Engagement EngagementLevel `json:"engagement"`
	FollowUps  []string        `json:"follow_ups"`
}

// RequiresValidationPhrase reports whether the rendered response must open
// with an emotion-specific validating phrase.
func (p Plan) RequiresValidationPhrase() bool {
	return p.Validation == ValidationHigh || p.Validation == ValidationVeryHigh
}

// Engine selects a therapeutic plan per turn from fixed lookup tables merged
// with engagement- and stage-specific adjustments. Later merges win.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

const maxFollowUps = 3

// SelectPlan maps (emotion, confidence, session context, engagement) onto a
// plan. Unknown emotions fall back to the neutral row, an empty engagement
// level to medium.
func (e *Engine) SelectPlan(label emotion.Label, confidence float64, sctx memory.Context, engagement EngagementLevel) Plan {
	if engagement != EngagementLow && engagement != EngagementHigh {
		engagement = EngagementMedium
	}

	plan := Plan{
		Techniques: techniquesFor(label, sctx.Topics),
		Tone:       ToneNeutral,
		Length:     LengthMedium,
		Validation: ValidationMedium,
		Pace:       PaceSteady,
		Depth:      DepthSurface,
		Stage:      StageFor(sctx.Duration),
		Engagement: engagement,
	}

	if v, ok := emotionValidation[label]; ok {
		plan.Validation = v
	}
	if p, ok := emotionPace[label]; ok {
		plan.Pace = p
	}

	// Engagement adjustments.
	switch engagement {
	case EngagementLow:
		plan.Length = LengthShorter
		plan.Tone = ToneEncouraging
		plan.Techniques = appendMissing(plan.Techniques, Mindfulness, Validation)
	case EngagementHigh:
		plan.Length = LengthLonger
		plan.Tone = ToneTherapeutic
	}

	// Stage adjustments merge last and win on collisions.
	switch plan.Stage {
	case StageEarly:
		plan.Depth = DepthSurface
		if plan.Tone == ToneNeutral {
			plan.Tone = ToneEncouraging
		}
	case StageMiddle:
		plan.Depth = DepthDeeper
	case StageLate:
		plan.Depth = DepthTherapeuticWork
		plan.Tone = ToneTherapeutic
	}

	// Low-confidence detections soften into general support rather than a
	// targeted intervention.
	if confidence < 0.3 {
		plan.Techniques = []Technique{GeneralSupport}
		plan.Validation = ValidationMedium
	}

	plan.FollowUps = followUps(label, engagement)
	return plan
}

func techniquesFor(label emotion.Label, topics []string) []Technique {
	base, ok := emotionTechniques[label]
	if !ok {
		base = emotionTechniques[emotion.Neutral]
	}
	// A stress-centered conversation without a stronger emotional signal gets
	// the stress row instead of general support.
	if len(base) > 0 && base[0] == GeneralSupport {
		for _, topic := range topics {
			if topic == "stress" {
				base = stressTechniques
				break
			}
		}
	}
	out := make([]Technique, len(base))
	copy(out, base)
	return out
}

func followUps(label emotion.Label, engagement EngagementLevel) []string {
	var out []string
	if engagement == EngagementLow {
		out = append(out, lowEngagementFollowUps...)
	} else {
		out = append(out, highEngagementFollowUps...)
	}
	out = append(out, followUpBank[label]...)
	if len(out) > maxFollowUps {
		out = out[:maxFollowUps]
	}
	return out
}

func appendMissing(ts []Technique, extra ...Technique) []Technique {
	for _, t := range extra {
		found := false
		for _, existing := range ts {
			if existing == t {
				found = true
				break
			}
		}
		if !found {
			ts = append(ts, t)
		}
	}
	return ts
}
