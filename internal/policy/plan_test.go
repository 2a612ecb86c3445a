package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/ent0n29/sereno/internal/emotion"
	"github.com/ent0n29/sereno/internal/memory"
)

func TestSelectPlanAnxietyTechniques(t *testing.T) {
	e := NewEngine()
	plan := e.SelectPlan(emotion.Anxiety, 0.8, memory.Context{}, EngagementMedium)

	if !hasTechnique(plan.Techniques, Grounding) || !hasTechnique(plan.Techniques, CognitiveRestructuring) {
		t.Fatalf("anxiety techniques = %v, want grounding and cognitive_restructuring", plan.Techniques)
	}
	if plan.Validation != ValidationHigh {
		t.Fatalf("validation = %q, want high", plan.Validation)
	}
	if plan.Pace != PaceSlower {
		t.Fatalf("pace = %q, want slower", plan.Pace)
	}
}

func TestSelectPlanSadnessValidation(t *testing.T) {
	e := NewEngine()
	plan := e.SelectPlan(emotion.Sadness, 0.8, memory.Context{}, EngagementMedium)
	if plan.Validation != ValidationVeryHigh {
		t.Fatalf("validation = %q, want very_high", plan.Validation)
	}
}

func TestSelectPlanUnknownEmotionFallsBack(t *testing.T) {
	e := NewEngine()
	plan := e.SelectPlan(emotion.Label("boredom"), 0.8, memory.Context{}, EngagementMedium)
	if !hasTechnique(plan.Techniques, GeneralSupport) {
		t.Fatalf("unknown emotion techniques = %v, want general_support row", plan.Techniques)
	}
	if plan.Validation != ValidationMedium {
		t.Fatalf("validation = %q, want medium", plan.Validation)
	}
}

func TestSelectPlanStressTopicOverride(t *testing.T) {
	e := NewEngine()
	plan := e.SelectPlan(emotion.Neutral, 0.8, memory.Context{Topics: []string{"stress", "work"}}, EngagementMedium)
	if !hasTechnique(plan.Techniques, StressManagement) || !hasTechnique(plan.Techniques, Relaxation) {
		t.Fatalf("stress topic techniques = %v, want stress_management and relaxation", plan.Techniques)
	}
}

func TestSelectPlanEngagementAdjustments(t *testing.T) {
	e := NewEngine()

	low := e.SelectPlan(emotion.Neutral, 0.8, memory.Context{}, EngagementLow)
	if low.Length != LengthShorter || low.Tone != ToneEncouraging {
		t.Fatalf("low engagement plan = %+v, want shorter/encouraging", low)
	}

	high := e.SelectPlan(emotion.Neutral, 0.8, memory.Context{}, EngagementHigh)
	if high.Length != LengthLonger {
		t.Fatalf("high engagement length = %q, want longer", high.Length)
	}
}

func TestSelectPlanStageOverridesWin(t *testing.T) {
	e := NewEngine()
	// 20 minutes in, even a low-engagement plan lands on therapeutic work.
	ctx := memory.Context{Duration: 20 * time.Minute}
	plan := e.SelectPlan(emotion.Anxiety, 0.8, ctx, EngagementLow)
	if plan.Stage != StageLate {
		t.Fatalf("stage = %q, want late", plan.Stage)
	}
	if plan.Depth != DepthTherapeuticWork {
		t.Fatalf("depth = %q, want therapeutic_work", plan.Depth)
	}
	if plan.Tone != ToneTherapeutic {
		t.Fatalf("late-stage tone = %q, want therapeutic (stage merge wins)", plan.Tone)
	}
}

func TestSelectPlanFollowUpsCapped(t *testing.T) {
	e := NewEngine()
	for _, level := range []EngagementLevel{EngagementLow, EngagementMedium, EngagementHigh} {
		plan := e.SelectPlan(emotion.Anxiety, 0.8, memory.Context{}, level)
		if len(plan.FollowUps) == 0 || len(plan.FollowUps) > 3 {
			t.Fatalf("%s follow-ups = %d, want 1..3", level, len(plan.FollowUps))
		}
	}
}

func TestEngagementTrackerLevels(t *testing.T) {
	tr := NewEngagementTracker()

	if got := tr.Level("nobody"); got != EngagementMedium {
		t.Fatalf("empty history level = %q, want medium", got)
	}

	for i := 0; i < 10; i++ {
		tr.Record("u-low", EngagementSample{ResponseLatency: time.Minute, ComfortLevel: 0.1, Flow: "halting"})
	}
	if got := tr.Level("u-low"); got != EngagementLow {
		t.Fatalf("level = %q, want low", got)
	}

	for i := 0; i < 10; i++ {
		tr.Record("u-high", EngagementSample{ResponseLatency: 2 * time.Second, ComfortLevel: 0.9, Flow: "flowing"})
	}
	if got := tr.Level("u-high"); got != EngagementHigh {
		t.Fatalf("level = %q, want high", got)
	}
}

func TestEngagementTrackerRecencyWeighting(t *testing.T) {
	tr := NewEngagementTracker()
	// Old disengaged samples followed by a run of engaged ones should read
	// at least medium.
	for i := 0; i < 5; i++ {
		tr.Record("u1", EngagementSample{ResponseLatency: time.Minute, ComfortLevel: 0.1, Flow: "halting"})
	}
	for i := 0; i < 15; i++ {
		tr.Record("u1", EngagementSample{ResponseLatency: 2 * time.Second, ComfortLevel: 0.9, Flow: "flowing"})
	}
	if got := tr.Level("u1"); got == EngagementLow {
		t.Fatalf("level = low, recent engaged samples should outweigh old ones")
	}
}

func TestRedactPII(t *testing.T) {
	in := "call me at +1 555-123-4567 or mail jane@example.com"
	out, changed := RedactPII(in)
	if !changed {
		t.Fatalf("expected redaction changes")
	}
	for _, leaked := range []string{"555-123-4567", "jane@example.com"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("output still contains %q: %q", leaked, out)
		}
	}
}

func hasTechnique(ts []Technique, want Technique) bool {
	for _, t := range ts {
		if t == want {
			return true
		}
	}
	return false
}

