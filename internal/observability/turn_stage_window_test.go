package observability

import (
	"testing"
	"time"
)

func TestTurnStageWindowSnapshot(t *testing.T) {
	w := NewTurnStageWindow(8)

	for i := 1; i <= 4; i++ {
		w.Observe(StageDetectEmotion, time.Duration(i)*time.Millisecond)
	}
	w.Observe(StageTurnTotal, 10*time.Millisecond)
	w.ObserveIndicator("fallback")
	w.ObserveIndicator("fallback")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("window size = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(snap.Stages))
	}

	// Stages are sorted by name, detect_emotion before turn_total.
	detect := snap.Stages[0]
	if detect.Stage != StageDetectEmotion {
		t.Fatalf("first stage = %q, want %q", detect.Stage, StageDetectEmotion)
	}
	if detect.Samples != 4 {
		t.Fatalf("samples = %d, want 4", detect.Samples)
	}
	if detect.LastMS != 4 {
		t.Fatalf("last = %.2f, want 4", detect.LastMS)
	}
	if detect.AvgMS != 2.5 {
		t.Fatalf("avg = %.2f, want 2.5", detect.AvgMS)
	}
	if detect.P50MS != 2.5 {
		t.Fatalf("p50 = %.2f, want 2.5", detect.P50MS)
	}
	if detect.TargetP95MS == 0 {
		t.Fatalf("expected a p95 target for %s", detect.Stage)
	}

	if len(snap.Indicators) != 1 || snap.Indicators[0].Name != "fallback" || snap.Indicators[0].Count != 2 {
		t.Fatalf("indicators = %+v, want fallback count 2", snap.Indicators)
	}
}

func TestTurnStageWindowWraps(t *testing.T) {
	w := NewTurnStageWindow(4)
	for i := 1; i <= 10; i++ {
		w.Observe(StageRender, time.Duration(i)*time.Millisecond)
	}

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(snap.Stages))
	}
	st := snap.Stages[0]
	if st.Samples != 4 {
		t.Fatalf("samples = %d, want 4 after wrap", st.Samples)
	}
	// Window holds the last four observations, 7..10 ms.
	if st.AvgMS != 8.5 {
		t.Fatalf("avg = %.2f, want 8.5", st.AvgMS)
	}
	if st.LastMS != 10 {
		t.Fatalf("last = %.2f, want 10", st.LastMS)
	}
}

func TestTurnStageWindowReset(t *testing.T) {
	w := NewTurnStageWindow(4)
	w.Observe(StageSelectPlan, time.Millisecond)
	w.ObserveIndicator("degraded_audio")
	w.Reset()

	snap := w.Snapshot()
	if len(snap.Stages) != 0 || len(snap.Indicators) != 0 {
		t.Fatalf("snapshot not empty after reset: %+v", snap)
	}
}
