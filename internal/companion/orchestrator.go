package companion

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/sereno/internal/emotion"
	"github.com/ent0n29/sereno/internal/memory"
	"github.com/ent0n29/sereno/internal/observability"
	"github.com/ent0n29/sereno/internal/policy"
	"github.com/ent0n29/sereno/internal/render"
)

// TurnRequest is one user turn entering the pipeline.
type TurnRequest struct {
	SessionID string                   `json:"session_id"`
	UserID    string                   `json:"user_id,omitempty"`
	Text      string                   `json:"text"`
	Features  *emotion.FeatureVector   `json:"features,omitempty"`
	Metrics   *policy.EngagementSample `json:"metrics,omitempty"`
	// Voice overrides the synthesized voice parameters field-wise.
	Voice *render.VoiceInstructions `json:"voice,omitempty"`
}

// TurnResult is the companion's reply for one turn.
type TurnResult struct {
	SessionID         string                   `json:"session_id"`
	TurnID            string                   `json:"turn_id"`
	ResponseText      string                   `json:"response_text"`
	Emotion           emotion.Label            `json:"emotion"`
	Confidence        float64                  `json:"confidence"`
	Voice             render.VoiceInstructions `json:"voice"`
	TechniquesUsed    []string                 `json:"techniques_used"`
	FollowUpQuestions []string                 `json:"follow_up_questions,omitempty"`
	Fallback          bool                     `json:"fallback,omitempty"`
}

// Orchestrator drives a turn through detection, context building, planning,
// rendering and recording. Any mid-pipeline failure collapses into a safe
// fallback reply instead of an error to the caller.
type Orchestrator struct {
	emotions      *emotion.Engine
	conversations *memory.Conversations
	plans         *policy.Engine
	engagement    *policy.EngagementTracker
	drafts        *DraftBank
	renderer      *render.Renderer

	metrics *observability.Metrics
	stages  *observability.TurnStageWindow

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// Options carries the optional orchestrator collaborators. Zero values fall
// back to sane defaults.
type Options struct {
	Emotions   *emotion.Engine
	Plans      *policy.Engine
	Engagement *policy.EngagementTracker
	Drafts     *DraftBank
	Renderer   *render.Renderer
	Metrics    *observability.Metrics
	Stages     *observability.TurnStageWindow
}

func NewOrchestrator(conversations *memory.Conversations, opts Options) *Orchestrator {
	o := &Orchestrator{
		emotions:      opts.Emotions,
		conversations: conversations,
		plans:         opts.Plans,
		engagement:    opts.Engagement,
		drafts:        opts.Drafts,
		renderer:      opts.Renderer,
		metrics:       opts.Metrics,
		stages:        opts.Stages,
		sessions:      make(map[string]*sync.Mutex),
	}
	if o.emotions == nil {
		o.emotions = emotion.NewEngine(nil)
	}
	if o.plans == nil {
		o.plans = policy.NewEngine()
	}
	if o.engagement == nil {
		o.engagement = policy.NewEngagementTracker()
	}
	if o.drafts == nil {
		o.drafts = NewDraftBank(nil)
	}
	if o.renderer == nil {
		o.renderer = render.New()
	}
	return o
}

// HandleTurn runs the full pipeline for one turn. It never returns an error:
// failures produce a fallback result with a neutral, low-confidence reply.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (result TurnResult) {
	start := time.Now()
	turnID := uuid.NewString()

	result = TurnResult{
		SessionID:    req.SessionID,
		TurnID:       turnID,
		ResponseText: fallbackResponse,
		Emotion:      emotion.Neutral,
		Confidence:   0.5,
		Voice:        render.DefaultVoice(),
		Fallback:     true,
	}

	defer func() {
		if r := recover(); r != nil {
			result = o.fallbackResult(req.SessionID, turnID)
		}
		if result.Fallback {
			if o.metrics != nil {
				o.metrics.FallbackTurns.Inc()
			}
			o.stages.ObserveIndicator("fallback")
		}
		elapsed := time.Since(start)
		if o.metrics != nil {
			o.metrics.ObserveTurnLatency(elapsed)
			o.metrics.Turns.WithLabelValues(string(result.Emotion)).Inc()
		}
		if o.stages != nil {
			o.stages.Observe(observability.StageTurnTotal, elapsed)
		}
	}()

	// A silent turn gets a gentle prompt without recording an exchange.
	text := strings.TrimSpace(req.Text)
	if text == "" && req.Features == nil {
		result.ResponseText = "I'm here with you. Tell me more about what's on your mind."
		result.Fallback = false
		return result
	}

	if req.Metrics != nil && req.UserID != "" {
		o.engagement.Record(req.UserID, *req.Metrics)
	}

	// Context first: the trend's dominant emotion feeds the detector.
	stageStart := time.Now()
	sctx, err := o.conversations.Context(ctx, req.SessionID)
	o.observeStage(observability.StageBuildContext, stageStart)
	if err != nil {
		return o.fallbackResult(req.SessionID, turnID)
	}

	var recentDominant emotion.Label
	if sctx.ExchangeCount > 0 {
		recentDominant = sctx.Trend.Dominant
	}

	stageStart = time.Now()
	detected := o.emotions.Detect(ctx, emotion.Input{
		Text:           text,
		Context:        o.conversations.PersonalizedContext(ctx, req.SessionID),
		Features:       req.Features,
		RecentDominant: recentDominant,
	})
	o.observeStage(observability.StageDetectEmotion, stageStart)
	if detected.Detail.Degraded {
		o.stages.ObserveIndicator("degraded_audio")
	}

	stageStart = time.Now()
	plan := o.plans.SelectPlan(detected.Label, detected.Confidence, sctx, o.engagement.Level(req.UserID))
	o.observeStage(observability.StageSelectPlan, stageStart)

	stageStart = time.Now()
	draft := o.drafts.Draft(detected.Label, sctx.Topics)
	responseText, voice := o.renderer.Render(plan, draft, detected.Label, req.Voice)
	o.observeStage(observability.StageRender, stageStart)

	stageStart = time.Now()
	if err := o.recordExchange(ctx, req, turnID, detected, responseText); err != nil {
		o.observeStage(observability.StageRecordExchange, stageStart)
		return o.fallbackResult(req.SessionID, turnID)
	}
	o.observeStage(observability.StageRecordExchange, stageStart)

	techniques := make([]string, 0, len(plan.Techniques))
	for _, t := range plan.Techniques {
		techniques = append(techniques, string(t))
	}

	return TurnResult{
		SessionID:         req.SessionID,
		TurnID:            turnID,
		ResponseText:      responseText,
		Emotion:           detected.Label,
		Confidence:        detected.Confidence,
		Voice:             voice,
		TechniquesUsed:    techniques,
		FollowUpQuestions: plan.FollowUps,
	}
}

// recordExchange serializes writes per session so concurrent turns on the same
// session keep a consistent sequence.
func (o *Orchestrator) recordExchange(ctx context.Context, req TurnRequest, turnID string, detected emotion.Result, response string) error {
	mu := o.sessionLock(req.SessionID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := o.conversations.StartSession(ctx, req.SessionID, req.UserID); err != nil {
		return err
	}
	input, redacted := policy.RedactPII(req.Text)
	if redacted {
		o.stages.ObserveIndicator("pii_redacted")
	}
	return o.conversations.AddExchange(ctx, req.SessionID, memory.Exchange{
		ID:         turnID,
		UserInput:  input,
		Emotion:    detected.Label,
		Confidence: detected.Confidence,
		Response:   response,
	})
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	mu, ok := o.sessions[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		o.sessions[sessionID] = mu
	}
	return mu
}

func (o *Orchestrator) fallbackResult(sessionID, turnID string) TurnResult {
	return TurnResult{
		SessionID:    sessionID,
		TurnID:       turnID,
		ResponseText: fallbackResponse,
		Emotion:      emotion.Neutral,
		Confidence:   0.5,
		Voice:        render.DefaultVoice(),
		Fallback:     true,
	}
}

func (o *Orchestrator) observeStage(stage string, start time.Time) {
	if o.stages != nil {
		o.stages.Observe(stage, time.Since(start))
	}
}

// Conversations exposes the memory layer for the HTTP context endpoint.
func (o *Orchestrator) Conversations() *memory.Conversations { return o.conversations }
