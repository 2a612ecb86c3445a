package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ent0n29/sereno/internal/companion"
	"github.com/ent0n29/sereno/internal/config"
	"github.com/ent0n29/sereno/internal/memory"
	"github.com/ent0n29/sereno/internal/observability"
	"github.com/ent0n29/sereno/internal/policy"
	"github.com/ent0n29/sereno/internal/protocol"
)

type Server struct {
	cfg          config.Config
	orchestrator *companion.Orchestrator
	metrics      *observability.Metrics
	stages       *observability.TurnStageWindow
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, orchestrator *companion.Orchestrator, metrics *observability.Metrics, stages *observability.TurnStageWindow) *Server {
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		metrics:      metrics,
		stages:       stages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same origin
				// unless explicitly opened up. Conversations are sensitive.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/session", s.handleCreateSession)
	r.Post("/v1/session/{id}/end", s.handleEndSession)
	r.Get("/v1/session/{id}/context", s.handleSessionContext)
	r.Post("/v1/turn", s.handleTurn)
	r.Get("/v1/turn/ws", s.handleTurnWS)
	r.Get("/v1/techniques", s.handleListTechniques)
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.orchestrator.Conversations().Store().Count(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type createSessionRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = uuid.NewString()
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = "anonymous"
	}

	sess, err := s.orchestrator.Conversations().StartSession(r.Context(), req.SessionID, req.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session_create_failed", err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("created").Inc()
		if n, err := s.orchestrator.Conversations().Store().Count(r.Context()); err == nil {
			s.metrics.ActiveSessions.Set(float64(n))
		}
	}

	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sctx, err := s.orchestrator.Conversations().EndSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			respondError(w, http.StatusNotFound, "session_not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "session_end_failed", err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("ended").Inc()
		if n, err := s.orchestrator.Conversations().Store().Count(r.Context()); err == nil {
			s.metrics.ActiveSessions.Set(float64(n))
		}
	}
	respondJSON(w, http.StatusOK, sctx)
}

func (s *Server) handleSessionContext(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	sctx, err := s.orchestrator.Conversations().Context(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "context_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sctx)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req companion.TurnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session_id")
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.Features == nil {
		respondError(w, http.StatusBadRequest, "invalid_turn", "turn needs text or features")
		return
	}

	respondJSON(w, http.StatusOK, s.orchestrator.HandleTurn(r.Context(), req))
}

func (s *Server) handleListTechniques(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"techniques": policy.CatalogAll()})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.stages == nil {
		respondJSON(w, http.StatusOK, observability.TurnStageSnapshot{Stages: []observability.TurnStageStats{}})
		return
	}
	respondJSON(w, http.StatusOK, s.stages.Snapshot())
}

func (s *Server) handleTurnWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan protocol.ClientTurn, 64)
	outbound := make(chan any, 64)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		for {
			select {
			case <-ctx.Done():
				return
			case turn, ok := <-inbound:
				if !ok {
					return
				}
				res := s.orchestrator.HandleTurn(ctx, turn.TurnRequest)
				select {
				case outbound <- protocol.NewCompanionReply(res, time.Now().UnixMilli()):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	// Single writer goroutine keeps websocket writes serialized.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok && s.metrics != nil {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			errEvent := protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				Code:      "invalid_client_message",
				Retryable: false,
				Detail:    err.Error(),
			}
			select {
			case outbound <- errEvent:
			default:
				// Drop if the outbound queue is saturated; writes stay
				// single-threaded.
			}
			continue
		}

		turn, ok := parsed.(protocol.ClientTurn)
		if !ok {
			continue
		}
		if s.metrics != nil {
			s.metrics.WSMessages.WithLabelValues("inbound", string(turn.Type)).Inc()
		}
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- turn:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.ClientTurn:
		return m.Type, true
	case protocol.CompanionReply:
		return m.Type, true
	case protocol.SystemEvent:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
