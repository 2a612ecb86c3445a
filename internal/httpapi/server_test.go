package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/sereno/internal/companion"
	"github.com/ent0n29/sereno/internal/config"
	"github.com/ent0n29/sereno/internal/memory"
	"github.com/ent0n29/sereno/internal/observability"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	conv := memory.NewConversations(memory.NewInMemoryStore(), memory.DefaultMaxHistory)
	orch := companion.NewOrchestrator(conv, companion.Options{
		Stages: observability.NewTurnStageWindow(64),
	})
	srv := New(config.Config{}, orch, nil, observability.NewTurnStageWindow(64))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
	}
}

func TestCreateSessionAndTurn(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"user_id": "user-1"})
	res, err := http.Post(ts.URL+"/v1/session", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create session request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var created map[string]any
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	sessionID, _ := created["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("missing session id in create response: %+v", created)
	}

	turnBody, _ := json.Marshal(map[string]any{
		"session_id": sessionID,
		"user_id":    "user-1",
		"text":       "I feel really anxious about my presentation tomorrow",
	})
	turnRes, err := http.Post(ts.URL+"/v1/turn", "application/json", bytes.NewReader(turnBody))
	if err != nil {
		t.Fatalf("turn request error = %v", err)
	}
	defer turnRes.Body.Close()
	if turnRes.StatusCode != http.StatusOK {
		t.Fatalf("turn status = %d, want %d", turnRes.StatusCode, http.StatusOK)
	}

	var result companion.TurnResult
	if err := json.NewDecoder(turnRes.Body).Decode(&result); err != nil {
		t.Fatalf("decode turn response: %v", err)
	}
	if result.Emotion != "anxiety" {
		t.Fatalf("emotion = %q, want anxiety", result.Emotion)
	}
	if result.ResponseText == "" || result.TurnID == "" {
		t.Fatalf("incomplete turn result: %+v", result)
	}

	ctxRes, err := http.Get(ts.URL + "/v1/session/" + sessionID + "/context")
	if err != nil {
		t.Fatalf("context request error = %v", err)
	}
	defer ctxRes.Body.Close()
	if ctxRes.StatusCode != http.StatusOK {
		t.Fatalf("context status = %d, want %d", ctxRes.StatusCode, http.StatusOK)
	}

	var sctx memory.Context
	if err := json.NewDecoder(ctxRes.Body).Decode(&sctx); err != nil {
		t.Fatalf("decode context response: %v", err)
	}
	if sctx.ExchangeCount != 1 {
		t.Fatalf("exchange count = %d, want 1", sctx.ExchangeCount)
	}

	endRes, err := http.Post(ts.URL+"/v1/session/"+sessionID+"/end", "application/json", nil)
	if err != nil {
		t.Fatalf("end session request error = %v", err)
	}
	defer endRes.Body.Close()
	if endRes.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d, want %d", endRes.StatusCode, http.StatusOK)
	}

	goneRes, err := http.Post(ts.URL+"/v1/session/"+sessionID+"/end", "application/json", nil)
	if err != nil {
		t.Fatalf("second end request error = %v", err)
	}
	goneRes.Body.Close()
	if goneRes.StatusCode != http.StatusNotFound {
		t.Fatalf("second end status = %d, want %d", goneRes.StatusCode, http.StatusNotFound)
	}
}

func TestTurnValidation(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"text": "hello"})
	res, err := http.Post(ts.URL+"/v1/turn", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("turn request error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d for missing session_id", res.StatusCode, http.StatusBadRequest)
	}

	body, _ = json.Marshal(map[string]any{"session_id": "s1"})
	res, err = http.Post(ts.URL+"/v1/turn", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("turn request error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d for empty turn", res.StatusCode, http.StatusBadRequest)
	}
}

func TestListTechniques(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/v1/techniques")
	if err != nil {
		t.Fatalf("GET /v1/techniques error = %v", err)
	}
	defer res.Body.Close()

	var payload struct {
		Techniques []map[string]any `json:"techniques"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Techniques) == 0 {
		t.Fatalf("empty technique catalog")
	}
}

func TestPerfLatencyAfterTurn(t *testing.T) {
	conv := memory.NewConversations(memory.NewInMemoryStore(), memory.DefaultMaxHistory)
	stages := observability.NewTurnStageWindow(64)
	orch := companion.NewOrchestrator(conv, companion.Options{Stages: stages})
	srv := New(config.Config{}, orch, nil, stages)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"session_id": "s1", "text": "I'm worried"})
	res, err := http.Post(ts.URL+"/v1/turn", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("turn request error = %v", err)
	}
	res.Body.Close()

	perfRes, err := http.Get(ts.URL + "/v1/perf/latency")
	if err != nil {
		t.Fatalf("GET /v1/perf/latency error = %v", err)
	}
	defer perfRes.Body.Close()

	var snap observability.TurnStageSnapshot
	if err := json.NewDecoder(perfRes.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Stages) == 0 {
		t.Fatalf("no stage latencies recorded")
	}
}

func TestTurnWebsocket(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/turn/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	turn := map[string]any{
		"type":       "client_turn",
		"session_id": "ws-1",
		"text":       "I feel sad and alone",
	}
	if err := conn.WriteJSON(turn); err != nil {
		t.Fatalf("write turn: %v", err)
	}

	var reply map[string]any
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply["type"] != "companion_reply" {
		t.Fatalf("reply type = %v, want companion_reply", reply["type"])
	}
	if reply["emotion"] != "sadness" {
		t.Fatalf("emotion = %v, want sadness", reply["emotion"])
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatalf("write bogus: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read error event: %v", err)
	}
	if reply["type"] != "error_event" {
		t.Fatalf("reply type = %v, want error_event", reply["type"])
	}
}
