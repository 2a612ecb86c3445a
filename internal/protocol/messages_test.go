package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageTurn(t *testing.T) {
	raw := []byte(`{"type":"client_turn","session_id":"s1","user_id":"u1","text":"I feel anxious","ts_ms":123}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	turn, ok := msg.(ClientTurn)
	if !ok {
		t.Fatalf("message type = %T, want ClientTurn", msg)
	}
	if turn.SessionID != "s1" || turn.Text != "I feel anxious" {
		t.Fatalf("unexpected client turn: %+v", turn)
	}
	if turn.TSMs != 123 {
		t.Fatalf("TSMs = %d, want 123", turn.TSMs)
	}
}

func TestParseClientMessageTurnWithFeatures(t *testing.T) {
	raw := []byte(`{"type":"client_turn","session_id":"s1","features":{"energy":0.8,"pitch":0.7,"tempo":120,"spectral_centroid":0.5}}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	turn, ok := msg.(ClientTurn)
	if !ok {
		t.Fatalf("message type = %T, want ClientTurn", msg)
	}
	if turn.Features == nil || turn.Features.Energy != 0.8 {
		t.Fatalf("features not decoded: %+v", turn.Features)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsEmptyTurn(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_turn","session_id":"s1"}`))
	if err == nil {
		t.Fatalf("expected validation error for turn without text or features")
	}
}

func TestParseClientMessageRejectsMissingSession(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_turn","text":"hi"}`))
	if err == nil {
		t.Fatalf("expected validation error for missing session_id")
	}
}
