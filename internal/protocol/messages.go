package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ent0n29/sereno/internal/companion"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientTurn     MessageType = "client_turn"
	TypeCompanionReply MessageType = "companion_reply"
	TypeSystemEvent    MessageType = "system_event"
	TypeErrorEvent     MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientTurn is one user turn arriving over the websocket. Either text or
// audio features must be present.
type ClientTurn struct {
	Type MessageType `json:"type"`
	companion.TurnRequest
	TSMs int64 `json:"ts_ms"`
}

// CompanionReply carries one rendered turn result back to the client.
type CompanionReply struct {
	Type MessageType `json:"type"`
	companion.TurnResult
	TSMs int64 `json:"ts_ms"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientTurn:
		var msg ClientTurn
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" {
			return nil, errors.New("invalid client_turn: missing session_id")
		}
		if msg.Text == "" && msg.Features == nil {
			return nil, errors.New("invalid client_turn: needs text or features")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}

// NewCompanionReply wraps a turn result for the wire.
func NewCompanionReply(res companion.TurnResult, tsMs int64) CompanionReply {
	return CompanionReply{Type: TypeCompanionReply, TurnResult: res, TSMs: tsMs}
}
