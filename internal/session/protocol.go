package session

import (
	"encoding/json"

	"github.com/inamate/vecedit/internal/dispatch"
)

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeError = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit = "op.submit"
	TypeOpAck    = "op.ack"
	TypeOpNack   = "op.nack"
)

// OpRequest names an editing operation and its arguments. RequestID is
// echoed in the ack so clients can match replies.
type OpRequest struct {
	RequestID string          `json:"requestId,omitempty"`
	Op        string          `json:"op"`
	Args      json.RawMessage `json:"args,omitempty"`
}

type OpAckPayload struct {
	RequestID string `json:"requestId,omitempty"`
	Op        string `json:"op"`
	ServerSeq int64  `json:"serverSeq"`
	Result    any    `json:"result,omitempty"`
}

type OpNackPayload struct {
	RequestID string `json:"requestId,omitempty"`
	Op        string `json:"op"`
	Reason    string `json:"reason"`
}

// DocSyncPayload carries the full draw list after a change.
type DocSyncPayload struct {
	ServerSeq int64               `json:"serverSeq"`
	Draw      dispatch.DrawResult `json:"draw"`
}

type WelcomePayload struct {
	ClientID  string              `json:"clientId"`
	SessionID string              `json:"sessionId"`
	Editor    string              `json:"editor"`
	ProjectID string              `json:"projectId"`
	Draw      dispatch.DrawResult `json:"draw"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(msgType string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: msgType, Payload: data}
}
