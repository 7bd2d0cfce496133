// Package host contains the transports that carry serialized profile events
// to a host runtime: a websocket hub, a redis publisher, a log sink and an
// in-memory recorder.
package host

import (
	"encoding/json"
)

// Envelope is the frame delivered to a host for every outbound event.
type Envelope struct {
	Channel string `json:"channel"`
	Name    string `json:"name"`
	Payload string `json:"payload"`
}

func (e Envelope) marshal() ([]byte, error) {
	return json.Marshal(e)
}

// CallFrame is an inbound frame asking the bridge to run a host entry point.
type CallFrame struct {
	Call string          `json:"call"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Reply acknowledges a CallFrame.
type Reply struct {
	Call  string `json:"call"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
