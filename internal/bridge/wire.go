package bridge

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultChannel is the host object that receives profile events.
const DefaultChannel = "ProfileEvents"

// Transport delivers one serialized event to the host. Implementations must
// be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, channel, name, payload string) error
}

// Message is the flat wire form of one event, keyed by field name.
type Message map[string]any

// Encode serializes m to its wire text. A nil message encodes as "".
func (m Message) Encode() (string, error) {
	if m == nil {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeMessage parses wire text back into a Message.
func DecodeMessage(text string) (Message, error) {
	if text == "" {
		return nil, nil
	}
	var m Message
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}
