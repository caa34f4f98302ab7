package realtime

import "encoding/json"

// Wire frame types. The gateway speaks JSON text frames over one websocket.
const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
	framePublish     = "publish"
	frameMessage     = "message"
	frameHeartbeat   = "heartbeat"
)

type frame struct {
	Type        string          `json:"type"`
	Destination string          `json:"destination,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// Message is one inbound frame delivered to subscribers. The body is kept
// raw: a malformed payload degrades to text, it is never dropped.
type Message struct {
	Destination string
	Body        []byte
}

// Decode unmarshals the message body into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Body, v)
}

// Text returns the body as plain text, unquoting it when the gateway sent a
// JSON string.
func (m Message) Text() string {
	var s string
	if err := json.Unmarshal(m.Body, &s); err == nil {
		return s
	}
	return string(m.Body)
}
