package scenario

import "github.com/riverine/ripple/internal/event"

// Message is the generic event payload scenario dispatches use. Fields
// carry whatever the scenario file declares; callbacks may mutate them
// mid-pass and the mutations bubble with the payload.
type Message struct {
	target event.EntityID

	Fields map[string]any `json:"fields"`
}

// NewMessage builds a payload targeting the given entity.
// A nil fields map is replaced with an empty one so callbacks can always
// write into it.
func NewMessage(target event.EntityID, fields map[string]any) Message {
	if fields == nil {
		fields = map[string]any{}
	}
	return Message{target: target, Fields: fields}
}

// Target implements event.EntityEvent.
func (m Message) Target() event.EntityID {
	return m.target
}
