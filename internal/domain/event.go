package domain

import "time"

// OrderEventKind is the Nostr event kind carrying NIP-69 P2P order
// broadcasts.
const OrderEventKind = 38383

// OrderEvent is one raw event as delivered by a relay: an identity string,
// the event kind, and the ordered tag-value pairs. Validation and
// normalization happen downstream.
type OrderEvent struct {
	ID        string
	Kind      int
	CreatedAt time.Time
	Tags      [][]string
	Relay     string
}

// Tag returns the first value of the named tag. Unknown tags are simply
// never asked for; missing tags report ok=false.
func (e OrderEvent) Tag(name string) (string, bool) {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1], true
		}
	}
	return "", false
}

// EventSink accepts raw events from relay connections. Publish must never
// block: implementations report false when the event was dropped because
// the merge queue is full.
type EventSink interface {
	Publish(event OrderEvent) bool
}
