package nostr

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
)

// wireEvent is the NIP-01 event object as relays serialize it. Signature
// and proof-of-work fields are carried but not verified here.
type wireEvent struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// decodeFrame parses one relay frame. NIP-01 frames are JSON arrays:
// ["EVENT", <sub id>, <event>], ["EOSE", <sub id>], ["NOTICE", <message>].
// Only EVENT frames produce an order event; EOSE and NOTICE return
// (nil, "", nil) and (nil, notice, nil) respectively.
func decodeFrame(data []byte, relayURL string) (*domain.OrderEvent, string, error) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, "", fmt.Errorf("decode relay frame: %w", err)
	}
	if len(frame) == 0 {
		return nil, "", fmt.Errorf("empty relay frame")
	}

	var label string
	if err := json.Unmarshal(frame[0], &label); err != nil {
		return nil, "", fmt.Errorf("decode frame label: %w", err)
	}

	switch label {
	case "EVENT":
		if len(frame) < 3 {
			return nil, "", fmt.Errorf("short EVENT frame")
		}
		var ev wireEvent
		if err := json.Unmarshal(frame[2], &ev); err != nil {
			return nil, "", fmt.Errorf("decode event payload: %w", err)
		}
		return &domain.OrderEvent{
			ID:        ev.ID,
			Kind:      ev.Kind,
			CreatedAt: time.Unix(ev.CreatedAt, 0).UTC(),
			Tags:      ev.Tags,
			Relay:     relayURL,
		}, "", nil
	case "NOTICE":
		notice := ""
		if len(frame) > 1 {
			_ = json.Unmarshal(frame[1], &notice)
		}
		return nil, notice, nil
	default:
		// EOSE, OK, AUTH and anything else a relay invents are ignored.
		return nil, "", nil
	}
}

// subscribeFrame builds the REQ frame requesting order events. Server-side
// filtering beyond the kind is not assumed reliable across relays.
func subscribeFrame(subID string, kind int) ([]byte, error) {
	req := []any{"REQ", subID, map[string]any{"kinds": []int{kind}}}
	return json.Marshal(req)
}
