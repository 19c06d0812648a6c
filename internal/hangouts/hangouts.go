// Package hangouts decodes the top-level BatchUpdate message carried by a
// container array's batch-update payload. The full catalog of individual
// state update messages (membership changes, typing notifications, and so
// on) is outside this client's scope; each StateUpdate is kept as an opaque
// pblite-encoded message so a caller can decode the specific update kinds
// it cares about without this package needing to know every one of them.
package hangouts

import (
	"encoding/json"

	"github.com/dpeckett/hangupsd/internal/pblite"
)

// StateUpdate is one element of a BatchUpdate, left undecoded beyond its
// raw pblite array so callers can apply their own message descriptors.
type StateUpdate struct {
	Raw []json.RawMessage
}

// Name implements pblite.Decodable so StateUpdate can appear as a Message
// field, but StateUpdate has no fixed descriptor: DecodeBatchUpdate stores
// the raw array directly rather than decoding named fields.
func (s *StateUpdate) Name() string { return "StateUpdate" }

func (s *StateUpdate) Descriptor() []pblite.FieldDescriptor { return nil }

// BatchUpdate is the decoded form of a container array's batch-update
// payload: an ordered sequence of state updates delivered in one
// long-poll response chunk.
type BatchUpdate struct {
	StateUpdates []StateUpdate
}

// DecodeBatchUpdate decodes a container array's already header-stripped
// pblite array (internal/stream.ChannelArray.BatchUpdate) into a
// BatchUpdate. Each element is itself a pblite array and is kept raw.
func DecodeBatchUpdate(raws []json.RawMessage) (*BatchUpdate, error) {
	updates := make([]StateUpdate, 0, len(raws))
	for _, raw := range raws {
		var inner []json.RawMessage
		if err := json.Unmarshal(raw, &inner); err != nil {
			// Not every element of a batch is necessarily a nested array in
			// every server response revision; skip elements that aren't
			// rather than failing the whole batch.
			continue
		}
		updates = append(updates, StateUpdate{Raw: inner})
	}
	return &BatchUpdate{StateUpdates: updates}, nil
}

// DecodeInto decodes this state update's raw pblite array into msg, for
// callers that recognize the specific update kind.
func (s StateUpdate) DecodeInto(msg pblite.Decodable) error {
	return pblite.DecodeArray(s.Raw, msg)
}
