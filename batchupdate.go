package hangupsd

import (
	"encoding/json"

	"github.com/dpeckett/hangupsd/internal/hangouts"
	"github.com/dpeckett/hangupsd/internal/stream"
)

// batchUpdatePayloads decodes a batch-update channel array's raw pblite
// elements through internal/hangouts and renders each embedded state
// update back into its own JSON array string, in wire order. Decoding into
// named StateUpdate fields is left to higher-level code built on
// internal/hangouts and internal/pblite; this client's contract is to
// deliver one well-formed JSON payload per update, not to interpret it.
func batchUpdatePayloads(ca stream.ChannelArray) ([]string, error) {
	batch, err := hangouts.DecodeBatchUpdate(ca.BatchUpdate)
	if err != nil {
		return nil, err
	}

	payloads := make([]string, 0, len(batch.StateUpdates))
	for _, update := range batch.StateUpdates {
		data, err := json.Marshal(update.Raw)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, string(data))
	}
	return payloads, nil
}
