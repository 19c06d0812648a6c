package session

import (
	"context"
	"encoding/json"

	"github.com/dpeckett/hangupsd/internal/clienterrors"
	"github.com/dpeckett/hangupsd/internal/transport"
)

// serviceNames are registered once per connection, immediately after the
// server assigns a client ID, so that presence and message delivery begin
// flowing over the channel. Each name is sent as its own map in the
// registration request, not bundled into one.
var serviceNames = []string{"babel", "babel_presence_last_seen"}

// registerServices POSTs one map per configured service name, each shaped
// {"3":{"1":{"1":"<service-name>"}}}, against the rpc endpoint for the
// given session. The server replies with a JSON array whose first element
// is 1 on success.
func registerServices(ctx context.Context, t transport.Transport, sess Session) error {
	rawURL, err := rpcURL(sess)
	if err != nil {
		return err
	}

	maps := make([]requestMap, 0, len(serviceNames))
	for _, name := range serviceNames {
		maps = append(maps, requestMap{
			"p": map[string]any{
				"3": map[string]any{
					"1": map[string]any{
						"1": name,
					},
				},
			},
		})
	}

	chunk, err := postMaps(ctx, t, rawURL, maps)
	if err != nil {
		return err
	}

	var result []json.RawMessage
	if err := json.Unmarshal([]byte(chunk), &result); err != nil || len(result) == 0 {
		return &clienterrors.ParseError{Path: "$"}
	}
	var code int
	if err := json.Unmarshal(result[0], &code); err != nil || code != 1 {
		return &clienterrors.ParseError{Path: "0"}
	}
	return nil
}
