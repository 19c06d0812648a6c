package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dpeckett/hangupsd/internal/stream"
	"github.com/dpeckett/hangupsd/internal/transport"
)

// requestMap is one map of a maps-encoded POST body: a small object whose
// top-level keys each become a req<i>_<key> form field, JSON-encoded
// individually rather than the map being encoded as a whole.
type requestMap map[string]any

// postMaps POSTs a maps-encoded request body: "count=<n>&ofs=0&" followed by
// one "req<i>_<key>=<json>" pair per top-level key of every map, in order.
// The handshake uses this with an empty maps slice (count=0); service
// registration uses it with one map per service. The response body is a
// single length-prefixed chunk, which is decoded before being returned.
func postMaps(ctx context.Context, t transport.Transport, rawURL string, maps []requestMap) (string, error) {
	form := url.Values{}
	form.Set("count", fmt.Sprintf("%d", len(maps)))
	form.Set("ofs", "0")
	for i, m := range maps {
		for k, v := range m {
			data, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			form.Set(fmt.Sprintf("req%d_%s", i, k), string(data))
		}
	}

	resp, err := t.PostForm(ctx, rawURL, form)
	if err != nil {
		return "", err
	}
	return stream.DecodeSingleChunk(resp)
}
