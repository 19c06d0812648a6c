package stream

import (
	"encoding/json"

	"github.com/dpeckett/hangupsd/internal/clienterrors"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
)

// PayloadKind distinguishes the shapes a channel array's payload can take.
type PayloadKind int

const (
	// PayloadNoop is a keep-alive array with no application content.
	PayloadNoop PayloadKind = iota
	// PayloadNewClientID carries the client ID assigned to this channel,
	// delivered exactly once per connection.
	PayloadNewClientID
	// PayloadBatchUpdate carries the pblite-encoded array of state update
	// messages, still in raw form for internal/hangouts to decode.
	PayloadBatchUpdate
	// PayloadUnknown is a well-formed array whose payload shape this client
	// does not recognize. It is preserved rather than treated as an error,
	// since new payload shapes are additive and forward-compatible.
	PayloadUnknown
)

// ChannelArray is one element of the container array delivered over the
// long-poll body: a monotonically increasing array ID and its payload.
type ChannelArray struct {
	ArrayID int
	Kind    PayloadKind
	// ClientID is set when Kind == PayloadNewClientID.
	ClientID string
	// BatchUpdate is the raw pblite array of update messages (with the
	// leading header element already stripped), set when
	// Kind == PayloadBatchUpdate.
	BatchUpdate []json.RawMessage
}

// ParseContainerArray decodes one complete top-level JSON array delivered by
// the chunk decoder into its constituent channel arrays. Per-array parse
// failures are aggregated rather than abandoning the whole container, so one
// malformed array does not hide the valid ones around it.
func ParseContainerArray(raw string) ([]ChannelArray, error) {
	result := gjson.Parse(raw)
	if !result.IsArray() {
		return nil, &clienterrors.ParseError{Path: "$"}
	}

	var (
		out  []ChannelArray
		errs error
	)
	for _, entry := range result.Array() {
		ca, err := parseChannelArray(entry)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, ca)
	}
	return out, errs
}

func parseChannelArray(entry gjson.Result) (ChannelArray, error) {
	if !entry.IsArray() {
		return ChannelArray{}, &clienterrors.ParseError{Path: "[].0"}
	}
	elems := entry.Array()
	if len(elems) < 2 {
		return ChannelArray{}, &clienterrors.ParseError{Path: "[].1"}
	}

	arrayID := int(elems[0].Int())
	payload := elems[1]

	ca := ChannelArray{ArrayID: arrayID}

	if payload.IsArray() {
		items := payload.Array()
		if len(items) == 1 && items[0].String() == "noop" && items[0].Type == gjson.String {
			ca.Kind = PayloadNoop
			return ca, nil
		}
	}

	p := payload.Get("0.p")
	if !p.Exists() || p.Type != gjson.String {
		ca.Kind = PayloadUnknown
		return ca, nil
	}

	wrapper := gjson.Parse(p.String())
	if clientID := wrapper.Get("3.2"); clientID.Exists() {
		ca.Kind = PayloadNewClientID
		ca.ClientID = clientID.String()
		return ca, nil
	}

	if updateArray := wrapper.Get("2.2"); updateArray.Exists() && updateArray.Type == gjson.String {
		parsed := gjson.Parse(updateArray.String())
		if parsed.IsArray() {
			items := parsed.Array()
			if len(items) == 0 {
				ca.Kind = PayloadUnknown
				return ca, nil
			}
			raws := make([]json.RawMessage, 0, len(items)-1)
			for _, item := range items[1:] {
				raws = append(raws, json.RawMessage(item.Raw))
			}
			ca.Kind = PayloadBatchUpdate
			ca.BatchUpdate = raws
			return ca, nil
		}
	}

	ca.Kind = PayloadUnknown
	return ca, nil
}
