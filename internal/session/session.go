// Package session implements the channel session state machine: the
// handshake that establishes a session and gsession ID, the long-poll loop
// that keeps it alive, and the reconnect logic that re-establishes a fresh
// session when the loop ends.
package session

import (
	"github.com/dpeckett/hangupsd/internal/clienterrors"
	"github.com/tidwall/gjson"
)

// Session holds the two identifiers the server assigns during the
// handshake and expects back on every subsequent request.
type Session struct {
	SessionID  string
	GSessionID string
}

// ParseHandshake extracts a Session from the raw handshake response body.
// The session ID lives at array position 0.1.1 and the gsession ID at
// 1.1.0.gsid; both are required.
func ParseHandshake(body []byte) (*Session, error) {
	root := gjson.ParseBytes(body)

	sid := root.Get("0.1.1")
	if !sid.Exists() || sid.Type != gjson.String {
		return nil, &clienterrors.ParseError{Path: "0.1.1"}
	}

	gsid := root.Get("1.1.0.gsid")
	if !gsid.Exists() || gsid.Type != gjson.String {
		return nil, &clienterrors.ParseError{Path: "1.1.0.gsid"}
	}

	return &Session{SessionID: sid.String(), GSessionID: gsid.String()}, nil
}
