package session

import (
	"strconv"

	"github.com/yosida95/uritemplate/v3"
)

// bindTemplate is the channel bind endpoint. Every request carries VER and
// ctype; gsessionid and SID are only present once a session is established,
// and TYPE/t/CI only appear on the long-poll GET, not the handshake or rpc
// POSTs.
const bindTemplate = "https://0.client-channel.google.com/client-channel/channel/bind{?VER,gsessionid,SID,RID,CI,TYPE,ctype,t,AID}"

var tpl = uritemplate.MustNew(bindTemplate)

// requestParams carries the optional query parameters for a channel
// request; zero values are omitted from the rendered URL rather than
// rendered literally, matching the handshake's narrower parameter set.
type requestParams struct {
	RID         string
	GSessionID  string
	SID         string
	AID         int
	HasAID      bool
	LongPolling bool
}

func (p requestParams) url() (string, error) {
	vals := uritemplate.Values{}
	vals.Set("VER", uritemplate.String("8"))
	vals.Set("ctype", uritemplate.String("hangouts"))
	vals.Set("RID", uritemplate.String(p.RID))

	if p.GSessionID != "" {
		vals.Set("gsessionid", uritemplate.String(p.GSessionID))
	}
	if p.SID != "" {
		vals.Set("SID", uritemplate.String(p.SID))
	}
	if p.HasAID {
		vals.Set("AID", uritemplate.String(strconv.Itoa(p.AID)))
	}
	if p.LongPolling {
		vals.Set("TYPE", uritemplate.String("xmlhttp"))
		vals.Set("t", uritemplate.String("1"))
		vals.Set("CI", uritemplate.String("0"))
	}

	return tpl.Expand(vals)
}

// handshakeURL returns the POST URL used to establish a new session. RID is
// fixed at "0", the literal value the protocol requires for the very first
// request on a connection.
func handshakeURL() (string, error) {
	return requestParams{RID: "0"}.url()
}

// longPollURL returns the GET URL used to poll an established session for
// new container arrays.
func longPollURL(rid int, sess Session, lastArrayID int, hasLastArrayID bool) (string, error) {
	return requestParams{
		RID:         strconv.Itoa(rid),
		GSessionID:  sess.GSessionID,
		SID:         sess.SessionID,
		AID:         lastArrayID,
		HasAID:      hasLastArrayID,
		LongPolling: true,
	}.url()
}

// rpcURL returns the POST URL used for ajax requests against an already
// established session, such as service registration. RID is the literal
// "rpc" rather than a sequence number, distinguishing it from the
// long-poll GET.
func rpcURL(sess Session) (string, error) {
	return requestParams{
		RID:        "rpc",
		GSessionID: sess.GSessionID,
		SID:        sess.SessionID,
	}.url()
}
