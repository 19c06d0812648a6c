package session

import (
	"net/url"
	"testing"
)

func TestHandshakeURLOmitsSessionParams(t *testing.T) {
	raw, err := handshakeURL()
	if err != nil {
		t.Fatalf("handshakeURL() error = %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	q := u.Query()
	if q.Get("VER") != "8" {
		t.Fatalf("VER = %q", q.Get("VER"))
	}
	if q.Has("gsessionid") || q.Has("SID") {
		t.Fatalf("expected no session params on handshake URL, got %s", raw)
	}
}

func TestLongPollURLIncludesSessionParams(t *testing.T) {
	sess := Session{SessionID: "EXAMPLE_SID", GSessionID: "EXAMPLE_GSID"}
	raw, err := longPollURL(1, sess, 5, true)
	if err != nil {
		t.Fatalf("longPollURL() error = %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	q := u.Query()
	if q.Get("gsessionid") != "EXAMPLE_GSID" {
		t.Fatalf("gsessionid = %q", q.Get("gsessionid"))
	}
	if q.Get("SID") != "EXAMPLE_SID" {
		t.Fatalf("SID = %q", q.Get("SID"))
	}
	if q.Get("AID") != "5" {
		t.Fatalf("AID = %q", q.Get("AID"))
	}
}

func TestRPCURLUsesLiteralRID(t *testing.T) {
	sess := Session{SessionID: "EXAMPLE_SID", GSessionID: "EXAMPLE_GSID"}
	raw, err := rpcURL(sess)
	if err != nil {
		t.Fatalf("rpcURL() error = %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	q := u.Query()
	if q.Get("RID") != "rpc" {
		t.Fatalf("RID = %q, want %q", q.Get("RID"), "rpc")
	}
	if q.Get("SID") != "EXAMPLE_SID" {
		t.Fatalf("SID = %q", q.Get("SID"))
	}
	if q.Has("TYPE") || q.Has("t") || q.Has("CI") {
		t.Fatalf("expected no long-poll params on rpc URL, got %s", raw)
	}
}
