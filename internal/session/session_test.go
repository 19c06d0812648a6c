package session

import "testing"

func TestParseHandshake(t *testing.T) {
	raw := `[[0,["c","EXAMPLE_SID","",8]],[1,[{"gsid":"EXAMPLE_GSID"}]]]`
	sess, err := ParseHandshake([]byte(raw))
	if err != nil {
		t.Fatalf("ParseHandshake() error = %v", err)
	}
	if sess.SessionID != "EXAMPLE_SID" {
		t.Fatalf("SessionID = %q", sess.SessionID)
	}
	if sess.GSessionID != "EXAMPLE_GSID" {
		t.Fatalf("GSessionID = %q", sess.GSessionID)
	}
}

func TestParseHandshakeMissingSession(t *testing.T) {
	raw := `[[0,["c"]]]`
	if _, err := ParseHandshake([]byte(raw)); err == nil {
		t.Fatalf("expected error for missing session id")
	}
}
