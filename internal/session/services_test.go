package session

import (
	"context"
	"io"
	"net/url"
	"testing"
)

// recordingTransport captures the form posted to it and replies with a
// scripted, chunk-framed response body.
type recordingTransport struct {
	gotForm url.Values
	resp    string
}

func (r *recordingTransport) Get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return nil, nil
}

func (r *recordingTransport) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	r.gotForm = form
	return []byte(r.resp), nil
}

func TestRegisterServicesSendsOneMapPerService(t *testing.T) {
	rt := &recordingTransport{resp: frameChunk(`[1]`)}
	sess := Session{SessionID: "EXAMPLE_SID", GSessionID: "EXAMPLE_GSID"}

	if err := registerServices(context.Background(), rt, sess); err != nil {
		t.Fatalf("registerServices() error = %v", err)
	}

	if got := rt.gotForm.Get("count"); got != "2" {
		t.Fatalf("count = %q, want %q", got, "2")
	}
	if got := rt.gotForm.Get("req0_p"); got != `{"3":{"1":{"1":"babel"}}}` {
		t.Fatalf("req0_p = %q", got)
	}
	if got := rt.gotForm.Get("req1_p"); got != `{"3":{"1":{"1":"babel_presence_last_seen"}}}` {
		t.Fatalf("req1_p = %q", got)
	}
}

func TestRegisterServicesRejectsFailureCode(t *testing.T) {
	rt := &recordingTransport{resp: frameChunk(`[0]`)}
	sess := Session{SessionID: "EXAMPLE_SID", GSessionID: "EXAMPLE_GSID"}

	if err := registerServices(context.Background(), rt, sess); err == nil {
		t.Fatalf("expected error for non-1 response code")
	}
}
