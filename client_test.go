package hangupsd

import (
	"testing"

	"github.com/spf13/afero"
)

func TestNewFailsWithoutCookieFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := New(Options{
		CookiePath: "/cookies.json",
		Origin:     "https://hangouts.google.com",
		Filesystem: fs,
	})
	if err == nil {
		t.Fatalf("expected error when cookie file is missing")
	}
}

func TestNewRequiresSAPISIDCookie(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/cookies.json", []byte(`{"OSID":"other"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := New(Options{
		CookiePath: "/cookies.json",
		Origin:     "https://hangouts.google.com",
		Filesystem: fs,
	})
	if err == nil {
		t.Fatalf("expected error for cookie jar missing SAPISID")
	}
}

// The end-to-end handshake/long-poll/reconnect/delivery wiring is covered
// at the package level: internal/session exercises the state machine
// against a fake Transport, and internal/bridge exercises the delivery
// queue and heartbeat/close semantics directly. Driving that wiring here
// would require a real network endpoint, since Options offers no way to
// substitute a fake Transport.
