// Package hangupsd implements a client for Google Hangouts' browser
// channel protocol: a long-polling transport carrying pblite-encoded
// state update messages. It owns the session handshake, reconnect, and
// stream decoding; callers receive each delivered payload as a JSON
// string via Receive.
package hangupsd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dpeckett/hangupsd/internal/bridge"
	"github.com/dpeckett/hangupsd/internal/cookies"
	"github.com/dpeckett/hangupsd/internal/session"
	"github.com/dpeckett/hangupsd/internal/stream"
	"github.com/dpeckett/hangupsd/internal/transport"
	"github.com/spf13/afero"
)

// Options configures a new Client.
type Options struct {
	// CookiePath is the path to a JSON cookie jar containing at least
	// SAPISID.
	CookiePath string
	// Origin is the origin the cookies were issued for and the value
	// bound into every request's SAPISIDHASH.
	Origin string
	// QueueCapacity bounds the delivery bridge; see bridge.New.
	QueueCapacity int
	// MinBackoff and MaxBackoff bound reconnect backoff; see
	// session.Machine.
	MinBackoff, MaxBackoff time.Duration
	// Logger receives structured logs from every layer. A nil Logger
	// falls back to slog.Default().
	Logger *slog.Logger
	// Filesystem lets a caller substitute an in-memory or test
	// filesystem for the cookie jar; a nil value uses the OS filesystem.
	Filesystem afero.Fs
}

// Client is a running channel session. Construct one with New and receive
// delivered payloads by calling Receive in a loop until it reports the
// client has stopped.
type Client struct {
	bridge *bridge.Bridge
	cancel context.CancelFunc
}

// New loads the configured cookie jar, opens a channel session, and
// begins the handshake/long-poll/reconnect loop in the background. The
// returned Client is ready for Receive calls immediately; any connection
// failures surface as reconnect attempts rather than a New error, mirroring
// the fact that a transient network failure at startup is not different in
// kind from one encountered later.
func New(opts Options) (*Client, error) {
	fs := opts.Filesystem
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookies.Load(fs, opts.CookiePath)
	if err != nil {
		return nil, fmt.Errorf("loading cookie jar: %w", err)
	}

	tr := transport.NewHTTPTransport(jar, opts.Origin)
	tr.Logger = logger

	b := bridge.New(opts.QueueCapacity, logger)

	m := session.NewMachine(tr, logger)
	if opts.MinBackoff > 0 {
		m.MinBackoff = opts.MinBackoff
	}
	if opts.MaxBackoff > 0 {
		m.MaxBackoff = opts.MaxBackoff
	}
	m.OnChannelArray = func(ca stream.ChannelArray) {
		if ca.Kind != stream.PayloadBatchUpdate {
			return
		}
		payloads, err := batchUpdatePayloads(ca)
		if err != nil {
			logger.Warn("dropping undeliverable batch update", "error", err)
			return
		}
		for _, payload := range payloads {
			b.Publish(payload)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.Spawn(ctx, m.Run)

	return &Client{bridge: b, cancel: cancel}, nil
}

// Receive blocks for up to timeout and returns the next delivered
// payload as a JSON string. It returns ("{}", true) as a heartbeat if the
// timeout elapses with nothing queued, and ("", false) once the session
// has permanently ended (the caller should stop calling Receive).
func (c *Client) Receive(timeout time.Duration) (string, bool) {
	payload, outcome := c.bridge.Receive(timeout)
	switch outcome {
	case bridge.OutcomeClosed:
		return "", false
	default:
		return payload, true
	}
}

// Close stops the background session loop. Pending Receive calls
// eventually observe the resulting shutdown and return ("", false).
func (c *Client) Close() {
	c.cancel()
}
