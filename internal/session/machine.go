package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dpeckett/hangupsd/internal/clienterrors"
	"github.com/dpeckett/hangupsd/internal/stream"
	"github.com/dpeckett/hangupsd/internal/transport"
	"github.com/sethvargo/go-retry"
)

// State names the phase of the channel session's lifecycle.
type State int

const (
	StateIdle State = iota
	StateHandshaking
	StateListening
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHandshaking:
		return "handshaking"
	case StateListening:
		return "listening"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Machine drives the handshake/long-poll/reconnect lifecycle of a single
// channel session. It holds no network state itself beyond the current
// session identifiers; all I/O goes through Transport.
type Machine struct {
	Transport transport.Transport
	Logger    *slog.Logger

	MinBackoff time.Duration
	MaxBackoff time.Duration

	// OnChannelArray is invoked for every decoded channel array in arrival
	// order, including noop and unknown payloads, so a caller can observe
	// connection liveness as well as content.
	OnChannelArray func(stream.ChannelArray)

	state State
	rid   int
	note  reconnectNote
}

// NewMachine returns a Machine ready to Run, with backoff bounds defaulted
// if unset.
func NewMachine(t transport.Transport, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		Transport:  t,
		Logger:     logger,
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
		state:      StateIdle,
	}
}

// State reports the machine's current lifecycle phase.
func (m *Machine) State() State { return m.state }

// Run drives the session machine until ctx is canceled, reconnecting with
// bounded exponential backoff whenever the long-poll loop ends
// unexpectedly. It returns ctx.Err() on cancellation, or an error before
// the first attempt if MinBackoff is not positive; failed sessions are
// otherwise retried without limit, so in practice this loop runs for the
// lifetime of the client.
func (m *Machine) Run(ctx context.Context) error {
	base, err := retry.NewExponential(m.MinBackoff)
	if err != nil {
		return err
	}
	backoff := retry.WithJitterPercent(10, retry.WithCappedDuration(m.MaxBackoff, base))

	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if attempt > 0 {
			m.state = StateReconnecting
			d, _ := backoff.Next()
			m.Logger.Warn("reconnecting", "attempt", attempt, "backoff", d, "last_array_id", m.note.LastArrayID)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
			}
		}

		err := m.runOnce(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		m.Logger.Warn("session ended", "error", err)
		attempt++
	}
}

func (m *Machine) runOnce(ctx context.Context) error {
	m.state = StateHandshaking
	sess, err := m.handshake(ctx)
	if err != nil {
		return err
	}

	m.state = StateListening
	return m.listen(ctx, sess)
}

// handshake POSTs the initial maps request (count=0, the protocol's way of
// establishing a session with no services yet registered) and decodes the
// session identifiers from the single chunk the response carries. Service
// registration is not triggered here: the NewClientID event normally
// arrives in the long-poll stream, not the handshake response, so dispatch
// handles it uniformly for both.
func (m *Machine) handshake(ctx context.Context) (Session, error) {
	m.rid = 0
	rawURL, err := handshakeURL()
	if err != nil {
		return Session{}, err
	}
	m.rid++

	chunk, err := postMaps(ctx, m.Transport, rawURL, nil)
	if err != nil {
		return Session{}, err
	}

	sess, err := ParseHandshake([]byte(chunk))
	if err != nil {
		return Session{}, err
	}

	arrays, perr := stream.ParseContainerArray(chunk)
	for _, ca := range arrays {
		m.dispatch(ctx, *sess, ca)
	}
	if perr != nil {
		// The session identifiers were already extracted directly above;
		// a handshake response that otherwise fails container parsing is
		// not fatal, and any client ID omitted here will arrive again as
		// the first array of the poll loop.
		m.Logger.Warn("handshake container parse errors", "error", perr)
	}

	return *sess, nil
}

// listen runs the long-poll GET loop until it ends, decoding each response
// body through the unicode/chunk/container pipeline and dispatching every
// channel array observed.
func (m *Machine) listen(ctx context.Context, sess Session) error {
	hasLastArrayID := m.note.LastArrayID > 0

	for {
		rawURL, err := longPollURL(m.rid, sess, m.note.LastArrayID, hasLastArrayID)
		if err != nil {
			return err
		}
		m.rid++

		if err := m.pollOnce(ctx, sess, rawURL, &hasLastArrayID); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (m *Machine) pollOnce(ctx context.Context, sess Session, rawURL string, hasLastArrayID *bool) error {
	body, err := m.Transport.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()

	unicode := stream.NewUnicodeDecoder()
	chunks := stream.NewChunkDecoder()

	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			text, err := unicode.PushBytes(buf[:n])
			if err != nil {
				return err
			}
			complete, err := chunks.Push(text)
			if err != nil {
				return err
			}
			for _, c := range complete {
				arrays, perr := stream.ParseContainerArray(c)
				for _, ca := range arrays {
					m.note.LastArrayID = ca.ArrayID
					*hasLastArrayID = true
					m.dispatch(ctx, sess, ca)
				}
				if perr != nil {
					m.Logger.Warn("container parse errors", "error", perr)
				}
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return &clienterrors.Disconnected{Cause: readErr}
		}
	}
}

// dispatch reports ca to OnChannelArray and, when it carries a newly
// assigned client ID, registers services against the current session. This
// is the one place NewClientID is acted on, whether it arrives inline in
// the handshake response or (the normal case) as the first array of the
// long-poll stream.
func (m *Machine) dispatch(ctx context.Context, sess Session, ca stream.ChannelArray) {
	if m.OnChannelArray != nil {
		m.OnChannelArray(ca)
	}
	if ca.Kind == stream.PayloadNewClientID {
		if err := registerServices(ctx, m.Transport, sess); err != nil {
			m.Logger.Warn("service registration failed", "client_id", ca.ClientID, "error", err)
		}
	}
}

// reconnectNote is a small, in-memory diagnostic recording how far the
// session had progressed before the last disconnect. It is never persisted
// to disk; its only purpose is to annotate reconnect log lines and to seed
// AID on the first long-poll request after a fresh handshake.
type reconnectNote struct {
	LastArrayID int
}
