// Package transport performs the HTTP requests that make up a channel
// session: the long-poll GET that streams the container array, and the
// POSTs used for the initial handshake and service registration. It owns
// cookie and SAPISIDHASH header application so every caller gets them
// consistently.
package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dpeckett/hangupsd/internal/authhash"
	"github.com/dpeckett/hangupsd/internal/clienterrors"
	"github.com/dpeckett/hangupsd/internal/cookies"
	"github.com/google/uuid"
)

// Transport issues the two request shapes a channel session needs. It is
// an interface so the session machine can be tested against a fake without
// a real HTTP server.
type Transport interface {
	// Get issues a streamed GET and returns its body for the caller to read
	// incrementally; the caller is responsible for closing it.
	Get(ctx context.Context, rawURL string) (io.ReadCloser, error)
	// PostForm issues a POST with an application/x-www-form-urlencoded body
	// and returns the full response body.
	PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error)
}

// HTTPTransport is the production Transport, backed by a real *http.Client.
type HTTPTransport struct {
	Client *http.Client
	Jar    *cookies.Jar
	Origin string
	Now    func() time.Time
	Logger *slog.Logger
}

// NewHTTPTransport returns a Transport configured with sane defaults; any
// zero-valued field on the returned value may be overridden before use.
func NewHTTPTransport(jar *cookies.Jar, origin string) *HTTPTransport {
	return &HTTPTransport{
		Client: &http.Client{Timeout: 0}, // the long-poll GET legitimately blocks for minutes
		Jar:    jar,
		Origin: origin,
		Now:    time.Now,
		Logger: slog.Default(),
	}
}

func (t *HTTPTransport) authHeaders() http.Header {
	h := make(http.Header)
	h.Set("Cookie", t.Jar.Header())
	h.Set("Authorization", authhash.Compute(t.Now(), t.Jar.SAPISID(), t.Origin))
	h.Set("X-Goog-AuthUser", "0")
	h.Set("X-Origin", t.Origin)
	return h
}

func (t *HTTPTransport) do(req *http.Request) (*http.Response, error) {
	reqID := uuid.NewString()
	for name, values := range t.authHeaders() {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("X-Request-ID", reqID)

	t.Logger.Debug("sending channel request", "request_id", reqID, "method", req.Method, "url", req.URL.String())

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &clienterrors.BadStatus{Code: resp.StatusCode}
	}
	return resp, nil
}

// Get implements Transport.
func (t *HTTPTransport) Get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PostForm implements Transport.
func (t *HTTPTransport) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
