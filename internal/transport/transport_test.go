package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dpeckett/hangupsd/internal/cookies"
	"github.com/spf13/afero"
)

func newJar(t *testing.T) *cookies.Jar {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/cookies.json", []byte(`{"SAPISID":"secret"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	jar, err := cookies.Load(fs, "/cookies.json")
	if err != nil {
		t.Fatal(err)
	}
	return jar
}

func TestGetAppliesAuthHeaders(t *testing.T) {
	var gotAuth, gotCookie, gotOrigin string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCookie = r.Header.Get("Cookie")
		gotOrigin = r.Header.Get("X-Origin")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(newJar(t), "https://hangouts.google.com")
	tr.Now = func() time.Time { return time.Unix(1519452159, 0) }

	body, err := tr.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "ok" {
		t.Fatalf("body = %q", data)
	}

	want := "SAPISIDHASH 1519452159_6c4d41dbbb5b560e4fa315e36b156c3f277b0f62"
	if gotAuth == "" {
		t.Fatalf("Authorization header not set")
	}
	if gotAuth != want {
		t.Fatalf("Authorization = %q, want %q", gotAuth, want)
	}
	if gotCookie != "SAPISID=secret" {
		t.Fatalf("Cookie = %q", gotCookie)
	}
	if gotOrigin != "https://hangouts.google.com" {
		t.Fatalf("X-Origin = %q", gotOrigin)
	}
}

func TestGetMapsNon200ToBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(newJar(t), "https://hangouts.google.com")
	_, err := tr.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error for 403 response")
	}
}

func TestPostFormSendsEncodedBody(t *testing.T) {
	var gotBody, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Write([]byte(`[1]`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(newJar(t), "https://hangouts.google.com")
	resp, err := tr.PostForm(context.Background(), srv.URL, url.Values{"count": {"1"}})
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
	if string(resp) != "[1]" {
		t.Fatalf("resp = %q", resp)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if gotBody != "count=1" {
		t.Fatalf("body = %q", gotBody)
	}
}
