// Package logging provides a redacting slog handler wrapper so cookie
// values and computed Authorization headers never reach a log sink in the
// clear, even when a caller logs a request's full header set for
// debugging.
package logging

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// RedactionFilter replaces configured secret values wherever they appear
// in a log record's message or attributes, in both raw and URL-encoded
// form, with a marker naming which secret was found.
type RedactionFilter struct {
	secrets map[string]string // value -> marker
}

// NewRedactionFilter builds a filter from a name->value map of secrets to
// redact, such as {"SAPISID": jar.SAPISID()}.
func NewRedactionFilter(secrets map[string]string) *RedactionFilter {
	f := &RedactionFilter{secrets: make(map[string]string, len(secrets)*2)}
	for name, value := range secrets {
		if value == "" {
			continue
		}
		marker := "[REDACTED:" + name + "]"
		f.secrets[value] = marker
		if encoded := url.QueryEscape(value); encoded != value {
			f.secrets[encoded] = marker
		}
	}
	return f
}

// Redact replaces every occurrence of a configured secret in input with
// its marker.
func (f *RedactionFilter) Redact(input string) string {
	for value, marker := range f.secrets {
		input = strings.ReplaceAll(input, value, marker)
	}
	return input
}

// Handler wraps next so every string attribute value and the record
// message pass through Redact before being handed to next.
func (f *RedactionFilter) Handler(next slog.Handler) slog.Handler {
	return &redactingHandler{next: next, filter: f}
}

type redactingHandler struct {
	next   slog.Handler
	filter *RedactionFilter
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, h.filter.Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.filter.redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, redacted)
}

func (f *RedactionFilter) redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, f.Redact(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		redacted := make([]slog.Attr, len(group))
		for i, g := range group {
			redacted[i] = f.redactAttr(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}
	return a
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.filter.redactAttr(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(redacted), filter: h.filter}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name), filter: h.filter}
}
