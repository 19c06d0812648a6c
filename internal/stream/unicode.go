// Package stream implements the byte-to-chunk decoding pipeline that sits
// between the raw long-poll response body and the container parser: a
// UTF-8 boundary decoder feeding a length-prefixed chunk framer.
package stream

import (
	"unicode/utf8"

	"github.com/dpeckett/hangupsd/internal/clienterrors"
)

// UnicodeDecoder accepts arbitrary byte slices from a streamed HTTP response
// and emits the longest valid UTF-8 prefix, retaining a trailing partial
// code point (fewer than 4 bytes) for the next call. It is single-owner and
// must not be shared across goroutines.
type UnicodeDecoder struct {
	buffer []byte
}

// NewUnicodeDecoder returns a decoder with an empty retained buffer.
func NewUnicodeDecoder() *UnicodeDecoder {
	return &UnicodeDecoder{}
}

// PushBytes appends b to the retained buffer and splits it at the longest
// valid-UTF-8 prefix, returning that prefix as text. The remainder is kept
// for the next call. It returns MalformedStream if the retained bytes
// contain a sequence that can never become valid UTF-8 regardless of what
// follows.
func (d *UnicodeDecoder) PushBytes(b []byte) (string, error) {
	d.buffer = append(d.buffer, b...)

	i, n := 0, len(d.buffer)
	for i < n {
		r, size := utf8.DecodeRune(d.buffer[i:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		i += size
	}

	remainder := d.buffer[i:]
	if len(remainder) > 0 && (len(remainder) >= 4 || !isIncompleteSequence(remainder)) {
		return "", &clienterrors.MalformedStream{Reason: "invalid UTF-8 byte sequence"}
	}

	prefix := make([]byte, i)
	copy(prefix, d.buffer[:i])

	kept := make([]byte, len(remainder))
	copy(kept, remainder)
	d.buffer = kept

	return string(prefix), nil
}

// isIncompleteSequence reports whether b looks like the start of a valid
// multi-byte UTF-8 sequence that is merely missing its continuation bytes,
// as opposed to an outright invalid leading byte.
func isIncompleteSequence(b []byte) bool {
	if len(b) == 0 || len(b) >= 4 {
		return false
	}
	first := b[0]
	var want int
	switch {
	case first&0xE0 == 0xC0:
		want = 2
	case first&0xF0 == 0xE0:
		want = 3
	case first&0xF8 == 0xF0:
		want = 4
	default:
		return false
	}
	if len(b) >= want {
		return false
	}
	for _, c := range b[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}
