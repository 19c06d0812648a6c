package stream

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/dpeckett/hangupsd/internal/clienterrors"
)

type chunkState int

const (
	stateReadingLength chunkState = iota
	stateReadingData
)

// ChunkDecoder turns a text stream into complete length-prefixed chunks:
// a decimal length (counted in UTF-16 code units), a newline, and a payload
// of exactly that many code units. It is single-owner and must not be
// shared across goroutines.
type ChunkDecoder struct {
	state    chunkState
	lenBuf   strings.Builder
	dataBuf  strings.Builder
	expected int
	seen     int
}

// NewChunkDecoder returns a decoder positioned to read a chunk length.
func NewChunkDecoder() *ChunkDecoder {
	return &ChunkDecoder{state: stateReadingLength}
}

// Push processes text one code point at a time and returns every chunk
// completed by it, in order.
func (d *ChunkDecoder) Push(text string) ([]string, error) {
	var chunks []string
	for _, r := range text {
		chunk, complete, err := d.pushRune(r)
		if err != nil {
			return chunks, err
		}
		if complete {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (d *ChunkDecoder) pushRune(r rune) (string, bool, error) {
	switch d.state {
	case stateReadingLength:
		switch {
		case r >= '0' && r <= '9':
			d.lenBuf.WriteRune(r)
			return "", false, nil
		case r == '\n':
			n, err := strconv.Atoi(d.lenBuf.String())
			if err != nil {
				return "", false, &clienterrors.MalformedStream{Reason: "invalid chunk length"}
			}
			d.lenBuf.Reset()
			d.expected = n
			d.seen = 0
			d.state = stateReadingData
			return "", false, nil
		default:
			return "", false, &clienterrors.MalformedStream{Reason: "expected digit or newline in chunk length"}
		}
	case stateReadingData:
		d.dataBuf.WriteRune(r)
		units := utf16.RuneLen(r)
		if units < 0 {
			return "", false, &clienterrors.MalformedStream{Reason: "invalid code point in chunk data"}
		}
		d.seen += units
		if d.seen == d.expected {
			chunk := d.dataBuf.String()
			d.dataBuf.Reset()
			d.state = stateReadingLength
			return chunk, true, nil
		}
		if d.seen > d.expected {
			return "", false, &clienterrors.MalformedStream{Reason: "chunk boundary misalignment"}
		}
		return "", false, nil
	}
	return "", false, nil
}

// DecodeSingleChunk decodes a complete, already fully-read response body
// expected to consist of exactly one length-prefixed chunk: the POST
// responses used for the handshake and service registration, as opposed to
// the long-poll GET's multi-chunk stream.
func DecodeSingleChunk(data []byte) (string, error) {
	unicode := NewUnicodeDecoder()
	text, err := unicode.PushBytes(data)
	if err != nil {
		return "", err
	}

	chunks := NewChunkDecoder()
	complete, err := chunks.Push(text)
	if err != nil {
		return "", err
	}
	if len(complete) != 1 {
		return "", &clienterrors.MalformedStream{Reason: fmt.Sprintf("expected exactly one chunk, got %d", len(complete))}
	}
	return complete[0], nil
}
