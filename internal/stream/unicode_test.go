package stream

import "testing"

func TestUnicodeDecoderPassesThroughASCII(t *testing.T) {
	d := NewUnicodeDecoder()
	out, err := d.PushBytes([]byte("hello"))
	if err != nil {
		t.Fatalf("PushBytes() error = %v", err)
	}
	if out != "hello" {
		t.Fatalf("out = %q", out)
	}
}

func TestUnicodeDecoderSplitsPartialSequenceAcrossCalls(t *testing.T) {
	d := NewUnicodeDecoder()

	emoji := []byte("😀") // 4-byte UTF-8 sequence
	out, err := d.PushBytes(emoji[:2])
	if err != nil {
		t.Fatalf("PushBytes() error = %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output for partial sequence, got %q", out)
	}

	out, err = d.PushBytes(emoji[2:])
	if err != nil {
		t.Fatalf("PushBytes() error = %v", err)
	}
	if out != "😀" {
		t.Fatalf("out = %q", out)
	}
}

func TestUnicodeDecoderByteByByteEmoji(t *testing.T) {
	d := NewUnicodeDecoder()
	emoji := []byte("a😀")
	var got string
	for _, b := range emoji {
		out, err := d.PushBytes([]byte{b})
		if err != nil {
			t.Fatalf("PushBytes() error = %v", err)
		}
		got += out
	}
	if got != "a😀" {
		t.Fatalf("got = %q", got)
	}
}

func TestUnicodeDecoderRejectsInvalidLeadByte(t *testing.T) {
	d := NewUnicodeDecoder()
	_, err := d.PushBytes([]byte{0xFF, 0xFE})
	if err == nil {
		t.Fatalf("expected error for invalid lead byte")
	}
}
