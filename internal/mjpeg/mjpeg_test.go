package mjpeg

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteThenReadFrames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	frames := [][]byte{
		[]byte("\xff\xd8first-frame\xff\xd9"),
		[]byte("\xff\xd8second-frame\xff\xd9"),
		[]byte("\xff\xd8third\xff\xd9"),
	}
	for _, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}

	r := NewReader(&buf, Boundary)
	for i, want := range frames {
		got, err := r.NextFrame()
		if err != nil {
			t.Fatalf("NextFrame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}

	// The stream never terminates cleanly; exhausting the buffer is a
	// transport error from the reader's point of view.
	if _, err := r.NextFrame(); err == nil {
		t.Error("expected error after stream end")
	}
}

func TestWriterFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteFrame([]byte("jpegdata")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	want := "--frame\r\nContent-Type: image/jpeg\r\n\r\njpegdata\r\n"
	if got := buf.String(); got != want {
		t.Errorf("framing = %q, want %q", got, want)
	}
}

func TestReaderRejectsWrongContentType(t *testing.T) {
	raw := "--frame\r\nContent-Type: text/plain\r\n\r\nnope\r\n"
	r := NewReader(strings.NewReader(raw), Boundary)
	if _, err := r.NextFrame(); err == nil {
		t.Error("expected content-type error")
	}
}

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"multipart/x-mixed-replace; boundary=frame", "frame"},
		{`multipart/x-mixed-replace; boundary="xyz"`, "xyz"},
		{"multipart/x-mixed-replace;boundary=abc", "abc"},
		{"image/jpeg", "frame"},
	}
	for _, tt := range tests {
		if got := ParseBoundary(tt.contentType); got != tt.want {
			t.Errorf("ParseBoundary(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}
