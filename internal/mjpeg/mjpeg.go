// Package mjpeg implements the multipart/x-mixed-replace framing used by the
// camera stream: the server side writes JPEG parts, the client side reads
// them back.
package mjpeg

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Boundary is the multipart boundary token. The value matches the frontend's
// expectations, so it is part of the wire contract.
const Boundary = "frame"

// ContentType is the response content type for MJPEG endpoints.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

// Writer emits JPEG frames as multipart parts. If the underlying writer is
// an http.ResponseWriter that supports flushing, each frame is flushed so
// the client sees it immediately.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter creates a frame writer on top of w.
func NewWriter(w io.Writer) *Writer {
	fw := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		fw.flusher = f
	}
	return fw
}

// WriteFrame writes one JPEG frame part.
func (w *Writer) WriteFrame(jpg []byte) error {
	if _, err := fmt.Fprintf(w.w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", Boundary); err != nil {
		return fmt.Errorf("mjpeg: write frame header: %w", err)
	}
	if _, err := w.w.Write(jpg); err != nil {
		return fmt.Errorf("mjpeg: write frame body: %w", err)
	}
	if _, err := io.WriteString(w.w, "\r\n"); err != nil {
		return fmt.Errorf("mjpeg: write frame trailer: %w", err)
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// Reader consumes JPEG frames from a multipart stream. The stream has no
// terminating boundary while the connection is healthy, so NextFrame returns
// an error only when the transport drops.
type Reader struct {
	mr *multipart.Reader
}

// NewReader creates a frame reader. boundary is usually Boundary; pass the
// value parsed from the response content type when talking to other servers.
func NewReader(r io.Reader, boundary string) *Reader {
	if boundary == "" {
		boundary = Boundary
	}
	return &Reader{mr: multipart.NewReader(r, boundary)}
}

// NextFrame returns the next JPEG frame.
func (r *Reader) NextFrame() ([]byte, error) {
	part, err := r.mr.NextPart()
	if err != nil {
		return nil, fmt.Errorf("mjpeg: next part: %w", err)
	}
	defer part.Close()
	if ct := part.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/jpeg") {
		return nil, fmt.Errorf("mjpeg: unexpected part content type %q", ct)
	}
	data, err := io.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("mjpeg: read frame: %w", err)
	}
	return data, nil
}

// ParseBoundary extracts the boundary parameter from a content type header,
// falling back to the default when absent.
func ParseBoundary(contentType string) string {
	for _, f := range strings.Split(contentType, ";") {
		f = strings.TrimSpace(f)
		if v, ok := strings.CutPrefix(f, "boundary="); ok {
			return strings.Trim(v, `"`)
		}
	}
	return Boundary
}
