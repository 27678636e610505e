package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// streamInterval paces the MJPEG stream at about 15 fps.
const streamInterval = 66 * time.Millisecond

// FrameBuffer holds the most recent rendered frame for the stream.
type FrameBuffer struct {
	mu     sync.Mutex
	mat    gocv.Mat
	seq    uint64
	closed bool
}

// NewFrameBuffer creates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{mat: gocv.NewMat()}
}

// Update copies img into the buffer. It is a no-op once closed.
func (b *FrameBuffer) Update(img gocv.Mat) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	img.CopyTo(&b.mat)
	b.seq++
}

// JPEG encodes the latest frame. It reports false until the first Update
// and after Close.
func (b *FrameBuffer) JPEG() ([]byte, uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.mat.Empty() {
		return nil, 0, false
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, b.mat)
	if err != nil {
		return nil, 0, false
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), b.seq, true
}

// Close releases the buffered frame. Later calls are no-ops.
func (b *FrameBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.mat.Close()
}

// StreamHandler serves the buffered frames as MJPEG.
type StreamHandler struct {
	frames *FrameBuffer
}

// NewStreamHandler creates a new StreamHandler over frames.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is only
// re-sent when the buffer has changed.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last uint64
	for {
		if data, seq, ok := h.frames.JPEG(); ok && seq != last {
			last = seq

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
			if _, err := w.Write(data); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
