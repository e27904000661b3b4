package ffmpeg

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"
	"sync"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
)

const maxBuffer = 8 << 20

// StreamSource decodes concatenated JPEG frames from a reader. Frames are
// read in the background and only the newest one is kept, so a slow
// consumer never lags behind the camera.
type StreamSource struct {
	rc     io.ReadCloser
	latest chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewStreamSource(rc io.ReadCloser) *StreamSource {
	s := &StreamSource{
		rc:     rc,
		latest: make(chan []byte, 1),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *StreamSource) pump() {
	defer close(s.latest)

	buffer := make([]byte, 0, 1024*1024)
	chunk := make([]byte, 8192)

	for {
		n, err := s.rc.Read(chunk)
		if n > 0 {
			buffer = append(buffer, chunk[:n]...)
			for {
				frame := extractJPEGFrame(&buffer)
				if frame == nil {
					break
				}
				if !s.publish(frame) {
					return
				}
			}
			if len(buffer) > maxBuffer {
				buffer = buffer[:0]
			}
		}
		if err != nil {
			return
		}
	}
}

// publish replaces any unread frame with the new one.
func (s *StreamSource) publish(frame []byte) bool {
	select {
	case <-s.latest:
	default:
	}
	select {
	case s.latest <- frame:
		return true
	case <-s.done:
		return false
	}
}

// Read blocks until the next frame. It returns false once the stream ended
// or a frame cannot be decoded.
func (s *StreamSource) Read() (image.Image, bool) {
	select {
	case <-s.done:
		return nil, false
	case data, ok := <-s.latest:
		if !ok {
			return nil, false
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, false
		}
		return img, true
	}
}

func (s *StreamSource) Release() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.rc.Close()
	})
	return err
}

// extractJPEGFrame cuts the first complete SOI..EOI frame out of buffer.
func extractJPEGFrame(buffer *[]byte) []byte {
	buf := *buffer
	if len(buf) < 4 {
		return nil
	}

	start := bytes.Index(buf, []byte{0xFF, 0xD8})
	if start == -1 {
		return nil
	}

	end := bytes.Index(buf[start+2:], []byte{0xFF, 0xD9})
	if end == -1 {
		return nil
	}
	end += start + 4

	frame := make([]byte, end-start)
	copy(frame, buf[start:end])
	*buffer = buf[end:]

	return frame
}

var _ capture.FrameSource = (*StreamSource)(nil)
