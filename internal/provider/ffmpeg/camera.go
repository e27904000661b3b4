// Package ffmpeg captures frames by piping an ffmpeg MJPEG stream, for
// hosts without OpenCV. V4L2 devices, RTSP and HTTP sources are supported.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
)

type Camera struct {
	Binary string
	Device string
	Width  int
	Height int
	FPS    int
}

func NewCamera(device string, width, height, fps int) *Camera {
	return &Camera{
		Binary: "ffmpeg",
		Device: device,
		Width:  width,
		Height: height,
		FPS:    fps,
	}
}

// Args builds the ffmpeg command line for the configured source.
func (c *Camera) Args() []string {
	switch {
	case strings.HasPrefix(c.Device, "rtsp://"):
		return []string{
			"-rtsp_transport", "tcp",
			"-i", c.Device,
			"-f", "image2pipe",
			"-vcodec", "mjpeg",
			"-r", fmt.Sprintf("%d", c.FPS),
			"-q:v", "5",
			"-",
		}
	case strings.HasPrefix(c.Device, "http://"), strings.HasPrefix(c.Device, "https://"):
		return []string{
			"-i", c.Device,
			"-f", "image2pipe",
			"-vcodec", "mjpeg",
			"-r", fmt.Sprintf("%d", c.FPS),
			"-q:v", "5",
			"-",
		}
	default:
		device := c.Device
		if !strings.HasPrefix(device, "/") {
			device = "/dev/video" + device
		}
		return []string{
			"-f", "v4l2",
			"-video_size", fmt.Sprintf("%dx%d", c.Width, c.Height),
			"-framerate", fmt.Sprintf("%d", c.FPS),
			"-i", device,
			"-f", "image2pipe",
			"-vcodec", "mjpeg",
			"-q:v", "5",
			"-",
		}
	}
}

func (c *Camera) Open(ctx context.Context) (capture.FrameSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(c.Binary, c.Args()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
		}
	}()

	return NewStreamSource(&process{ReadCloser: stdout, cmd: cmd}), nil
}

// process stops ffmpeg when the stream is closed.
type process struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *process) Close() error {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.ReadCloser.Close()
	_ = p.cmd.Wait()
	return nil
}

var _ capture.Camera = (*Camera)(nil)
