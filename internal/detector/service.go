package detector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"

	"github.com/rs/zerolog"
)

// service is one running landmark process. Requests are a 4-byte big-endian
// length followed by a JPEG; every request gets exactly one JSON line back.
type service struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// startService launches python with script and args. The child's stderr is
// forwarded to logger.
func startService(python, script string, args []string, logger zerolog.Logger) (*service, error) {
	cmd := exec.Command(python, append([]string{script}, args...)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = logger

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", script, err)
	}

	return &service{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// roundTrip sends one image and returns the reply line.
func (s *service) roundTrip(jpeg []byte) ([]byte, error) {
	msg := make([]byte, 4+len(jpeg))
	binary.BigEndian.PutUint32(msg, uint32(len(jpeg)))
	copy(msg[4:], jpeg)

	if _, err := s.stdin.Write(msg); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}

	line, err := s.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// stop closes stdin, which makes the service exit, and waits for it.
func (s *service) stop() error {
	s.stdin.Close()
	return s.cmd.Wait()
}
