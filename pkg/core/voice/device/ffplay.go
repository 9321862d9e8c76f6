package device

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/voice"
)

// Runner executes name with args, feeding stdin.
type Runner func(ctx context.Context, stdin []byte, name string, args ...string) error

// FFplaySink plays clips by piping them into ffplay.
type FFplaySink struct {
	path string
	run  Runner
}

// NewFFplaySink creates a sink that runs the ffplay binary at path.
func NewFFplaySink(path string) *FFplaySink {
	if strings.TrimSpace(path) == "" {
		path = "ffplay"
	}
	return &FFplaySink{path: path, run: execRunner}
}

// WithRunner replaces the process runner.
func (s *FFplaySink) WithRunner(run Runner) *FFplaySink {
	s.run = run
	return s
}

// Args returns the ffplay arguments used for a clip.
func Args() []string {
	return []string{"-nodisp", "-autoexit", "-loglevel", "error", "-i", "pipe:0"}
}

// Play blocks until ffplay exits.
func (s *FFplaySink) Play(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return core.NewPlaybackError(fmt.Errorf("empty audio"))
	}
	if err := s.run(ctx, audio, s.path, Args()...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return core.NewPlaybackError(err)
	}
	return nil
}

func execRunner(ctx context.Context, stdin []byte, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

var _ voice.Sink = (*FFplaySink)(nil)
