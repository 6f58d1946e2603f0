package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// Executor runs ffmpeg/ffprobe for frame probing and still extraction
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
}

// New creates an executor, resolving the binaries from PATH
func New(logger zerolog.Logger) (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}, nil
}

// Run executes ffmpeg with the given arguments, streaming stderr lines to
// the optional log handler
func (e *Executor) Run(ctx context.Context, args []string, logHandler func(line string)) error {
	if len(args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	fullArgs := append([]string{"-y", "-hide_banner", "-loglevel", "info"}, args...)

	e.logger.Debug().Strs("args", fullArgs).Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, fullArgs...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if logHandler != nil {
			logHandler(line)
		} else {
			e.logger.Debug().Str("ffmpeg", line).Msg("output")
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	return nil
}
