package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/alexlevy0/qlip-app/pkg/util"
)

// ExtractFrame grabs a single frame at the given timestamp as a JPEG
func (e *Executor) ExtractFrame(ctx context.Context, input string, timestamp time.Duration, output string) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Debug().
		Str("input", input).
		Str("output", output).
		Dur("timestamp", timestamp).
		Msg("extracting frame")

	args := []string{
		"-ss", util.FormatDuration(timestamp),
		"-i", input,
		"-vframes", "1",
		"-q:v", "2", // high quality JPEG
		output,
	}

	return e.Run(ctx, args, nil)
}
