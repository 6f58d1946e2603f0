package pipeline

import (
	"time"

	"github.com/alexlevy0/qlip-app/internal/shots"
)

// AnalyzeOptions configures a single analysis run
type AnalyzeOptions struct {
	// FrameWidth/FrameHeight set the source frame size in pixels. When zero
	// the pipeline probes the source with ffprobe, which requires the
	// source to be a local file.
	FrameWidth  int
	FrameHeight int

	// Previews enables per-shot preview stills
	Previews bool

	// OutDir overrides the configured work directory for this run
	OutDir string
}

// Result is the outcome of a successful analysis run
type Result struct {
	RunID        string
	Source       string
	FrameWidth   int
	FrameHeight  int
	Shots        shots.List
	ManifestPath string
	PreviewDir   string
	CreatedAt    time.Time
}
