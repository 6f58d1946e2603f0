package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexlevy0/qlip-app/internal/config"
	"github.com/alexlevy0/qlip-app/internal/detect"
	"github.com/alexlevy0/qlip-app/internal/ffmpeg"
	"github.com/alexlevy0/qlip-app/internal/reframe"
	"github.com/alexlevy0/qlip-app/internal/shots"
	"github.com/alexlevy0/qlip-app/pkg/util"
)

// Pipeline orchestrates one video analysis: submit the detection job, wait
// for it, fold the events into shots, and write the manifest. A run either
// fully succeeds or produces no output; independent runs may execute
// concurrently since all per-run state lives on the stack.
type Pipeline struct {
	logger  zerolog.Logger
	config  *config.Config
	service detect.Service
	media   *ffmpeg.Executor
}

// New creates a pipeline. media may be nil when every run supplies explicit
// frame dimensions and previews are disabled.
func New(logger zerolog.Logger, cfg *config.Config, service detect.Service, media *ffmpeg.Executor) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if service == nil {
		return nil, fmt.Errorf("detection service is required")
	}

	return &Pipeline{
		logger:  logger.With().Str("component", "pipeline").Logger(),
		config:  cfg,
		service: service,
		media:   media,
	}, nil
}

// Analyze runs the full reframing analysis for one source video
func (p *Pipeline) Analyze(ctx context.Context, source string, opts AnalyzeOptions) (*Result, error) {
	if source == "" {
		return nil, fmt.Errorf("source cannot be empty")
	}

	runID := uuid.NewString()
	logger := p.logger.With().Str("run_id", runID).Logger()

	logger.Info().Str("source", source).Msg("starting analysis")

	frameW, frameH, err := p.resolveFrameSize(ctx, source, opts)
	if err != nil {
		return nil, err
	}

	jobID, err := p.service.SubmitDetectionJob(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("submission failed: %w", err)
	}

	poller := detect.NewPoller(logger, p.service, detect.PollConfig{
		Interval:            time.Duration(p.config.Detection.JobCheckDelayMs) * time.Millisecond,
		MaxPolls:            p.config.Detection.MaxPolls,
		MaxTransientRetries: p.config.Detection.MaxTransientRetries,
	})

	events, err := poller.Await(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("detection job %s: %w", jobID, err)
	}

	segmenter := reframe.NewSegmenter(logger, segmenterConfig(p.config.Reframe))
	list := segmenter.Segment(events, frameW, frameH)

	if err := list.Validate(p.config.Reframe.MinShotDurationSec); err != nil {
		return nil, fmt.Errorf("segmentation produced an invalid shot list: %w", err)
	}

	result := &Result{
		RunID:       runID,
		Source:      source,
		FrameWidth:  frameW,
		FrameHeight: frameH,
		Shots:       list,
		CreatedAt:   time.Now(),
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = p.config.WorkDir
	}
	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	manifest := shots.BuildManifest(runID, source, frameW, frameH, list)

	if opts.Previews || p.config.Previews.Enabled {
		if err := p.generatePreviews(ctx, logger, source, manifest, outDir); err != nil {
			// Previews are an extra; a failure shouldn't discard the shot list.
			logger.Warn().Err(err).Msg("preview generation failed")
		} else {
			result.PreviewDir = filepath.Join(outDir, "previews")
		}
	}

	manifestPath := filepath.Join(outDir, fmt.Sprintf("shots_%s.json", runID))
	if err := manifest.Write(manifestPath); err != nil {
		return nil, err
	}
	result.ManifestPath = manifestPath

	logger.Info().
		Int("shots", len(list)).
		Str("manifest", manifestPath).
		Msg("analysis complete")

	return result, nil
}

// resolveFrameSize returns the source frame dimensions, probing when the
// caller didn't supply them
func (p *Pipeline) resolveFrameSize(ctx context.Context, source string, opts AnalyzeOptions) (int, int, error) {
	if opts.FrameWidth > 0 && opts.FrameHeight > 0 {
		return opts.FrameWidth, opts.FrameHeight, nil
	}

	if p.media == nil {
		return 0, 0, fmt.Errorf("frame dimensions not provided and ffmpeg is unavailable")
	}
	if !util.FileExists(source) {
		return 0, 0, fmt.Errorf("frame dimensions are required for non-local source %q", source)
	}

	info, err := p.media.ProbeVideo(ctx, source)
	if err != nil {
		return 0, 0, fmt.Errorf("probe source: %w", err)
	}
	return info.Width, info.Height, nil
}

func segmenterConfig(rc config.ReframeConfig) reframe.Config {
	return reframe.Config{
		ConfidenceThreshold:          rc.ConfidenceThreshold,
		HighConfidenceThreshold:      rc.HighConfidenceThreshold,
		PaddingFactorBase:            rc.PaddingFactorBase,
		SignificantMovementThreshold: rc.SignificantMovementThreshold,
		CropChangeTolerance:          rc.CropChangeTolerance,
		MinShotDurationSec:           rc.MinShotDurationSec,
		SmoothCrops:                  rc.SmoothCrops,
	}
}
