package reframe

import (
	"github.com/alexlevy0/qlip-app/internal/detect"
	"github.com/alexlevy0/qlip-app/internal/shots"
	"github.com/rs/zerolog"
)

// Config holds the crop and segmentation thresholds
type Config struct {
	// ConfidenceThreshold is the minimum face confidence (0-100) for a
	// frame to be considered for cropping
	ConfidenceThreshold float64
	// HighConfidenceThreshold gates emotion-change significance (0-100)
	HighConfidenceThreshold float64
	// PaddingFactorBase is the base crop padding relative to face size
	PaddingFactorBase float64
	// SignificantMovementThreshold is the normalized position delta that
	// counts as a jump
	SignificantMovementThreshold float64
	// CropChangeTolerance is the relative delta below which two crops are
	// treated as the same window
	CropChangeTolerance float64
	// MinShotDurationSec is the minimum length of any emitted shot
	MinShotDurationSec float64
	// SmoothCrops threads the previously retained crop into the geometry
	// step so near-identical candidates collapse onto it. Off by default:
	// each frame's crop is computed fresh.
	SmoothCrops bool
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold:          85.0,
		HighConfidenceThreshold:      95.0,
		PaddingFactorBase:            1.0,
		SignificantMovementThreshold: 0.7,
		CropChangeTolerance:          0.6,
		MinShotDurationSec:           0.6,
		SmoothCrops:                  false,
	}
}

// Segmenter folds ordered detection events into a shot list
type Segmenter struct {
	logger zerolog.Logger
	config Config
}

// NewSegmenter creates a segmenter with the given thresholds
func NewSegmenter(logger zerolog.Logger, cfg Config) *Segmenter {
	return &Segmenter{
		logger: logger.With().Str("component", "segmenter").Logger(),
		config: cfg,
	}
}

// accumulator is the state threaded through the fold, one per run
type accumulator struct {
	lastFace     *detect.BoundingBox
	lastEmotions []detect.EmotionScore
	lastCrop     *shots.CropWindow
	open         *shots.Shot
	closed       shots.List
}

// Segment collapses the ordered detection events into a minimal contiguous
// shot list. The result is deterministic for a given event sequence, frame
// size and configuration. Events reporting a face without usable geometry
// are skipped with a warning.
func (s *Segmenter) Segment(events []detect.FaceDetectionEvent, frameW, frameH int) shots.List {
	acc := accumulator{}

	for _, ev := range events {
		if ev.Face != nil && ev.Face.BoundingBox.Zero() {
			s.logger.Warn().
				Int64("timestamp_ms", ev.TimestampMs).
				Msg("face reported without bounding box, skipping event")
			continue
		}

		ts := float64(ev.TimestampMs) / 1000.0
		label, crop := s.classify(&acc, ev, frameW, frameH)
		s.fold(&acc, ts, label, crop)

		// Retained position and emotions track every observed face, even
		// ones that didn't produce a crop.
		if ev.Face != nil {
			box := ev.Face.BoundingBox
			acc.lastFace = &box
			acc.lastEmotions = ev.Face.Emotions
		}
		if crop != nil {
			acc.lastCrop = crop
		}
	}

	if acc.open != nil {
		if acc.open.Duration() < s.config.MinShotDurationSec {
			acc.open.End = acc.open.Start + s.config.MinShotDurationSec
		}
		acc.closed = append(acc.closed, *acc.open)
	}

	s.logger.Info().
		Int("events", len(events)).
		Int("shots", len(acc.closed)).
		Msg("segmentation complete")

	return acc.closed
}

// classify decides the label and crop window for a single event
func (s *Segmenter) classify(acc *accumulator, ev detect.FaceDetectionEvent, frameW, frameH int) (shots.Label, *shots.CropWindow) {
	face := ev.Face
	engaged := face != nil &&
		face.Confidence >= s.config.ConfidenceThreshold &&
		(face.MouthOpen.Value || face.Smile.Value ||
			significantEmotionChange(acc.lastEmotions, face.Emotions, s.config.HighConfidenceThreshold))

	if !engaged {
		return shots.LabelNoFace, nil
	}

	var lastCrop *shots.CropWindow
	if s.config.SmoothCrops {
		lastCrop = acc.lastCrop
	}

	crop := computeCrop(face.BoundingBox, frameW, frameH, acc.lastFace, lastCrop, s.config)
	return shots.LabelSpeaking, &crop
}

// fold merges the event's decision into the open shot or starts a new one
func (s *Segmenter) fold(acc *accumulator, ts float64, label shots.Label, crop *shots.CropWindow) {
	if acc.open == nil {
		acc.open = &shots.Shot{
			Start: 0,
			End:   max(s.config.MinShotDurationSec, ts),
			Crop:  crop,
			Label: label,
		}
		return
	}

	if label == acc.open.Label && shots.SameCrop(crop, acc.open.Crop) {
		if ts > acc.open.End {
			acc.open.End = ts
		}
		return
	}

	acc.closed = append(acc.closed, *acc.open)
	start := acc.open.End
	acc.open = &shots.Shot{
		Start: start,
		End:   max(start+s.config.MinShotDurationSec, ts),
		Crop:  crop,
		Label: label,
	}
}
