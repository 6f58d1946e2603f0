package reframe

import (
	"io"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alexlevy0/qlip-app/internal/detect"
	"github.com/alexlevy0/qlip-app/internal/shots"
)

func testSegmenter(t *testing.T, cfg Config) *Segmenter {
	t.Helper()
	return NewSegmenter(zerolog.New(io.Discard), cfg)
}

func smilingEvent(tsMs int64, box detect.BoundingBox) detect.FaceDetectionEvent {
	return detect.FaceDetectionEvent{
		TimestampMs: tsMs,
		Face: &detect.Face{
			Confidence:  99.0,
			BoundingBox: box,
			Smile:       detect.BoolAttribute{Value: true, Confidence: 90},
		},
	}
}

func TestSegmentStableFaceMergesIntoSingleShot(t *testing.T) {
	box := detect.BoundingBox{Left: 0.4, Top: 0.3, Width: 0.2, Height: 0.2}
	events := []detect.FaceDetectionEvent{
		smilingEvent(0, box),
		smilingEvent(1000, box),
		smilingEvent(2000, box),
	}

	list := testSegmenter(t, DefaultConfig()).Segment(events, 1000, 1000)

	if len(list) != 1 {
		t.Fatalf("got %d shots, want 1: %+v", len(list), list)
	}
	shot := list[0]
	if shot.Start != 0 || shot.End != 2 {
		t.Errorf("shot spans [%g, %g], want [0, 2]", shot.Start, shot.End)
	}
	if shot.Label != shots.LabelSpeaking {
		t.Errorf("label = %q, want %q", shot.Label, shots.LabelSpeaking)
	}
	if shot.Crop == nil {
		t.Error("engaged shot has no crop window")
	}
}

func TestSegmentLabelFlipClosesShotAtMinimumDuration(t *testing.T) {
	box := detect.BoundingBox{Left: 0.4, Top: 0.3, Width: 0.2, Height: 0.2}
	quiet := detect.FaceDetectionEvent{
		TimestampMs: 300,
		Face: &detect.Face{
			Confidence:  99.0,
			BoundingBox: box,
		},
	}

	events := []detect.FaceDetectionEvent{smilingEvent(0, box), quiet}

	list := testSegmenter(t, DefaultConfig()).Segment(events, 1000, 1000)

	if len(list) != 2 {
		t.Fatalf("got %d shots, want 2: %+v", len(list), list)
	}

	first, second := list[0], list[1]
	if first.Start != 0 || first.End != 0.6 {
		t.Errorf("first shot [%g, %g], want [0, 0.6]", first.Start, first.End)
	}
	if first.Label != shots.LabelSpeaking {
		t.Errorf("first label = %q, want %q", first.Label, shots.LabelSpeaking)
	}
	if second.Start != 0.6 || second.End != 1.2 {
		t.Errorf("second shot [%g, %g], want [0.6, 1.2]", second.Start, second.End)
	}
	if second.Label != shots.LabelNoFace {
		t.Errorf("second label = %q, want %q", second.Label, shots.LabelNoFace)
	}
	if second.Crop != nil {
		t.Errorf("no-face shot carries a crop: %+v", second.Crop)
	}
}

func TestSegmentLowConfidenceFaceIsNotEngaged(t *testing.T) {
	box := detect.BoundingBox{Left: 0.4, Top: 0.3, Width: 0.2, Height: 0.2}
	ev := smilingEvent(0, box)
	ev.Face.Confidence = 60.0

	list := testSegmenter(t, DefaultConfig()).Segment([]detect.FaceDetectionEvent{ev}, 1000, 1000)

	if len(list) != 1 {
		t.Fatalf("got %d shots, want 1", len(list))
	}
	if list[0].Label != shots.LabelNoFace {
		t.Errorf("label = %q, want %q", list[0].Label, shots.LabelNoFace)
	}
}

func TestSegmentEmotionSwitchEngagesWithoutSmile(t *testing.T) {
	box := detect.BoundingBox{Left: 0.4, Top: 0.3, Width: 0.2, Height: 0.2}
	happy := detect.FaceDetectionEvent{
		TimestampMs: 0,
		Face: &detect.Face{
			Confidence:  99.0,
			BoundingBox: box,
			Emotions:    []detect.EmotionScore{{Type: "HAPPY", Confidence: 96}},
		},
	}
	surprised := detect.FaceDetectionEvent{
		TimestampMs: 1000,
		Face: &detect.Face{
			Confidence:  99.0,
			BoundingBox: box,
			Emotions:    []detect.EmotionScore{{Type: "SURPRISED", Confidence: 97}},
		},
	}

	list := testSegmenter(t, DefaultConfig()).Segment([]detect.FaceDetectionEvent{happy, surprised}, 1000, 1000)

	if len(list) != 2 {
		t.Fatalf("got %d shots, want 2: %+v", len(list), list)
	}
	// First event has no prior emotions so it cannot be an emotion switch.
	if list[0].Label != shots.LabelNoFace {
		t.Errorf("first label = %q, want %q", list[0].Label, shots.LabelNoFace)
	}
	// Second event switches primary HAPPY -> SURPRISED at high confidence.
	if list[1].Label != shots.LabelSpeaking {
		t.Errorf("second label = %q, want %q", list[1].Label, shots.LabelSpeaking)
	}
}

func TestSegmentSkipsFaceWithoutBoundingBox(t *testing.T) {
	box := detect.BoundingBox{Left: 0.4, Top: 0.3, Width: 0.2, Height: 0.2}
	malformed := detect.FaceDetectionEvent{
		TimestampMs: 500,
		Face: &detect.Face{
			Confidence: 99.0,
			Smile:      detect.BoolAttribute{Value: true},
		},
	}

	events := []detect.FaceDetectionEvent{
		smilingEvent(0, box),
		malformed,
		smilingEvent(2000, box),
	}

	list := testSegmenter(t, DefaultConfig()).Segment(events, 1000, 1000)

	if len(list) != 1 {
		t.Fatalf("got %d shots, want 1 (malformed event skipped): %+v", len(list), list)
	}
	if list[0].End != 2 {
		t.Errorf("shot end = %g, want 2", list[0].End)
	}
}

func TestSegmentInvariantsHoldOnMixedSequence(t *testing.T) {
	cfg := DefaultConfig()
	boxA := detect.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.3}
	boxB := detect.BoundingBox{Left: 0.6, Top: 0.4, Width: 0.25, Height: 0.3}

	events := []detect.FaceDetectionEvent{
		smilingEvent(0, boxA),
		smilingEvent(400, boxA),
		{TimestampMs: 900, Face: &detect.Face{Confidence: 50, BoundingBox: boxA}},
		smilingEvent(1500, boxB),
		{TimestampMs: 2100},
		smilingEvent(3000, boxA),
		smilingEvent(3100, boxA),
	}

	list := testSegmenter(t, cfg).Segment(events, 1920, 1080)

	if err := list.Validate(cfg.MinShotDurationSec); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestSegmentIsDeterministic(t *testing.T) {
	boxA := detect.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.3}
	boxB := detect.BoundingBox{Left: 0.6, Top: 0.4, Width: 0.25, Height: 0.3}
	events := []detect.FaceDetectionEvent{
		smilingEvent(0, boxA),
		smilingEvent(700, boxB),
		{TimestampMs: 1400},
		smilingEvent(2000, boxA),
	}

	seg := testSegmenter(t, DefaultConfig())
	first := seg.Segment(events, 1920, 1080)
	second := seg.Segment(events, 1920, 1080)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ:\n%+v\n%+v", first, second)
	}
}

func TestSegmentEmptyInputYieldsNoShots(t *testing.T) {
	list := testSegmenter(t, DefaultConfig()).Segment(nil, 1920, 1080)
	if len(list) != 0 {
		t.Errorf("got %d shots for empty input", len(list))
	}
}

func TestSegmentCropSmoothingMergesJitteryShots(t *testing.T) {
	base := detect.BoundingBox{Left: 0.4, Top: 0.3, Width: 0.2, Height: 0.2}
	drift := detect.BoundingBox{Left: 0.41, Top: 0.3, Width: 0.2, Height: 0.2}
	events := []detect.FaceDetectionEvent{
		smilingEvent(0, base),
		smilingEvent(1000, drift),
	}

	plain := DefaultConfig()
	plainList := testSegmenter(t, plain).Segment(events, 1000, 1000)
	if len(plainList) != 2 {
		t.Fatalf("without smoothing got %d shots, want 2 (fresh crop per frame)", len(plainList))
	}

	smoothed := DefaultConfig()
	smoothed.SmoothCrops = true
	smoothedList := testSegmenter(t, smoothed).Segment(events, 1000, 1000)
	if len(smoothedList) != 1 {
		t.Fatalf("with smoothing got %d shots, want 1: %+v", len(smoothedList), smoothedList)
	}
	if smoothedList[0].End != 1 {
		t.Errorf("merged shot end = %g, want 1", smoothedList[0].End)
	}
}
