package shots

import (
	"path/filepath"
	"testing"
)

func TestManifestRoundTrip(t *testing.T) {
	list := List{
		{Start: 0, End: 2, Crop: &CropWindow{X: 300, Y: 200, W: 400, H: 400}, Label: LabelSpeaking},
		{Start: 2, End: 2.6, Label: LabelNoFace},
	}

	m := BuildManifest("run-42", "video.mp4", 1000, 1000, list)

	if len(m.Shots) != 2 {
		t.Fatalf("manifest has %d shots, want 2", len(m.Shots))
	}
	if m.Shots[0].Start != "00:00:00.000" || m.Shots[0].End != "00:00:02.000" {
		t.Errorf("formatted times wrong: %q -> %q", m.Shots[0].Start, m.Shots[0].End)
	}
	if m.Shots[1].Crop != nil {
		t.Errorf("no-face entry carries a crop")
	}

	path := filepath.Join(t.TempDir(), "shots.json")
	if err := m.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if got.RunID != "run-42" || got.Source != "video.mp4" {
		t.Errorf("header mismatch: %+v", got)
	}
	if got.FrameWidth != 1000 || got.FrameHeight != 1000 {
		t.Errorf("frame size mismatch: %dx%d", got.FrameWidth, got.FrameHeight)
	}
	if len(got.Shots) != 2 {
		t.Fatalf("read %d shots, want 2", len(got.Shots))
	}
	if got.Shots[0].Crop == nil || *got.Shots[0].Crop != *m.Shots[0].Crop {
		t.Errorf("crop did not survive round trip: %+v", got.Shots[0].Crop)
	}
	if got.Shots[1].Label != LabelNoFace {
		t.Errorf("label mismatch: %q", got.Shots[1].Label)
	}
}
