package shots

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alexlevy0/qlip-app/pkg/util"
)

// Manifest is the shot list as written for downstream editing tools
type Manifest struct {
	RunID       string         `json:"run_id"`
	Source      string         `json:"source"`
	FrameWidth  int            `json:"frame_width"`
	FrameHeight int            `json:"frame_height"`
	GeneratedAt time.Time      `json:"generated_at"`
	Shots       []ManifestShot `json:"shots"`
}

// ManifestShot is one shot entry with both raw and human-readable times
type ManifestShot struct {
	Index    int         `json:"index"`
	StartSec float64     `json:"start_sec"`
	EndSec   float64     `json:"end_sec"`
	Start    string      `json:"start"`
	End      string      `json:"end"`
	Label    Label       `json:"label"`
	Crop     *CropWindow `json:"crop,omitempty"`
	Preview  string      `json:"preview,omitempty"`
}

// BuildManifest assembles a manifest from a validated shot list
func BuildManifest(runID, source string, frameW, frameH int, list List) *Manifest {
	m := &Manifest{
		RunID:       runID,
		Source:      source,
		FrameWidth:  frameW,
		FrameHeight: frameH,
		GeneratedAt: time.Now().UTC(),
		Shots:       make([]ManifestShot, 0, len(list)),
	}

	for i, s := range list {
		m.Shots = append(m.Shots, ManifestShot{
			Index:    i,
			StartSec: s.Start,
			EndSec:   s.End,
			Start:    util.FormatSeconds(s.Start),
			End:      util.FormatSeconds(s.End),
			Label:    s.Label,
			Crop:     s.Crop,
		})
	}

	return m
}

// Write saves the manifest as indented JSON
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// ReadManifest loads a previously written manifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
