package shots

import "fmt"

// Label classifies the subject's behavior during a shot
type Label string

const (
	// LabelSpeaking marks shots where the subject is actively engaged
	LabelSpeaking Label = "Speaking/Smiling"
	// LabelNoFace marks shots with no usable face activity
	LabelNoFace Label = "No Face"
)

// Valid reports whether the label is one of the two known values
func (l Label) Valid() bool {
	return l == LabelSpeaking || l == LabelNoFace
}

// CropWindow is a rectangular pixel region of the source frame
type CropWindow struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Equal compares two crop windows by value
func (c CropWindow) Equal(other CropWindow) bool {
	return c == other
}

// SameCrop compares two optional crops by value; two nils are the same
func SameCrop(a, b *CropWindow) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Shot is a contiguous time interval with one crop window and one label.
// Times are in seconds from the start of the video.
type Shot struct {
	Start float64     `json:"ts_start"`
	End   float64     `json:"ts_end"`
	Crop  *CropWindow `json:"crop,omitempty"`
	Label Label       `json:"label"`
}

// Duration returns the shot length in seconds
func (s Shot) Duration() float64 {
	return s.End - s.Start
}

// List is an ordered sequence of shots covering a video
type List []Shot

// Validate checks the structural invariants of a shot list: shots are sorted
// and contiguous, every duration is positive and at least minDuration, and
// every label is a known value.
func (l List) Validate(minDuration float64) error {
	const eps = 1e-9

	for i, s := range l {
		if !s.Label.Valid() {
			return fmt.Errorf("shot %d: unknown label %q", i, s.Label)
		}
		if s.End-s.Start <= 0 {
			return fmt.Errorf("shot %d: non-positive duration [%g, %g]", i, s.Start, s.End)
		}
		if s.Duration() < minDuration-eps {
			return fmt.Errorf("shot %d: duration %g below minimum %g", i, s.Duration(), minDuration)
		}
		if i > 0 {
			prev := l[i-1]
			if s.Start < prev.Start {
				return fmt.Errorf("shot %d: starts before shot %d", i, i-1)
			}
			if diff := s.Start - prev.End; diff > eps || diff < -eps {
				return fmt.Errorf("shot %d: gap from previous shot (%g != %g)", i, prev.End, s.Start)
			}
		}
	}

	return nil
}
