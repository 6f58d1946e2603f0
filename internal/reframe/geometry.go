package reframe

import (
	"math"

	"github.com/alexlevy0/qlip-app/internal/detect"
	"github.com/alexlevy0/qlip-app/internal/shots"
)

// paddingJumpBonus is the extra padding applied after a significant jump,
// so the looser crop doesn't immediately re-clip the moved face.
const paddingJumpBonus = 0.5

// computeCrop derives a crop window around a face.
//
// The crop is the face box scaled by (1 + padding), clamped to the frame,
// and centered on the face. Padding grows by paddingJumpBonus when the face
// jumped significantly since the last retained position. If the rectangle
// overflows the frame on the right or bottom edge it is shifted back inside;
// the left and top edges are left unshifted, so a heavily padded face tight
// in a corner can still push X or Y below zero.
//
// When lastCrop is non-nil and the candidate is not significantly different
// from it, lastCrop is returned unchanged to suppress frame-to-frame jitter.
func computeCrop(box detect.BoundingBox, frameW, frameH int, lastFace *detect.BoundingBox, lastCrop *shots.CropWindow, cfg Config) shots.CropWindow {
	padding := cfg.PaddingFactorBase
	if lastFace != nil && significantMovement(*lastFace, box, cfg.SignificantMovementThreshold) {
		padding += paddingJumpBonus
	}

	fw := float64(frameW)
	fh := float64(frameH)

	faceW := box.Width * fw
	faceH := box.Height * fh
	centerX := (box.Left + box.Width/2) * fw
	centerY := (box.Top + box.Height/2) * fh

	cropW := faceW * (1 + padding)
	if cropW > fw {
		cropW = fw
	}
	cropH := faceH * (1 + padding)
	if cropH > fh {
		cropH = fh
	}

	x := centerX - cropW/2
	y := centerY - cropH/2

	if x+cropW > fw {
		x = fw - cropW
	}
	if y+cropH > fh {
		y = fh - cropH
	}

	candidate := shots.CropWindow{
		X: int(math.Round(x)),
		Y: int(math.Round(y)),
		W: int(math.Round(cropW)),
		H: int(math.Round(cropH)),
	}

	if lastCrop != nil && !significantCropChange(candidate, *lastCrop, cfg.CropChangeTolerance) {
		return *lastCrop
	}

	return candidate
}
