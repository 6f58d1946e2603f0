package reframe

import (
	"math"

	"github.com/alexlevy0/qlip-app/internal/detect"
	"github.com/alexlevy0/qlip-app/internal/shots"
)

// significantMovement reports whether the face position jumped by more than
// threshold (in normalized frame units) on either axis.
func significantMovement(prev, cur detect.BoundingBox, threshold float64) bool {
	return math.Abs(cur.Left-prev.Left) > threshold ||
		math.Abs(cur.Top-prev.Top) > threshold
}

// primaryEmotion picks the highest-confidence entry, or nil for an empty list
func primaryEmotion(emotions []detect.EmotionScore) *detect.EmotionScore {
	var best *detect.EmotionScore
	for i := range emotions {
		if best == nil || emotions[i].Confidence > best.Confidence {
			best = &emotions[i]
		}
	}
	return best
}

// significantEmotionChange reports whether the dominant emotion switched
// between two observations. Only a switch between two high-confidence
// primaries counts; anything weaker is treated as noise.
func significantEmotionChange(prev, cur []detect.EmotionScore, highConfidence float64) bool {
	prevPrimary := primaryEmotion(prev)
	curPrimary := primaryEmotion(cur)
	if prevPrimary == nil || curPrimary == nil {
		return false
	}

	return prevPrimary.Confidence >= highConfidence &&
		curPrimary.Confidence >= highConfidence &&
		prevPrimary.Type != curPrimary.Type
}

// significantCropChange reports whether a candidate crop differs from the
// reference by more than tolerance, relative to the reference dimensions.
func significantCropChange(candidate, ref shots.CropWindow, tolerance float64) bool {
	maxDX := tolerance * float64(ref.W)
	maxDY := tolerance * float64(ref.H)

	return math.Abs(float64(candidate.X-ref.X)) > maxDX ||
		math.Abs(float64(candidate.Y-ref.Y)) > maxDY ||
		math.Abs(float64(candidate.W-ref.W)) > maxDX ||
		math.Abs(float64(candidate.H-ref.H)) > maxDY
}
