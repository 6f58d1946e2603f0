package detect

// JobID identifies a detection job on the external service
type JobID string

// JobState is the lifecycle state of a detection job
type JobState string

const (
	StatePending    JobState = "PENDING"
	StateInProgress JobState = "IN_PROGRESS"
	StateSucceeded  JobState = "SUCCEEDED"
	StateFailed     JobState = "FAILED"
)

// Terminal reports whether the job can no longer change state
func (s JobState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// JobStatus is the service's answer to a status poll
type JobStatus struct {
	State   JobState             `json:"status"`
	Message string               `json:"message,omitempty"`
	Faces   []FaceDetectionEvent `json:"faces,omitempty"`
}

// BoundingBox locates a face within a frame, normalized to [0,1]
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Zero reports whether the box carries no geometry at all
func (b BoundingBox) Zero() bool {
	return b.Width == 0 && b.Height == 0
}

// EmotionScore is one emotion label with its confidence (0-100)
type EmotionScore struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// BoolAttribute is a detected boolean facial attribute with its own confidence
type BoolAttribute struct {
	Value      bool    `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Face holds the per-face detail of one detection observation
type Face struct {
	Confidence  float64        `json:"confidence"`
	BoundingBox BoundingBox    `json:"bounding_box"`
	MouthOpen   BoolAttribute  `json:"mouth_open"`
	Smile       BoolAttribute  `json:"smile"`
	Emotions    []EmotionScore `json:"emotions,omitempty"`
}

// FaceDetectionEvent is one timestamped observation from the service.
// Face is nil when the frame was sampled but no face was reported.
type FaceDetectionEvent struct {
	TimestampMs int64 `json:"timestamp_ms"`
	Face        *Face `json:"face,omitempty"`
}
