package detect

import "errors"

var (
	// ErrNoJobID means the service accepted a submission but returned no identifier
	ErrNoJobID = errors.New("detection service returned no job id")

	// ErrJobFailed means the job reached the FAILED terminal state
	ErrJobFailed = errors.New("detection job failed")

	// ErrPollExhausted means polling gave up before the job reached a terminal state
	ErrPollExhausted = errors.New("polling exhausted")
)
