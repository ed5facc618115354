package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrSeriesNotFound  = errors.New("series not found")
	ErrSeasonNotFound  = errors.New("season not found")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrJobNotFound     = errors.New("job not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("permission denied")

	ErrInvalidChapterTime  = errors.New("chapter time must be in MM:SS format")
	ErrChapterPastEnd      = errors.New("chapter starts after the end of the video")
	ErrDuplicateChapter    = errors.New("a chapter already starts at this time")
	ErrVideoNotReady       = errors.New("video is still processing")
	ErrInvalidDuration     = errors.New("duration must be M:SS or H:MM:SS")
	ErrInvalidScheduleTime = errors.New("release time must be in the future")
	ErrInvalidPrice        = errors.New("pay-per-view content needs a price above zero")
	ErrDuplicateSeason     = errors.New("season number already exists")
	ErrDuplicateEpisode    = errors.New("episode number already exists in this season")
)

// ValidationError is a form-level failure: a field that did not pass its check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error()}
}
