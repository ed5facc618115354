package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns "<prefix>_<12 hex chars>" built from a random UUID.
func GenerateID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:12]
}

func NewVideoID() string   { return GenerateID("vid") }
func NewSeriesID() string  { return GenerateID("ser") }
func NewSeasonID() string  { return GenerateID("sea") }
func NewEpisodeID() string { return GenerateID("ep") }
func NewChapterID() string { return GenerateID("ch") }
func NewJobID() string     { return GenerateID("job") }

// NewSessionID returns an unguessable session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// GenerateRequestID returns an id for the X-Request-ID header.
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}
