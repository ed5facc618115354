package services

import (
	"time"

	"fluvid/internal/core/domain"
)

// NopMetrics discards every event.
type NopMetrics struct{}

func (NopMetrics) RecordLogin(bool)                                          {}
func (NopMetrics) RecordRegistration()                                       {}
func (NopMetrics) RecordJob(domain.JobKind, domain.JobStatus, time.Duration) {}
func (NopMetrics) RecordVideoMutation(string)                                {}
