package domain

import (
	"encoding/json"
	"time"
)

type JobID string

type JobKind string

const (
	JobUpload            JobKind = "upload"
	JobImport            JobKind = "import"
	JobCopyrightScan     JobKind = "copyright_scan"
	JobMonetizationCheck JobKind = "monetization_check"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// Job is a simulated asynchronous operation that advances through fixed-delay steps.
type Job struct {
	ID          JobID           `json:"id"`
	Kind        JobKind         `json:"kind"`
	OwnerID     UserID          `json:"ownerId"`
	TargetID    string          `json:"targetId,omitempty"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	Step        string          `json:"step,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Toast       *Toast          `json:"toast,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

func (j *Job) Clone() *Job {
	c := *j
	c.Result = append(json.RawMessage(nil), j.Result...)
	if j.Toast != nil {
		t := *j.Toast
		c.Toast = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// JobEvent is published on every progress change of a job.
type JobEvent struct {
	JobID    JobID     `json:"jobId"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
	Step     string    `json:"step,omitempty"`
	Toast    *Toast    `json:"toast,omitempty"`
}
