package models

import (
	"fmt"
	"strings"
	"time"
)

// AttemptSummary records when a worker picked up a deposit
// request and what went wrong outside the deposit itself,
// like an unknown repository or a PDF that could not be fetched.
type AttemptSummary struct {
	// AttemptNumber is the NSQ attempt count of the message
	// that carried the request. This starts at one.
	AttemptNumber uint16 `json:"attempt_number"`

	// Errors describes problems that kept the deposit from
	// being attempted at all.
	Errors []string `json:"errors,omitempty"`

	// StartedAt describes when the worker started on the
	// request. If StartedAt.IsZero(), it hasn't started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt describes when the worker was done. The
	// attempt may have finished without succeeding.
	FinishedAt time.Time `json:"finished_at"`
}

func NewAttemptSummary(attemptNumber uint16) *AttemptSummary {
	return &AttemptSummary{
		AttemptNumber: attemptNumber,
		Errors:        make([]string, 0),
	}
}

func (summary *AttemptSummary) Start() {
	summary.StartedAt = time.Now().UTC()
}

func (summary *AttemptSummary) Started() bool {
	return !summary.StartedAt.IsZero()
}

func (summary *AttemptSummary) Finish() {
	summary.FinishedAt = time.Now().UTC()
}

func (summary *AttemptSummary) Finished() bool {
	return !summary.FinishedAt.IsZero()
}

func (summary *AttemptSummary) RunTime() time.Duration {
	startTime := summary.StartedAt
	if startTime.IsZero() {
		return time.Duration(0)
	}
	endTime := summary.FinishedAt
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(startTime)
}

func (summary *AttemptSummary) AddError(format string, a ...interface{}) {
	summary.Errors = append(summary.Errors, fmt.Sprintf(format, a...))
}

func (summary *AttemptSummary) HasErrors() bool {
	return len(summary.Errors) > 0
}

func (summary *AttemptSummary) FirstError() string {
	if len(summary.Errors) > 0 {
		return summary.Errors[0]
	}
	return ""
}

func (summary *AttemptSummary) AllErrorsAsString() string {
	return strings.Join(summary.Errors, "\n")
}
