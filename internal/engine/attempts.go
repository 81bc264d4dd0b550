package engine

import (
	"errors"
	"fmt"
)

// MaxAttempts bounds statement executions per question: the first
// attempt plus one sanitized retry.
const MaxAttempts = 2

// AttemptQuota counts execution attempts for one pipeline run and stops
// the run once the limit is reached.
//
// Each run creates its own AttemptQuota, checked before every execution.
// The refusal is an AttemptsExceededError; the engine joins it to the last
// execution error so a hard failure carries both the database error and the
// exhausted budget.
//
// Not safe for concurrent use.
type AttemptQuota struct {
	limit   int
	current int
}

// NewAttemptQuota creates a quota allowing limit attempts.
func NewAttemptQuota(limit int) *AttemptQuota {
	return &AttemptQuota{limit: limit}
}

// Check records one more attempt and fails with AttemptsExceededError
// if the limit is passed.
func (q *AttemptQuota) Check(traceID string) error {
	q.current++
	if q.current > q.limit {
		return &AttemptsExceededError{
			TraceID:  traceID,
			Attempts: q.current,
			Limit:    q.limit,
		}
	}
	return nil
}

// Current returns the number of attempts recorded, including a refused one.
func (q *AttemptQuota) Current() int {
	return q.current
}

// Limit returns the maximum number of attempts.
func (q *AttemptQuota) Limit() int {
	return q.limit
}

// AttemptsExceededError is returned when a run asks for more attempts
// than its quota allows.
type AttemptsExceededError struct {
	TraceID  string
	Attempts int
	Limit    int
}

// Error implements the error interface.
func (e *AttemptsExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded attempt quota: %d attempts > %d limit",
		e.TraceID, e.Attempts, e.Limit)
}

// IsAttemptsExceededError reports whether err is an AttemptsExceededError.
func IsAttemptsExceededError(err error) bool {
	var ae *AttemptsExceededError
	return errors.As(err, &ae)
}
