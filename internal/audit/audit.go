// Package audit captures structured events for the onboarding pipeline.
// Events are emitted from domain logic and fanned out through a Sink so tests
// can swap the destination.
package audit

import "time"

// Actions emitted by the pipeline.
const (
	ActionGrantIssued          = "upload_grant_issued"
	ActionUploadAccepted       = "upload_accepted"
	ActionUploadRejected       = "upload_rejected"
	ActionSessionStarted       = "session_started"
	ActionSecondFactorVerified = "second_factor_verified"
	ActionSecondFactorRejected = "second_factor_rejected"
	ActionApplicationSubmitted = "application_submitted"
	ActionApplicationReviewed  = "application_reviewed"
)

// Event is one audit record. Keep it transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	SubjectID string            `json:"subject_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
