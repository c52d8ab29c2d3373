// Package types provides the admission data model shared by every component.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// ApplicationStatus is the stage an applicant currently occupies.
type ApplicationStatus string

const (
	StatusDraft           ApplicationStatus = "DRAFT"
	StatusSubmitted       ApplicationStatus = "SUBMITTED"
	StatusDocsApproved    ApplicationStatus = "DOCS_APPROVED"
	StatusDocsRejected    ApplicationStatus = "DOCS_REJECTED"
	StatusInterviewReady  ApplicationStatus = "INTERVIEW_READY"
	StatusInterviewBooked ApplicationStatus = "INTERVIEW_BOOKED"
	StatusPassed          ApplicationStatus = "PASSED"
	StatusFailed          ApplicationStatus = "FAILED"
	StatusEnrolled        ApplicationStatus = "ENROLLED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusDocsRejected,
	StatusDocsApproved,
	StatusInterviewReady,
	StatusInterviewBooked,
	StatusPassed,
	StatusFailed,
	StatusEnrolled,
}

// Valid reports whether s is one of the defined statuses.
func (s ApplicationStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusEnrolled || s == StatusFailed
}

// ParseStatus converts a raw string into an ApplicationStatus.
func ParseStatus(raw string) (ApplicationStatus, error) {
	s := ApplicationStatus(raw)
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown application status %q", raw)}
	}
	return s, nil
}

// UnmarshalText rejects unknown statuses so a stored record can never hold one.
// An empty value is left for Applicant.Normalize to default.
func (s *ApplicationStatus) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = ""
		return nil
	}
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DocumentStatus tracks a single required document.
type DocumentStatus string

const (
	DocPending  DocumentStatus = "pending"
	DocUploaded DocumentStatus = "uploaded"
	DocApproved DocumentStatus = "approved"
	DocRejected DocumentStatus = "rejected"
)

// Submittable reports whether the document counts as supplied for submission.
func (s DocumentStatus) Submittable() bool {
	return s == DocUploaded || s == DocApproved
}

// FeeStatus is the state of one fee track.
type FeeStatus string

const (
	FeePending  FeeStatus = "PENDING"
	FeePaid     FeeStatus = "PAID"
	FeeRejected FeeStatus = "REJECTED"
)

// Valid reports whether s is a known fee status.
func (s FeeStatus) Valid() bool {
	return s == FeePending || s == FeePaid || s == FeeRejected
}

// FeeTrack names one of the three independently tracked payment obligations.
type FeeTrack string

const (
	TrackApplication FeeTrack = "application"
	TrackInterview   FeeTrack = "interview"
	TrackTuition     FeeTrack = "tuition"
)

// FeeTracks lists the tracks in the order they fall due.
var FeeTracks = []FeeTrack{TrackApplication, TrackInterview, TrackTuition}

// ParseFeeTrack converts a raw string into a FeeTrack.
func ParseFeeTrack(raw string) (FeeTrack, error) {
	for _, t := range FeeTracks {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "track", Message: fmt.Sprintf("unknown fee track %q", raw)}
}
