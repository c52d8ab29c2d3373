package types

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var requestValidator = validator.New()

// validateStruct runs the struct tags and reports the first failing field as a ValidationError.
func validateStruct(v any) error {
	err := requestValidator.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: "failed " + msg}
	}
	return &ValidationError{Field: "request", Message: err.Error()}
}

// CreateApplicantRequest opens a new DRAFT application.
type CreateApplicantRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Validate validates the CreateApplicantRequest.
func (r *CreateApplicantRequest) Validate() error { return validateStruct(r) }

// ProfileUpdate carries the profile fields to change; nil fields are left alone.
type ProfileUpdate struct {
	FullName        *string               `json:"full_name,omitempty"`
	BirthDate       *string               `json:"birth_date,omitempty"`
	Age             *int                  `json:"age,omitempty" validate:"omitempty,min=0,max=150"`
	Gender          *Gender               `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Email           *string               `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string               `json:"phone,omitempty"`
	Address         *string               `json:"address,omitempty"`
	CustomData      map[string]FieldValue `json:"custom_data,omitempty"`
	Recommendations []string              `json:"recommendations,omitempty"`
}

// Validate validates the ProfileUpdate.
func (r *ProfileUpdate) Validate() error { return validateStruct(r) }

// FieldIDs lists the profile field ids the update touches.
func (r *ProfileUpdate) FieldIDs() []string {
	var ids []string
	add := func(set bool, id string) {
		if set {
			ids = append(ids, id)
		}
	}
	add(r.FullName != nil, FieldIDFullName)
	add(r.BirthDate != nil, FieldIDBirthDate)
	add(r.Age != nil, FieldIDAge)
	add(r.Gender != nil, FieldIDGender)
	add(r.Email != nil, FieldIDEmail)
	add(r.Phone != nil, FieldIDPhone)
	add(r.Address != nil, FieldIDAddress)
	add(r.Recommendations != nil, FieldIDRecommendations)
	for id := range r.CustomData {
		ids = append(ids, id)
	}
	return ids
}

// EducationInput is the editable part of an EducationRecord.
type EducationInput struct {
	Level        string `json:"level" validate:"required,oneof=high_school diploma bachelor master doctoral"`
	DegreeName   string `json:"degree_name,omitempty"`
	Institution  string `json:"institution,omitempty"`
	GPAX         string `json:"gpax,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartYear    string `json:"start_year,omitempty"`
	EndYear      string `json:"end_year,omitempty"`
}

// Validate validates the EducationInput.
func (r *EducationInput) Validate() error { return validateStruct(r) }

// UploadRequest attaches a file reference to a document.
type UploadRequest struct {
	FileRef  string `json:"file_ref" validate:"required"`
	FileName string `json:"file_name,omitempty"`
}

// Validate validates the UploadRequest.
func (r *UploadRequest) Validate() error { return validateStruct(r) }

// AttachDocumentRequest is a staff-attached document.
type AttachDocumentRequest struct {
	Name     string `json:"name" validate:"required"`
	FileRef  string `json:"file_ref" validate:"required"`
	FileName string `json:"file_name,omitempty"`
}

// Validate validates the AttachDocumentRequest.
func (r *AttachDocumentRequest) Validate() error { return validateStruct(r) }

// AnswerRequest records an exam answer.
type AnswerRequest struct {
	Answer Answer `json:"answer"`
}

// SignRequest records the applicant's e-signature.
type SignRequest struct {
	SignatureRef string `json:"signature_ref" validate:"required"`
}

// Validate validates the SignRequest.
func (r *SignRequest) Validate() error { return validateStruct(r) }

// PaymentConfirmation is the trusted signal from an external payment provider.
type PaymentConfirmation struct {
	Reference string    `json:"reference" validate:"required"`
	Method    string    `json:"method,omitempty" validate:"omitempty,oneof=kplus qrcode"`
	Amount    float64   `json:"amount" validate:"min=0"`
	PaidAt    time.Time `json:"paid_at,omitempty"`
}

// Validate validates the PaymentConfirmation.
func (r *PaymentConfirmation) Validate() error { return validateStruct(r) }

// ReviewDocumentRequest approves or rejects one document.
type ReviewDocumentRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

// Validate validates the ReviewDocumentRequest.
func (r *ReviewDocumentRequest) Validate() error {
	if !r.Approve && strings.TrimSpace(r.Note) == "" {
		return &ValidationError{Field: "note", Message: "a rejection needs a note"}
	}
	return nil
}

// FieldRejectionRequest flags a profile field for correction.
type FieldRejectionRequest struct {
	FieldID string `json:"field_id" validate:"required"`
	Reason  string `json:"reason" validate:"required"`
}

// Validate validates the FieldRejectionRequest.
func (r *FieldRejectionRequest) Validate() error { return validateStruct(r) }

// GradeRequest is a manual essay score.
type GradeRequest struct {
	Score float64 `json:"score"`
}

// FeeOverrideRequest is a staff override of one fee track.
type FeeOverrideRequest struct {
	Status FeeStatus `json:"status" validate:"required,oneof=PENDING PAID REJECTED"`
}

// Validate validates the FeeOverrideRequest.
func (r *FeeOverrideRequest) Validate() error { return validateStruct(r) }

// Decision outcomes.
const (
	DecisionPass = "pass"
	DecisionFail = "fail"
)

// DecisionRequest is the final staff decision.
type DecisionRequest struct {
	Outcome    string      `json:"outcome" validate:"required,oneof=pass fail"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Validate validates the DecisionRequest.
func (r *DecisionRequest) Validate() error { return validateStruct(r) }

// BookRequest books or transfers an interview.
type BookRequest struct {
	SlotID string `json:"slot_id" validate:"required"`
}

// Validate validates the BookRequest.
func (r *BookRequest) Validate() error { return validateStruct(r) }

// AnnotateRequest updates staff-only annotations.
type AnnotateRequest struct {
	RankingScore *float64 `json:"ranking_score,omitempty"`
	IsStarred    *bool    `json:"is_starred,omitempty"`
}

// SlotInput creates or edits an interview slot.
type SlotInput struct {
	Start    time.Time     `json:"start" validate:"required"`
	End      time.Time     `json:"end" validate:"required,gtfield=Start"`
	Location string        `json:"location"`
	Type     InterviewType `json:"type" validate:"required,oneof=Onsite Online"`
	Capacity int           `json:"capacity" validate:"min=1"`
}

// Validate validates the SlotInput.
func (r *SlotInput) Validate() error { return validateStruct(r) }

// GroupRequest names a group.
type GroupRequest struct {
	Name string `json:"name"`
}

// Move directions within a group.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// MemberRequest targets an applicant inside a slot.
type MemberRequest struct {
	ApplicantID string `json:"applicant_id" validate:"required"`
	Direction   string `json:"direction,omitempty" validate:"omitempty,oneof=up down"`
}

// Validate validates the MemberRequest.
func (r *MemberRequest) Validate() error { return validateStruct(r) }

// StaffLoginRequest is the demo staff picker.
type StaffLoginRequest struct {
	Username string `json:"username" validate:"required"`
}

// Validate validates the StaffLoginRequest.
func (r *StaffLoginRequest) Validate() error { return validateStruct(r) }

// StaffLoginResponse carries the session token.
type StaffLoginResponse struct {
	User  StaffUser `json:"user"`
	Token string    `json:"token"`
}

// ApplicantFilter narrows ListApplicants.
type ApplicantFilter struct {
	Status  ApplicationStatus
	Query   string
	Starred bool
}

// Match reports whether the applicant passes the filter.
func (f ApplicantFilter) Match(a Applicant) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Starred && !a.IsStarred {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(a.FullName), q) &&
			!strings.Contains(strings.ToLower(a.Email), q) &&
			!strings.Contains(strings.ToLower(a.ID), q) {
			return false
		}
	}
	return true
}
