package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Gender is a standard profile value.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// EducationRecord is one degree entry in an applicant's history.
type EducationRecord struct {
	ID           string `json:"id"`
	Level        string `json:"level"`
	DegreeName   string `json:"degree_name,omitempty"`
	Institution  string `json:"institution,omitempty"`
	GPAX         string `json:"gpax,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartYear    string `json:"start_year,omitempty"`
	EndYear      string `json:"end_year,omitempty"`
}

// DocumentItem is one required (or staff-attached) document.
type DocumentItem struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Status     DocumentStatus `json:"status"`
	FileRef    string         `json:"file_ref,omitempty"`
	FileName   string         `json:"file_name,omitempty"`
	ReviewNote string         `json:"review_note,omitempty"`
	ConfigID   string         `json:"config_id,omitempty"`
	IsDynamic  bool           `json:"is_dynamic,omitempty"`
	UploadedBy string         `json:"uploaded_by,omitempty"`
	Returned   bool           `json:"returned,omitempty"` // rejected by staff since the last submission
}

// HasFile reports whether an upload is attached.
func (d DocumentItem) HasFile() bool {
	return d.FileRef != "" || d.FileName != ""
}

// FeeStatuses holds the three fee tracks.
type FeeStatuses struct {
	Application FeeStatus `json:"application"`
	Interview   FeeStatus `json:"interview"`
	Tuition     FeeStatus `json:"tuition"`
}

// DefaultFeeStatuses returns all tracks pending.
func DefaultFeeStatuses() FeeStatuses {
	return FeeStatuses{Application: FeePending, Interview: FeePending, Tuition: FeePending}
}

// Get returns the status of one track.
func (f FeeStatuses) Get(track FeeTrack) FeeStatus {
	switch track {
	case TrackApplication:
		return f.Application
	case TrackInterview:
		return f.Interview
	case TrackTuition:
		return f.Tuition
	}
	return ""
}

// With returns a copy with one track replaced.
func (f FeeStatuses) With(track FeeTrack, status FeeStatus) FeeStatuses {
	switch track {
	case TrackApplication:
		f.Application = status
	case TrackInterview:
		f.Interview = status
	case TrackTuition:
		f.Tuition = status
	}
	return f
}

// PaymentRecord keeps the trusted confirmation that moved a track to PAID.
type PaymentRecord struct {
	Track     FeeTrack  `json:"track"`
	Reference string    `json:"reference"`
	Method    string    `json:"method,omitempty"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Source    string    `json:"source"` // "gateway" or the overriding staff id
}

// Answer is an exam answer: free text or a single option id in Text, or a
// set of option ids in Options. It serializes as a JSON string or array.
type Answer struct {
	Text    string
	Options []string
}

// TextAnswer builds a single-valued answer.
func TextAnswer(s string) Answer { return Answer{Text: s} }

// OptionsAnswer builds a multi-valued answer.
func OptionsAnswer(ids ...string) Answer {
	if ids == nil {
		ids = []string{}
	}
	return Answer{Options: ids}
}

// Empty reports whether nothing was answered.
func (a Answer) Empty() bool {
	if a.Options != nil {
		return len(a.Options) == 0
	}
	return strings.TrimSpace(a.Text) == ""
}

// Selected returns the chosen option ids.
func (a Answer) Selected() []string {
	if a.Options != nil {
		return a.Options
	}
	if a.Text == "" {
		return nil
	}
	return []string{a.Text}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Options != nil {
		return json.Marshal(a.Options)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return fmt.Errorf("invalid answer list: %w", err)
		}
		*a = OptionsAnswer(ids...)
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("answer must be a string or a list of option ids: %w", err)
	}
	*a = Answer{Text: s}
	return nil
}

// Evaluation is the staff interview evaluation.
type Evaluation struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

// Applicant is one candidate record.
type Applicant struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date,omitempty"`
	Age       int    `json:"age,omitempty"`
	Gender    Gender `json:"gender,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`

	CustomData map[string]FieldValue `json:"custom_data"`

	Status             ApplicationStatus `json:"status"`
	LastNotifiedStatus ApplicationStatus `json:"last_notified_status"`

	Educations  []EducationRecord       `json:"educations"`
	Documents   map[string]DocumentItem `json:"documents"`
	ExamAnswers map[string]Answer       `json:"exam_answers"`
	ExamScore   *float64                `json:"exam_score,omitempty"`
	ExamGrading map[string]float64      `json:"exam_grading"`

	IsESigned      bool       `json:"is_e_signed"`
	SignatureRef   string     `json:"signature_ref,omitempty"`
	ESignTimestamp *time.Time `json:"e_sign_timestamp,omitempty"`

	FeeStatuses FeeStatuses     `json:"fee_statuses"`
	Payments    []PaymentRecord `json:"payments,omitempty"`

	InterviewSlotID string      `json:"interview_slot_id,omitempty"`
	InterviewSlot   *time.Time  `json:"interview_slot,omitempty"`
	Evaluation      *Evaluation `json:"evaluation,omitempty"`

	FieldRejections map[string]string `json:"field_rejections"`

	RankingScore float64 `json:"ranking_score"`
	IsStarred    bool    `json:"is_starred"`
	ReviewerID   string  `json:"reviewer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewApplicant returns an empty DRAFT applicant with all maps initialised.
func NewApplicant(id string, now time.Time) Applicant {
	return Applicant{
		ID:                 id,
		Gender:             GenderOther,
		CustomData:         map[string]FieldValue{},
		Status:             StatusDraft,
		LastNotifiedStatus: StatusDraft,
		Educations:         []EducationRecord{},
		Documents:          map[string]DocumentItem{},
		ExamAnswers:        map[string]Answer{},
		ExamGrading:        map[string]float64{},
		FeeStatuses:        DefaultFeeStatuses(),
		FieldRejections:    map[string]string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Normalize fills nil collections and defaults that older records may lack.
func (a *Applicant) Normalize() {
	if a.CustomData == nil {
		a.CustomData = map[string]FieldValue{}
	}
	if a.Educations == nil {
		a.Educations = []EducationRecord{}
	}
	if a.Documents == nil {
		a.Documents = map[string]DocumentItem{}
	}
	if a.ExamAnswers == nil {
		a.ExamAnswers = map[string]Answer{}
	}
	if a.ExamGrading == nil {
		a.ExamGrading = map[string]float64{}
	}
	if a.FieldRejections == nil {
		a.FieldRejections = map[string]string{}
	}
	if a.FeeStatuses.Application == "" {
		a.FeeStatuses.Application = FeePending
	}
	if a.FeeStatuses.Interview == "" {
		a.FeeStatuses.Interview = FeePending
	}
	if a.FeeStatuses.Tuition == "" {
		a.FeeStatuses.Tuition = FeePending
	}
	if a.Status == "" {
		a.Status = StatusDraft
	}
	if a.LastNotifiedStatus == "" {
		a.LastNotifiedStatus = a.Status
	}
}

// Clone returns a deep copy so callers can compute a new snapshot without
// touching the one they read.
func (a Applicant) Clone() Applicant {
	out := a
	out.CustomData = make(map[string]FieldValue, len(a.CustomData))
	for k, v := range a.CustomData {
		out.CustomData[k] = v.clone()
	}
	out.Educations = append([]EducationRecord{}, a.Educations...)
	out.Documents = make(map[string]DocumentItem, len(a.Documents))
	for k, v := range a.Documents {
		out.Documents[k] = v
	}
	out.ExamAnswers = make(map[string]Answer, len(a.ExamAnswers))
	for k, v := range a.ExamAnswers {
		if v.Options != nil {
			v.Options = append([]string{}, v.Options...)
		}
		out.ExamAnswers[k] = v
	}
	out.ExamGrading = make(map[string]float64, len(a.ExamGrading))
	for k, v := range a.ExamGrading {
		out.ExamGrading[k] = v
	}
	out.FieldRejections = make(map[string]string, len(a.FieldRejections))
	for k, v := range a.FieldRejections {
		out.FieldRejections[k] = v
	}
	if a.Payments != nil {
		out.Payments = append([]PaymentRecord{}, a.Payments...)
	}
	if a.ExamScore != nil {
		score := *a.ExamScore
		out.ExamScore = &score
	}
	if a.ESignTimestamp != nil {
		ts := *a.ESignTimestamp
		out.ESignTimestamp = &ts
	}
	if a.InterviewSlot != nil {
		ts := *a.InterviewSlot
		out.InterviewSlot = &ts
	}
	if a.Evaluation != nil {
		ev := *a.Evaluation
		out.Evaluation = &ev
	}
	return out
}

// Education returns the record with the given id.
func (a Applicant) Education(id string) (EducationRecord, bool) {
	for _, e := range a.Educations {
		if e.ID == id {
			return e, true
		}
	}
	return EducationRecord{}, false
}

// DocumentsWithStatus returns the ids of documents in the given status.
func (a Applicant) DocumentsWithStatus(status DocumentStatus) []string {
	var ids []string
	for id, d := range a.Documents {
		if d.Status == status {
			ids = append(ids, id)
		}
	}
	return ids
}
