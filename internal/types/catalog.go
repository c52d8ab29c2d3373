package types

import "sort"

// DocumentConfig is one entry of the admin-defined document catalog.
type DocumentConfig struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	IsStandard bool   `json:"is_standard"`
	IsHidden   bool   `json:"is_hidden"`
	Order      int    `json:"order"`
	// LinksEducation marks the entry that expands into one certificate per
	// education record instead of a single document.
	LinksEducation bool `json:"links_education,omitempty"`
}

// FieldKind is the tag of the FieldConfig variant.
type FieldKind string

const (
	FieldStandard FieldKind = "standard"
	FieldText     FieldKind = "text"
	FieldDropdown FieldKind = "dropdown"
	FieldRadio    FieldKind = "radio"
	FieldCheckbox FieldKind = "checkbox"
	FieldScore    FieldKind = "score"
)

// Valid reports whether k is a known field kind.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldStandard, FieldText, FieldDropdown, FieldRadio, FieldCheckbox, FieldScore:
		return true
	}
	return false
}

// Standard profile field ids.
const (
	FieldIDFullName        = "fullName"
	FieldIDBirthDate       = "birthDate"
	FieldIDAge             = "age"
	FieldIDGender          = "gender"
	FieldIDPhone           = "phone"
	FieldIDEmail           = "email"
	FieldIDAddress         = "address"
	FieldIDEducations      = "educations"
	FieldIDRecommendations = "recommendations"
)

// DefaultRecommendationCount applies when the recommendations field has no item count.
const DefaultRecommendationCount = 3

// ScoreRange bounds the score accepted for one named exam (e.g. IELTS 0-9).
type ScoreRange struct {
	Exam string  `json:"exam"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// FieldConfig is one entry of the profile field catalog. Kind selects which
// of the type-specific payload fields are meaningful.
type FieldConfig struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	IsStandard  bool      `json:"is_standard"`
	IsHidden    bool      `json:"is_hidden"`
	Order       int       `json:"order"`
	Description string    `json:"description,omitempty"`

	// Dropdown, Radio, Checkbox; Score uses it for the exam picker.
	Options []string `json:"options,omitempty"`
	// Score
	ScoreRanges  []ScoreRange `json:"score_ranges,omitempty"`
	AllowNoScore bool         `json:"allow_no_score,omitempty"`
	// Standard list fields such as recommendations
	ItemCount int `json:"item_count,omitempty"`
}

// RangeFor returns the configured range for an exam name.
func (f FieldConfig) RangeFor(exam string) (ScoreRange, bool) {
	for _, r := range f.ScoreRanges {
		if r.Exam == exam {
			return r, true
		}
	}
	return ScoreRange{}, false
}

// FieldValue is the applicant-supplied value of a custom or list field.
type FieldValue struct {
	Text    string   `json:"text,omitempty"`
	Choices []string `json:"choices,omitempty"`
	Exam    string   `json:"exam,omitempty"`
	Score   *float64 `json:"score,omitempty"`
	NoScore bool     `json:"no_score,omitempty"`
	Items   []string `json:"items,omitempty"`
}

func (v FieldValue) clone() FieldValue {
	if v.Choices != nil {
		v.Choices = append([]string{}, v.Choices...)
	}
	if v.Items != nil {
		v.Items = append([]string{}, v.Items...)
	}
	if v.Score != nil {
		s := *v.Score
		v.Score = &s
	}
	return v
}

// PaymentConfig is the catalog-level fee configuration.
type PaymentConfig struct {
	KPlus                 bool    `json:"kplus"`
	QRCode                bool    `json:"qrcode"`
	RequireApplicationFee bool    `json:"require_application_fee"`
	RequireInterviewFee   bool    `json:"require_interview_fee"`
	RequireTuitionFee     bool    `json:"require_tuition_fee"`
	ApplicationFee        float64 `json:"application_fee"`
	InterviewFee          float64 `json:"interview_fee"`
	TuitionFee            float64 `json:"tuition_fee"`
	Currency              string  `json:"currency"`
}

// Required reports whether the given track must be paid.
func (p PaymentConfig) Required(track FeeTrack) bool {
	switch track {
	case TrackApplication:
		return p.RequireApplicationFee
	case TrackInterview:
		return p.RequireInterviewFee
	case TrackTuition:
		return p.RequireTuitionFee
	}
	return false
}

// Amount returns the configured amount for a track.
func (p PaymentConfig) Amount(track FeeTrack) float64 {
	switch track {
	case TrackApplication:
		return p.ApplicationFee
	case TrackInterview:
		return p.InterviewFee
	case TrackTuition:
		return p.TuitionFee
	}
	return 0
}

// SortDocumentConfigs orders a document catalog by Order, keeping ties stable.
func SortDocumentConfigs(configs []DocumentConfig) []DocumentConfig {
	out := append([]DocumentConfig{}, configs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// SortFieldConfigs orders a field catalog by Order, keeping ties stable.
func SortFieldConfigs(configs []FieldConfig) []FieldConfig {
	out := append([]FieldConfig{}, configs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Renumber rewrites Order to the slice index, the way a saved catalog is stored.
func Renumber[T DocumentConfig | FieldConfig](configs []T) []T {
	out := append([]T{}, configs...)
	for i := range out {
		switch c := any(&out[i]).(type) {
		case *DocumentConfig:
			c.Order = i
		case *FieldConfig:
			c.Order = i
		}
	}
	return out
}
