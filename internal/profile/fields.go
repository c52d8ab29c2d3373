package profile

import (
	"fmt"
	"strings"

	"github.com/jonathan/uniadmit/internal/types"
)

// Score bounds used when a score field has no range for the selected exam.
const (
	DefaultScoreMin = 0
	DefaultScoreMax = 100
)

// ValidateValue checks a custom field value against its configuration,
// dispatching on the field kind. Unfilled values are valid; use Filled for
// completeness.
func ValidateValue(field types.FieldConfig, v types.FieldValue) error {
	invalid := func(format string, args ...any) error {
		return &types.ValidationError{Field: field.ID, Message: fmt.Sprintf(format, args...)}
	}

	switch field.Kind {
	case types.FieldText, types.FieldStandard:
		return nil

	case types.FieldDropdown, types.FieldRadio:
		if v.Text != "" && !contains(field.Options, v.Text) {
			return invalid("%q is not one of the options", v.Text)
		}
		return nil

	case types.FieldCheckbox:
		seen := make(map[string]bool, len(v.Choices))
		for _, c := range v.Choices {
			if !contains(field.Options, c) {
				return invalid("%q is not one of the options", c)
			}
			if seen[c] {
				return invalid("%q selected twice", c)
			}
			seen[c] = true
		}
		return nil

	case types.FieldScore:
		if v.NoScore {
			if !field.AllowNoScore {
				return invalid("a score is required")
			}
			if v.Exam != "" || v.Score != nil {
				return invalid("no-score answers cannot carry an exam or score")
			}
			return nil
		}
		if v.Exam == "" {
			if v.Score != nil {
				return invalid("score given without an exam")
			}
			return nil
		}
		if !knownExam(field, v.Exam) {
			return invalid("unknown exam %q", v.Exam)
		}
		if v.Score == nil {
			return nil
		}
		lo, hi := float64(DefaultScoreMin), float64(DefaultScoreMax)
		if r, ok := field.RangeFor(v.Exam); ok {
			lo, hi = r.Min, r.Max
		}
		if *v.Score < lo || *v.Score > hi {
			return invalid("score must be between %g and %g", lo, hi)
		}
		return nil
	}
	return invalid("unknown field kind %q", field.Kind)
}

// Filled reports whether a value counts as answered for its field kind.
// Checkbox fields are always filled since no selection is a valid answer.
func Filled(field types.FieldConfig, v types.FieldValue) bool {
	switch field.Kind {
	case types.FieldCheckbox:
		return true
	case types.FieldScore:
		return v.NoScore || (v.Exam != "" && v.Score != nil)
	default:
		return strings.TrimSpace(v.Text) != ""
	}
}

func knownExam(field types.FieldConfig, exam string) bool {
	if len(field.Options) == 0 && len(field.ScoreRanges) == 0 {
		return true
	}
	if contains(field.Options, exam) {
		return true
	}
	_, ok := field.RangeFor(exam)
	return ok
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func findField(fields []types.FieldConfig, id string) (types.FieldConfig, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return types.FieldConfig{}, false
}

// RequiredRecommendations returns how many recommendation entries the catalog
// asks for, or 0 when the field is hidden or absent.
func RequiredRecommendations(fields []types.FieldConfig) int {
	f, ok := findField(fields, types.FieldIDRecommendations)
	if !ok || f.IsHidden {
		return 0
	}
	if f.ItemCount > 0 {
		return f.ItemCount
	}
	return types.DefaultRecommendationCount
}

// Missing lists the profile fields that keep the profile from being complete.
func Missing(a types.Applicant, fields []types.FieldConfig) []string {
	var missing []string
	if strings.TrimSpace(a.FullName) == "" {
		missing = append(missing, types.FieldIDFullName)
	}
	if a.Age <= 0 {
		missing = append(missing, types.FieldIDAge)
	}
	if len(a.Educations) == 0 {
		missing = append(missing, types.FieldIDEducations)
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, types.FieldIDPhone)
	}
	if strings.TrimSpace(a.Address) == "" {
		missing = append(missing, types.FieldIDAddress)
	}

	if need := RequiredRecommendations(fields); need > 0 {
		items := a.CustomData[types.FieldIDRecommendations].Items
		ok := len(items) >= need
		for _, item := range items {
			if strings.TrimSpace(item) == "" {
				ok = false
			}
		}
		if !ok {
			missing = append(missing, types.FieldIDRecommendations)
		}
	}

	for _, f := range types.SortFieldConfigs(fields) {
		if f.IsStandard || f.IsHidden || f.Kind == types.FieldStandard {
			continue
		}
		v := a.CustomData[f.ID]
		if !Filled(f, v) || ValidateValue(f, v) != nil {
			missing = append(missing, f.ID)
		}
	}
	return missing
}

// Complete reports whether the profile satisfies the submit guard.
func Complete(a types.Applicant, fields []types.FieldConfig) bool {
	return len(Missing(a, fields)) == 0
}

// ApplyUpdate writes the non-nil fields of u into a. Custom values must
// reference a visible custom field and pass ValidateValue.
func ApplyUpdate(a *types.Applicant, u types.ProfileUpdate, fields []types.FieldConfig) error {
	for id, v := range u.CustomData {
		f, ok := findField(fields, id)
		if !ok || f.IsStandard || f.Kind == types.FieldStandard {
			return types.NewNotFound("field", id)
		}
		if f.IsHidden {
			return &types.ValidationError{Field: id, Message: "field is hidden"}
		}
		if err := ValidateValue(f, v); err != nil {
			return err
		}
	}

	if u.FullName != nil {
		a.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.BirthDate != nil {
		a.BirthDate = *u.BirthDate
	}
	if u.Age != nil {
		a.Age = *u.Age
	}
	if u.Gender != nil {
		a.Gender = *u.Gender
	}
	if u.Email != nil {
		a.Email = strings.TrimSpace(*u.Email)
	}
	if u.Phone != nil {
		a.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Address != nil {
		a.Address = *u.Address
	}
	if u.Recommendations != nil {
		a.CustomData[types.FieldIDRecommendations] = types.FieldValue{
			Items: append([]string{}, u.Recommendations...),
		}
	}
	for id, v := range u.CustomData {
		a.CustomData[id] = v
	}
	return nil
}
