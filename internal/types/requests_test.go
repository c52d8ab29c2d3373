//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotInput_Validate(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     SlotInput
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid",
			input: SlotInput{Start: start, End: start.Add(time.Hour), Type: InterviewOnsite, Capacity: 5},
		},
		{
			name:      "zero capacity",
			input:     SlotInput{Start: start, End: start.Add(time.Hour), Type: InterviewOnline, Capacity: 0},
			wantErr:   true,
			wantField: "capacity",
		},
		{
			name:      "end before start",
			input:     SlotInput{Start: start, End: start.Add(-time.Hour), Type: InterviewOnline, Capacity: 1},
			wantErr:   true,
			wantField: "end",
		},
		{
			name:      "unknown type",
			input:     SlotInput{Start: start, End: start.Add(time.Hour), Type: "Phone", Capacity: 1},
			wantErr:   true,
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestReviewDocumentRequest_RejectNeedsNote(t *testing.T) {
	assert.NoError(t, (&ReviewDocumentRequest{Approve: true}).Validate())
	assert.True(t, IsValidation((&ReviewDocumentRequest{Approve: false}).Validate()))
	assert.NoError(t, (&ReviewDocumentRequest{Approve: false, Note: "blurry"}).Validate())
}

func TestDecisionRequest_Validate(t *testing.T) {
	assert.NoError(t, (&DecisionRequest{Outcome: DecisionPass}).Validate())
	assert.Error(t, (&DecisionRequest{Outcome: "maybe"}).Validate())
}

func TestProfileUpdate_FieldIDs(t *testing.T) {
	name := "Somchai"
	phone := "0812345678"
	u := ProfileUpdate{
		FullName:   &name,
		Phone:      &phone,
		CustomData: map[string]FieldValue{"field_ielts": {Exam: "IELTS"}},
	}
	assert.ElementsMatch(t, []string{FieldIDFullName, FieldIDPhone, "field_ielts"}, u.FieldIDs())
}

func TestApplicantFilter_Match(t *testing.T) {
	a := NewApplicant("app_42", time.Now())
	a.FullName = "Nattaya Srisuk"
	a.Status = StatusSubmitted

	assert.True(t, ApplicantFilter{}.Match(a))
	assert.True(t, ApplicantFilter{Query: "srisuk"}.Match(a))
	assert.False(t, ApplicantFilter{Status: StatusDraft}.Match(a))
	assert.False(t, ApplicantFilter{Starred: true}.Match(a))
}

func TestErrorHelpers(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), &CapacityExceeded{SlotID: "s1", Capacity: 1, Booked: 1})
	assert.True(t, IsCapacityExceeded(wrapped))
	assert.False(t, IsGuardViolation(wrapped))
	assert.True(t, IsNotFound(NewNotFound("slot", "s9")))
	assert.EqualError(t, NewGuardViolation("submit", "signature missing"), "submit: signature missing")
}
