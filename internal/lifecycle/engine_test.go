package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/uniadmit/internal/documents"
	"github.com/jonathan/uniadmit/internal/fees"
	"github.com/jonathan/uniadmit/internal/types"
)

var fixed = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func testCatalog() Catalog {
	return Catalog{
		Fields: []types.FieldConfig{
			{ID: types.FieldIDRecommendations, Kind: types.FieldStandard, IsStandard: true, ItemCount: 1},
		},
		Documents: []types.DocumentConfig{
			{ID: "pic", Label: "Photo", Order: 0},
			{ID: "idc", Label: "ID Card", Order: 1},
			{ID: "edu", Label: "Transcript", Order: 2, LinksEducation: true},
		},
		Questions: []types.ExamQuestion{
			{
				ID: "q1", SuiteID: "s1", Text: "Pick A", Type: types.QuestionSingle, Score: 5, IsGraded: true,
				Options: []types.QuestionOption{{ID: "A", IsCorrect: true}, {ID: "B"}, {ID: "C"}},
			},
			{ID: "q2", SuiteID: "s1", Text: "Essay", Type: types.QuestionEssay, Score: 10, IsGraded: true},
		},
		Payment: types.PaymentConfig{
			RequireApplicationFee: true,
			RequireInterviewFee:   true,
			RequireTuitionFee:     true,
		},
	}
}

func newEngine() *Engine {
	return New(testCatalog(), WithClock(func() time.Time { return fixed }))
}

// readyDraft returns a DRAFT applicant that satisfies every submit guard.
func readyDraft(t *testing.T, e *Engine) types.Applicant {
	t.Helper()
	a := types.NewApplicant("app_1", fixed)
	a.FullName = "Somchai Jaidee"
	a.Age = 21
	a.Phone = "0812345678"
	a.Address = "Chiang Mai"
	a.Educations = []types.EducationRecord{{ID: "e1", Level: "bachelor"}}
	a.CustomData[types.FieldIDRecommendations] = types.FieldValue{Items: []string{"Dr. A"}}
	a = documents.Reconcile(a, e.Catalog().Documents)
	require.Len(t, a.Documents, 3)
	for id := range a.Documents {
		var err error
		a, err = documents.Upload(a, id, types.UploadRequest{FileRef: "blob://" + id})
		require.NoError(t, err)
	}
	a.ExamAnswers["q1"] = types.TextAnswer("A")
	a.ExamAnswers["q2"] = types.TextAnswer("Because.")
	a = e.Sign(a, "sig://1")
	a = fees.Confirm(a, types.TrackApplication, types.PaymentConfirmation{Reference: "KP-1"}, fixed)
	return a
}

func TestSubmit_FromDraft(t *testing.T) {
	e := newEngine()
	out, err := e.Submit(readyDraft(t, e))
	require.NoError(t, err)

	assert.Equal(t, types.StatusSubmitted, out.Status)
	assert.Equal(t, types.StatusSubmitted, out.LastNotifiedStatus)
	require.NotNil(t, out.ExamScore)
	assert.Equal(t, 5.0, *out.ExamScore)
}

func TestSubmit_Guards(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name      string
		mutate    func(a *types.Applicant)
		condition string
	}{
		{
			name:      "pending document",
			mutate:    func(a *types.Applicant) { d := a.Documents["doc_pic"]; d.Status = types.DocPending; a.Documents["doc_pic"] = d },
			condition: "documents incomplete: doc_pic",
		},
		{
			name:      "missing phone",
			mutate:    func(a *types.Applicant) { a.Phone = "" },
			condition: "profile incomplete: phone",
		},
		{
			name:      "unanswered question",
			mutate:    func(a *types.Applicant) { a.ExamAnswers["q2"] = types.TextAnswer("") },
			condition: "exam incomplete: q2",
		},
		{
			name:      "unsigned",
			mutate:    func(a *types.Applicant) { a.IsESigned = false },
			condition: "signature missing",
		},
		{
			name:      "fee unpaid",
			mutate:    func(a *types.Applicant) { a.FeeStatuses.Application = types.FeePending },
			condition: "application fee unpaid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := readyDraft(t, e)
			tt.mutate(&a)
			out, err := e.Submit(a)

			var gv *types.GuardViolation
			require.ErrorAs(t, err, &gv)
			assert.Equal(t, tt.condition, gv.Condition)
			assert.Equal(t, types.StatusDraft, out.Status)
		})
	}
}

func TestSubmit_FeeNotRequired(t *testing.T) {
	cat := testCatalog()
	cat.Payment.RequireApplicationFee = false
	e := New(cat)
	a := readyDraft(t, e)
	a.FeeStatuses.Application = types.FeePending

	out, err := e.Submit(a)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSubmitted, out.Status)
}

func TestReviewAndResubmitScenario(t *testing.T) {
	e := newEngine()
	a, err := e.Submit(readyDraft(t, e))
	require.NoError(t, err)

	a, err = documents.Review(a, "doc_pic", true, "")
	require.NoError(t, err)
	a, err = documents.Review(a, "doc_idc", true, "")
	require.NoError(t, err)
	a, err = documents.Review(a, documents.CertificateID("e1"), false, "blurry")
	require.NoError(t, err)

	a, err = e.CompleteReview(a)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDocsRejected, a.Status)
	assert.Equal(t, types.StatusSubmitted, a.LastNotifiedStatus)

	_, err = e.Submit(a)
	assert.True(t, types.IsGuardViolation(err))

	require.NoError(t, CheckEdit(a, Edit{Kind: EditDocument, DocumentID: documents.CertificateID("e1")}))
	a, err = documents.Upload(a, documents.CertificateID("e1"), types.UploadRequest{FileRef: "blob://sharp"})
	require.NoError(t, err)

	a, err = e.Submit(a)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSubmitted, a.Status)
	assert.False(t, a.Documents[documents.CertificateID("e1")].Returned)
	assert.Equal(t, types.DocApproved, a.Documents["doc_pic"].Status)
	assert.Equal(t, types.DocApproved, a.Documents["doc_idc"].Status)
	assert.Equal(t, types.DocUploaded, a.Documents[documents.CertificateID("e1")].Status)
}

func TestCompleteReview(t *testing.T) {
	e := newEngine()
	a, err := e.Submit(readyDraft(t, e))
	require.NoError(t, err)

	_, err = e.CompleteReview(a)
	assert.True(t, types.IsGuardViolation(err), "unreviewed documents block the review")

	flagged := a.Clone()
	flagged.FieldRejections[types.FieldIDPhone] = "wrong number"
	out, err := e.CompleteReview(flagged)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDocsRejected, out.Status)

	for id := range a.Documents {
		a, err = documents.Review(a, id, true, "")
		require.NoError(t, err)
	}
	out, err = e.CompleteReview(a)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDocsApproved, out.Status)
}

func approved(t *testing.T, e *Engine) types.Applicant {
	t.Helper()
	a, err := e.Submit(readyDraft(t, e))
	require.NoError(t, err)
	for id := range a.Documents {
		a, err = documents.Review(a, id, true, "")
		require.NoError(t, err)
	}
	a, err = e.CompleteReview(a)
	require.NoError(t, err)
	return a
}

func TestInterviewPath(t *testing.T) {
	e := newEngine()
	a := approved(t, e)
	slot := types.InterviewSlot{ID: "slot_1", Start: fixed.Add(48 * time.Hour), Capacity: 3}

	_, err := e.Book(a, slot)
	var gv *types.GuardViolation
	require.ErrorAs(t, err, &gv)
	assert.Equal(t, "interview fee unpaid", gv.Condition)

	a = fees.Confirm(a, types.TrackInterview, types.PaymentConfirmation{Reference: "QR-1"}, fixed)
	a = e.AfterPayment(a, types.TrackInterview)
	assert.Equal(t, types.StatusInterviewReady, a.Status)

	a, err = e.Book(a, slot)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInterviewBooked, a.Status)
	assert.Equal(t, "slot_1", a.InterviewSlotID)
	assert.Equal(t, slot.Start, *a.InterviewSlot)

	other := types.InterviewSlot{ID: "slot_2", Start: fixed.Add(72 * time.Hour), Capacity: 3}
	a, err = e.Transfer(a, other)
	require.NoError(t, err)
	assert.Equal(t, "slot_2", a.InterviewSlotID)

	a, err = e.Decide(a, types.DecisionPass, &types.Evaluation{Score: 9, Comment: "Great"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusPassed, a.Status)
	assert.Equal(t, types.StatusInterviewBooked, a.LastNotifiedStatus)

	_, err = e.Enroll(a)
	assert.True(t, types.IsGuardViolation(err))

	a = fees.Confirm(a, types.TrackTuition, types.PaymentConfirmation{Reference: "KP-9"}, fixed)
	a = e.AfterPayment(a, types.TrackTuition)
	assert.Equal(t, types.StatusEnrolled, a.Status)
	assert.True(t, a.Status.Terminal())

	_, err = e.Decide(a, types.DecisionFail, nil)
	assert.True(t, types.IsGuardViolation(err))
}

func TestBook_WithoutInterviewFeeRequirement(t *testing.T) {
	cat := testCatalog()
	cat.Payment.RequireInterviewFee = false
	e := New(cat)
	a := approved(t, e)

	a, err := e.Book(a, types.InterviewSlot{ID: "s", Start: fixed, Capacity: 1})
	require.NoError(t, err)
	assert.Equal(t, types.StatusInterviewBooked, a.Status)
}

func TestDecide(t *testing.T) {
	e := newEngine()
	submitted, err := e.Submit(readyDraft(t, e))
	require.NoError(t, err)

	_, err = e.Decide(submitted, types.DecisionPass, nil)
	assert.True(t, types.IsGuardViolation(err))

	failed, err := e.Decide(submitted, types.DecisionFail, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, failed.Status)

	_, err = e.Decide(submitted, "maybe", nil)
	assert.True(t, types.IsValidation(err))
}

func TestPublish(t *testing.T) {
	a := types.NewApplicant("x", fixed)
	a.Status = types.StatusFailed
	out := Publish(a)
	assert.Equal(t, types.StatusFailed, out.LastNotifiedStatus)
	assert.Equal(t, types.StatusDraft, a.LastNotifiedStatus)
}

func TestCheckEdit(t *testing.T) {
	rejected := types.NewApplicant("x", fixed)
	rejected.Status = types.StatusDocsRejected
	rejected.Documents["d1"] = types.DocumentItem{ID: "d1", Status: types.DocApproved}
	rejected.Documents["d2"] = types.DocumentItem{ID: "d2", Status: types.DocRejected, Returned: true}
	rejected.Documents["d3"] = types.DocumentItem{ID: "d3", Status: types.DocUploaded, FileRef: "blob://3"}
	rejected.Documents["d4"] = types.DocumentItem{ID: "d4", Status: types.DocUploaded, FileRef: "blob://4", Returned: true}
	rejected.Documents["d5"] = types.DocumentItem{ID: "d5", Status: types.DocPending}
	rejected.FieldRejections[types.FieldIDPhone] = "unreachable"

	submitted := rejected.Clone()
	submitted.Status = types.StatusSubmitted

	tests := []struct {
		name    string
		a       types.Applicant
		edit    Edit
		wantErr bool
	}{
		{name: "draft anything", a: types.NewApplicant("d", fixed), edit: Edit{Kind: EditExam}},
		{name: "rejected doc", a: rejected, edit: Edit{Kind: EditDocument, DocumentID: "d2"}},
		{name: "approved doc locked", a: rejected, edit: Edit{Kind: EditDocument, DocumentID: "d1"}, wantErr: true},
		{name: "unreviewed upload locked", a: rejected, edit: Edit{Kind: EditDocument, DocumentID: "d3"}, wantErr: true},
		{name: "returned doc re-uploaded", a: rejected, edit: Edit{Kind: EditDocument, DocumentID: "d4"}},
		{name: "item added since return", a: rejected, edit: Edit{Kind: EditDocument, DocumentID: "d5"}},
		{name: "flagged field", a: rejected, edit: Edit{Kind: EditProfile, FieldIDs: []string{types.FieldIDPhone}}},
		{name: "unflagged field", a: rejected, edit: Edit{Kind: EditProfile, FieldIDs: []string{types.FieldIDPhone, types.FieldIDAddress}}, wantErr: true},
		{name: "education not flagged", a: rejected, edit: Edit{Kind: EditEducation}, wantErr: true},
		{name: "exam locked", a: rejected, edit: Edit{Kind: EditExam}, wantErr: true},
		{name: "signature locked", a: rejected, edit: Edit{Kind: EditSignature}, wantErr: true},
		{name: "submitted read only", a: submitted, edit: Edit{Kind: EditDocument, DocumentID: "d2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEdit(tt.a, tt.edit)
			if tt.wantErr {
				assert.True(t, types.IsGuardViolation(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
