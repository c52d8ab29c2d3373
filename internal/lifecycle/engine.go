// Package lifecycle is the admission state machine. Every transition is a
// pure function from an applicant snapshot to a new snapshot; a failed guard
// returns a *types.GuardViolation and the input unchanged.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/uniadmit/internal/documents"
	"github.com/jonathan/uniadmit/internal/exam"
	"github.com/jonathan/uniadmit/internal/fees"
	"github.com/jonathan/uniadmit/internal/profile"
	"github.com/jonathan/uniadmit/internal/types"
)

// Catalog is the configuration the guards read.
type Catalog struct {
	Fields    []types.FieldConfig
	Documents []types.DocumentConfig
	Questions []types.ExamQuestion
	Payment   types.PaymentConfig
}

// Engine executes transitions against an injected catalog.
type Engine struct {
	catalog Catalog
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over the given catalog.
func New(catalog Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

func expect(a types.Applicant, transition string, allowed ...types.ApplicationStatus) error {
	for _, s := range allowed {
		if a.Status == s {
			return nil
		}
	}
	return types.NewGuardViolation(transition, fmt.Sprintf("not allowed from %s", a.Status))
}

func (e *Engine) moveTo(a types.Applicant, to types.ApplicationStatus, notify bool) types.Applicant {
	out := a.Clone()
	out.Status = to
	if notify {
		out.LastNotifiedStatus = to
	}
	out.UpdatedAt = e.now()
	return out
}

// SubmitBlockers lists every unmet submit condition for a DRAFT applicant.
func (e *Engine) SubmitBlockers(a types.Applicant) []string {
	var blockers []string
	if missing := profile.Missing(a, e.catalog.Fields); len(missing) > 0 {
		blockers = append(blockers, "profile incomplete: "+strings.Join(missing, ", "))
	}
	if outstanding := documents.Outstanding(a); len(outstanding) > 0 {
		blockers = append(blockers, "documents incomplete: "+strings.Join(outstanding, ", "))
	}
	if open := exam.Unanswered(e.catalog.Questions, a.ExamAnswers); len(open) > 0 {
		blockers = append(blockers, "exam incomplete: "+strings.Join(open, ", "))
	}
	if !a.IsESigned {
		blockers = append(blockers, "signature missing")
	}
	if !fees.ApplicationFeePaid(a, e.catalog.Payment) {
		blockers = append(blockers, "application fee unpaid")
	}
	return blockers
}

// Submit moves DRAFT to SUBMITTED, or resubmits a DOCS_REJECTED application.
// A first submission records the objective exam score. A resubmission keeps
// every document status, closes the returns and clears the field rejections.
func (e *Engine) Submit(a types.Applicant) (types.Applicant, error) {
	switch a.Status {
	case types.StatusDraft:
		if blockers := e.SubmitBlockers(a); len(blockers) > 0 {
			return a, types.NewGuardViolation("submit", blockers[0])
		}
		out := e.moveTo(a, types.StatusSubmitted, true)
		score := exam.AutoScore(e.catalog.Questions, a.ExamAnswers)
		out.ExamScore = &score
		return out, nil

	case types.StatusDocsRejected:
		if rejected := a.DocumentsWithStatus(types.DocRejected); len(rejected) > 0 {
			return a, types.NewGuardViolation("resubmit", fmt.Sprintf("%d document(s) still rejected", len(rejected)))
		}
		if outstanding := documents.Outstanding(a); len(outstanding) > 0 {
			return a, types.NewGuardViolation("resubmit", "documents incomplete: "+strings.Join(outstanding, ", "))
		}
		out := documents.CloseReturns(e.moveTo(a, types.StatusSubmitted, true))
		out.FieldRejections = map[string]string{}
		return out, nil
	}
	return a, expect(a, "submit", types.StatusDraft, types.StatusDocsRejected)
}

// CompleteReview closes document review. Any rejected document or flagged
// field returns the application; otherwise every document must be approved.
func (e *Engine) CompleteReview(a types.Applicant) (types.Applicant, error) {
	if err := expect(a, "complete review", types.StatusSubmitted); err != nil {
		return a, err
	}
	if len(a.DocumentsWithStatus(types.DocRejected)) > 0 || len(a.FieldRejections) > 0 {
		return e.moveTo(a, types.StatusDocsRejected, false), nil
	}
	pending := 0
	for _, d := range a.Documents {
		if d.Status != types.DocApproved {
			pending++
		}
	}
	if pending > 0 {
		return a, types.NewGuardViolation("complete review", fmt.Sprintf("%d document(s) awaiting review", pending))
	}
	return e.moveTo(a, types.StatusDocsApproved, false), nil
}

// ReadyForInterview moves DOCS_APPROVED to INTERVIEW_READY once the interview fee is settled.
func (e *Engine) ReadyForInterview(a types.Applicant) (types.Applicant, error) {
	if err := expect(a, "interview ready", types.StatusDocsApproved); err != nil {
		return a, err
	}
	if !fees.InterviewFeePaid(a, e.catalog.Payment) {
		return a, types.NewGuardViolation("interview ready", "interview fee unpaid")
	}
	return e.moveTo(a, types.StatusInterviewReady, true), nil
}

// Book records a slot the allocator already reserved. From DOCS_APPROVED it
// first passes through INTERVIEW_READY, so the interview fee guard still
// applies. A booked applicant may rebook.
func (e *Engine) Book(a types.Applicant, slot types.InterviewSlot) (types.Applicant, error) {
	if a.Status == types.StatusDocsApproved {
		ready, err := e.ReadyForInterview(a)
		if err != nil {
			return a, err
		}
		a = ready
	}
	if err := expect(a, "book interview", types.StatusInterviewReady, types.StatusInterviewBooked); err != nil {
		return a, err
	}
	out := e.moveTo(a, types.StatusInterviewBooked, true)
	out.InterviewSlotID = slot.ID
	start := slot.Start
	out.InterviewSlot = &start
	return out, nil
}

// Transfer moves a booked applicant to another slot on staff authority.
func (e *Engine) Transfer(a types.Applicant, slot types.InterviewSlot) (types.Applicant, error) {
	if err := expect(a, "transfer interview", types.StatusInterviewBooked); err != nil {
		return a, err
	}
	out := a.Clone()
	out.InterviewSlotID = slot.ID
	start := slot.Start
	out.InterviewSlot = &start
	out.UpdatedAt = e.now()
	return out, nil
}

// Decide records the final staff decision. Pass is allowed from the approved
// and interview stages; fail additionally from document review.
func (e *Engine) Decide(a types.Applicant, outcome string, eval *types.Evaluation) (types.Applicant, error) {
	var to types.ApplicationStatus
	switch outcome {
	case types.DecisionPass:
		if err := expect(a, "decide pass",
			types.StatusDocsApproved, types.StatusInterviewReady, types.StatusInterviewBooked); err != nil {
			return a, err
		}
		to = types.StatusPassed
	case types.DecisionFail:
		if err := expect(a, "decide fail",
			types.StatusSubmitted, types.StatusDocsRejected,
			types.StatusDocsApproved, types.StatusInterviewReady, types.StatusInterviewBooked); err != nil {
			return a, err
		}
		to = types.StatusFailed
	default:
		return a, &types.ValidationError{Field: "outcome", Message: "must be pass or fail"}
	}
	out := e.moveTo(a, to, false)
	if eval != nil {
		ev := *eval
		out.Evaluation = &ev
	}
	return out, nil
}

// Enroll moves PASSED to ENROLLED once tuition is settled.
func (e *Engine) Enroll(a types.Applicant) (types.Applicant, error) {
	if err := expect(a, "enroll", types.StatusPassed); err != nil {
		return a, err
	}
	if !fees.TuitionFeePaid(a, e.catalog.Payment) {
		return a, types.NewGuardViolation("enroll", "tuition fee unpaid")
	}
	return e.moveTo(a, types.StatusEnrolled, true), nil
}

// AfterPayment applies the transition a confirmed payment unlocks, if any.
// It never fails: a payment outside its stage is simply recorded.
func (e *Engine) AfterPayment(a types.Applicant, track types.FeeTrack) types.Applicant {
	switch {
	case track == types.TrackInterview && a.Status == types.StatusDocsApproved:
		if out, err := e.ReadyForInterview(a); err == nil {
			return out
		}
	case track == types.TrackTuition && a.Status == types.StatusPassed:
		if out, err := e.Enroll(a); err == nil {
			return out
		}
	}
	return a
}

// Publish makes the current status visible to the applicant.
func Publish(a types.Applicant) types.Applicant {
	if a.LastNotifiedStatus == a.Status {
		return a
	}
	out := a.Clone()
	out.LastNotifiedStatus = a.Status
	return out
}

// Sign records the applicant's e-signature.
func (e *Engine) Sign(a types.Applicant, ref string) types.Applicant {
	out := a.Clone()
	ts := e.now()
	out.IsESigned = true
	out.SignatureRef = ref
	out.ESignTimestamp = &ts
	return out
}
