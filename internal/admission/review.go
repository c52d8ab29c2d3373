package admission

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/uniadmit/internal/documents"
	"github.com/jonathan/uniadmit/internal/exam"
	"github.com/jonathan/uniadmit/internal/fees"
	"github.com/jonathan/uniadmit/internal/lifecycle"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

func inReview(a types.Applicant, action string) error {
	if a.Status != types.StatusSubmitted {
		return types.NewGuardViolation(action, fmt.Sprintf("application is %s, not under review", a.Status))
	}
	return nil
}

// ReviewDocument approves or rejects one document of a submitted application.
func (s *Service) ReviewDocument(ctx context.Context, staffID, id, docID string, req types.ReviewDocumentRequest) (types.Applicant, error) {
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := inReview(a, "review document"); err != nil {
			return a, err
		}
		out, err := documents.Review(a, docID, req.Approve, req.Note)
		if err != nil {
			return a, err
		}
		out.ReviewerID = staffID
		return out, nil
	})
}

// AttachDocument adds a staff-supplied document, approved on arrival.
func (s *Service) AttachDocument(ctx context.Context, staffID, id string, req types.AttachDocumentRequest) (types.Applicant, error) {
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		return documents.Attach(a, s.newID(), staffID, req), nil
	})
}

// SetFieldRejection flags a profile field for the applicant to correct.
func (s *Service) SetFieldRejection(ctx context.Context, id string, req types.FieldRejectionRequest) (types.Applicant, error) {
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := inReview(a, "reject field"); err != nil {
			return a, err
		}
		a.FieldRejections[req.FieldID] = req.Reason
		return a, nil
	})
}

// ClearFieldRejection removes a field flag.
func (s *Service) ClearFieldRejection(ctx context.Context, id, fieldID string) (types.Applicant, error) {
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := inReview(a, "clear field rejection"); err != nil {
			return a, err
		}
		if _, ok := a.FieldRejections[fieldID]; !ok {
			return a, types.NewNotFound("field rejection", fieldID)
		}
		delete(a.FieldRejections, fieldID)
		return a, nil
	})
}

// CompleteReview closes document review.
func (s *Service) CompleteReview(ctx context.Context, id string) (types.Applicant, error) {
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		return s.engine(lifecycle.Catalog{}).CompleteReview(a)
	})
}

// GradeEssay records a manual essay score. Out-of-range scores are rejected.
func (s *Service) GradeEssay(ctx context.Context, id, questionID string, score float64) (types.Applicant, error) {
	questions, _, err := store.Load[types.ExamQuestion](ctx, s.store, store.KeyExamQuestions)
	if err != nil {
		return types.Applicant{}, err
	}
	q, err := exam.Find(questions, questionID)
	if err != nil {
		return types.Applicant{}, err
	}
	if err := exam.ValidateGrade(q, score); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if a.Status == types.StatusDraft {
			return a, types.NewGuardViolation("grade essay", "application not submitted")
		}
		a.ExamGrading[questionID] = score
		return a, nil
	})
}

// ExamBreakdown returns the objective, essay and total exam score.
func (s *Service) ExamBreakdown(ctx context.Context, id string) (exam.Breakdown, error) {
	a, err := s.GetApplicant(ctx, id)
	if err != nil {
		return exam.Breakdown{}, err
	}
	questions, _, err := store.Load[types.ExamQuestion](ctx, s.store, store.KeyExamQuestions)
	if err != nil {
		return exam.Breakdown{}, err
	}
	return exam.Total(questions, a.ExamAnswers, a.ExamGrading), nil
}

// OverrideFee sets a fee track on staff authority. Marking a track PAID
// applies the transition it unlocks.
func (s *Service) OverrideFee(ctx context.Context, staffID, id string, track types.FeeTrack, req types.FeeOverrideRequest) (types.Applicant, error) {
	if _, err := types.ParseFeeTrack(string(track)); err != nil {
		return types.Applicant{}, err
	}
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		out, err := fees.Override(a, track, req.Status, staffID, s.now())
		if err != nil {
			return a, err
		}
		log.Printf("[admission] applicant %s: %s fee set to %s by %s", id, track, req.Status, staffID)
		if req.Status == types.FeePaid {
			out = s.engine(cat).AfterPayment(out, track)
		}
		return out, nil
	})
}

// Decide records the final pass or fail decision.
func (s *Service) Decide(ctx context.Context, id string, req types.DecisionRequest) (types.Applicant, error) {
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		return s.engine(lifecycle.Catalog{}).Decide(a, req.Outcome, req.Evaluation)
	})
}

// Annotate updates staff-only ranking annotations.
func (s *Service) Annotate(ctx context.Context, id string, req types.AnnotateRequest) (types.Applicant, error) {
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if req.RankingScore != nil {
			a.RankingScore = *req.RankingScore
		}
		if req.IsStarred != nil {
			a.IsStarred = *req.IsStarred
		}
		return a, nil
	})
}

// PublishAll makes every applicant's current status visible and returns how
// many applicants saw a change.
func (s *Service) PublishAll(ctx context.Context) (int, error) {
	changed := 0
	_, err := mutate(ctx, s, store.KeyApplicants, func(all []types.Applicant) ([]types.Applicant, error) {
		changed = 0
		for i, a := range all {
			a.Normalize()
			published := lifecycle.Publish(a)
			if published.LastNotifiedStatus != a.LastNotifiedStatus {
				changed++
			}
			all[i] = published
		}
		return all, nil
	})
	if err != nil {
		return 0, err
	}
	log.Printf("[admission] published status to %d applicant(s)", changed)
	return changed, nil
}

// ReconcileAll re-derives the documents of every DRAFT and DOCS_REJECTED
// applicant from the current catalog and returns how many changed.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	docs, _, err := store.Load[types.DocumentConfig](ctx, s.store, store.KeyDocumentConfigs)
	if err != nil {
		return 0, err
	}
	unlock := s.lock(store.KeyApplicants)
	defer unlock()
	return s.reconcileLocked(ctx, docs)
}

func (s *Service) reconcileLocked(ctx context.Context, docs []types.DocumentConfig) (int, error) {
	applicants, version, err := s.loadApplicants(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i, a := range applicants {
		next := documents.Reconcile(a, docs)
		if !sameDocuments(a.Documents, next.Documents) {
			next.UpdatedAt = s.now()
			applicants[i] = next
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if _, err := store.Save(ctx, s.store, store.KeyApplicants, applicants, version); err != nil {
		return 0, fmt.Errorf("failed to save reconciled applicants: %w", err)
	}
	log.Printf("[admission] reconciled documents of %d applicant(s)", changed)
	return changed, nil
}

func sameDocuments(a, b map[string]types.DocumentItem) bool {
	if len(a) != len(b) {
		return false
	}
	for id, doc := range a {
		if other, ok := b[id]; !ok || other != doc {
			return false
		}
	}
	return true
}
