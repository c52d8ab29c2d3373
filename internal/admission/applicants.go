package admission

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/uniadmit/internal/documents"
	"github.com/jonathan/uniadmit/internal/exam"
	"github.com/jonathan/uniadmit/internal/fees"
	"github.com/jonathan/uniadmit/internal/lifecycle"
	"github.com/jonathan/uniadmit/internal/profile"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

// CreateApplicant opens a DRAFT application with the catalog's documents.
func (s *Service) CreateApplicant(ctx context.Context, req types.CreateApplicantRequest) (types.Applicant, error) {
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	docs, _, err := store.Load[types.DocumentConfig](ctx, s.store, store.KeyDocumentConfigs)
	if err != nil {
		return types.Applicant{}, err
	}

	a := types.NewApplicant(s.newID(), s.now())
	a.FullName = strings.TrimSpace(req.FullName)
	a.Email = strings.TrimSpace(req.Email)
	a = documents.Reconcile(a, docs)

	_, err = mutate(ctx, s, store.KeyApplicants, func(all []types.Applicant) ([]types.Applicant, error) {
		return append(all, a), nil
	})
	if err != nil {
		return types.Applicant{}, err
	}
	log.Printf("[admission] applicant %s created", a.ID)
	return a, nil
}

// UpdateProfile applies a profile update. In DOCS_REJECTED only flagged fields may change.
func (s *Service) UpdateProfile(ctx context.Context, id string, u types.ProfileUpdate) (types.Applicant, error) {
	if err := u.Validate(); err != nil {
		return types.Applicant{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := lifecycle.CheckEdit(a, lifecycle.Edit{Kind: lifecycle.EditProfile, FieldIDs: u.FieldIDs()}); err != nil {
			return a, err
		}
		if err := profile.ApplyUpdate(&a, u, cat.Fields); err != nil {
			return a, err
		}
		return a, nil
	})
}

// editEducation runs an education change and regenerates the certificate documents.
func (s *Service) editEducation(ctx context.Context, id string, fn func([]types.EducationRecord) ([]types.EducationRecord, error)) (types.Applicant, error) {
	docs, _, err := store.Load[types.DocumentConfig](ctx, s.store, store.KeyDocumentConfigs)
	if err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := lifecycle.CheckEdit(a, lifecycle.Edit{Kind: lifecycle.EditEducation}); err != nil {
			return a, err
		}
		records, err := fn(a.Educations)
		if err != nil {
			return a, err
		}
		a.Educations = records
		return documents.Reconcile(a, docs), nil
	})
}

// AddEducation adds a degree level, filling in missing lower levels.
func (s *Service) AddEducation(ctx context.Context, id string, in types.EducationInput) (types.Applicant, error) {
	if err := in.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.editEducation(ctx, id, func(records []types.EducationRecord) ([]types.EducationRecord, error) {
		next, _, err := profile.AddEducation(records, in, s.newID)
		return next, err
	})
}

// UpdateEducation edits one education record.
func (s *Service) UpdateEducation(ctx context.Context, id, educationID string, in types.EducationInput) (types.Applicant, error) {
	if err := in.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.editEducation(ctx, id, func(records []types.EducationRecord) ([]types.EducationRecord, error) {
		return profile.UpdateEducation(records, educationID, in)
	})
}

// RemoveEducation deletes one education record and its certificate.
func (s *Service) RemoveEducation(ctx context.Context, id, educationID string) (types.Applicant, error) {
	return s.editEducation(ctx, id, func(records []types.EducationRecord) ([]types.EducationRecord, error) {
		return profile.RemoveEducation(records, educationID)
	})
}

// UploadDocument attaches a file to one of the applicant's documents.
func (s *Service) UploadDocument(ctx context.Context, id, docID string, req types.UploadRequest) (types.Applicant, error) {
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := lifecycle.CheckEdit(a, lifecycle.Edit{Kind: lifecycle.EditDocument, DocumentID: docID}); err != nil {
			return a, err
		}
		return documents.Upload(a, docID, req)
	})
}

// RemoveDocument detaches the file of one document.
func (s *Service) RemoveDocument(ctx context.Context, id, docID string) (types.Applicant, error) {
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := lifecycle.CheckEdit(a, lifecycle.Edit{Kind: lifecycle.EditDocument, DocumentID: docID}); err != nil {
			return a, err
		}
		return documents.Remove(a, docID)
	})
}

// AnswerQuestion records an exam answer. An empty answer clears it.
func (s *Service) AnswerQuestion(ctx context.Context, id, questionID string, answer types.Answer) (types.Applicant, error) {
	questions, _, err := store.Load[types.ExamQuestion](ctx, s.store, store.KeyExamQuestions)
	if err != nil {
		return types.Applicant{}, err
	}
	q, err := exam.Find(questions, questionID)
	if err != nil {
		return types.Applicant{}, err
	}
	if err := exam.ValidateAnswer(q, answer); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := lifecycle.CheckEdit(a, lifecycle.Edit{Kind: lifecycle.EditExam}); err != nil {
			return a, err
		}
		if answer.Empty() {
			delete(a.ExamAnswers, questionID)
		} else {
			a.ExamAnswers[questionID] = answer
		}
		return a, nil
	})
}

// ExamProgress reports answered questions per suite.
func (s *Service) ExamProgress(ctx context.Context, id string) ([]exam.SuiteProgress, error) {
	a, err := s.GetApplicant(ctx, id)
	if err != nil {
		return nil, err
	}
	suites, _, err := store.Load[types.ExamSuite](ctx, s.store, store.KeyExamSuites)
	if err != nil {
		return nil, err
	}
	questions, _, err := store.Load[types.ExamQuestion](ctx, s.store, store.KeyExamQuestions)
	if err != nil {
		return nil, err
	}
	return exam.Progress(suites, questions, a.ExamAnswers), nil
}

// Sign records the e-signature.
func (s *Service) Sign(ctx context.Context, id string, req types.SignRequest) (types.Applicant, error) {
	if err := req.Validate(); err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		if err := lifecycle.CheckEdit(a, lifecycle.Edit{Kind: lifecycle.EditSignature}); err != nil {
			return a, err
		}
		return s.engine(lifecycle.Catalog{}).Sign(a, req.SignatureRef), nil
	})
}

// ConfirmPayment records a trusted payment confirmation and applies the
// transition it unlocks.
func (s *Service) ConfirmPayment(ctx context.Context, id string, track types.FeeTrack, c types.PaymentConfirmation) (types.Applicant, error) {
	if _, err := types.ParseFeeTrack(string(track)); err != nil {
		return types.Applicant{}, err
	}
	if err := c.Validate(); err != nil {
		return types.Applicant{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		paid := fees.Confirm(a, track, c, s.now())
		return s.engine(cat).AfterPayment(paid, track), nil
	})
}

// Receipt renders the receipt of a paid track.
func (s *Service) Receipt(ctx context.Context, id string, track types.FeeTrack) (string, error) {
	if _, err := types.ParseFeeTrack(string(track)); err != nil {
		return "", err
	}
	a, err := s.GetApplicant(ctx, id)
	if err != nil {
		return "", err
	}
	cfg, err := s.loadPaymentConfig(ctx)
	if err != nil {
		return "", err
	}
	return fees.Receipt(a, cfg, track)
}

// SubmitBlockers lists what still prevents a DRAFT submission.
func (s *Service) SubmitBlockers(ctx context.Context, id string) ([]string, error) {
	a, err := s.GetApplicant(ctx, id)
	if err != nil {
		return nil, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine(cat).SubmitBlockers(a), nil
}

// Submit submits a DRAFT application or resubmits a returned one.
func (s *Service) Submit(ctx context.Context, id string) (types.Applicant, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		return s.engine(cat).Submit(a)
	})
}

// Enroll confirms enrolment of a PASSED applicant whose tuition is settled.
func (s *Service) Enroll(ctx context.Context, id string) (types.Applicant, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	return s.updateApplicant(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		return s.engine(cat).Enroll(a)
	})
}

// Notifications returns the status the applicant may currently see.
func (s *Service) Notifications(ctx context.Context, id string) (types.ApplicationStatus, error) {
	a, err := s.GetApplicant(ctx, id)
	if err != nil {
		return "", err
	}
	if a.LastNotifiedStatus == "" {
		return a.Status, nil
	}
	return a.LastNotifiedStatus, nil
}
