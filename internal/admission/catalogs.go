package admission

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/uniadmit/internal/exam"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

// DocumentCatalog returns the document catalog in display order.
func (s *Service) DocumentCatalog(ctx context.Context) ([]types.DocumentConfig, error) {
	docs, _, err := store.Load[types.DocumentConfig](ctx, s.store, store.KeyDocumentConfigs)
	if err != nil {
		return nil, err
	}
	return types.SortDocumentConfigs(docs), nil
}

func validateDocumentCatalog(configs []types.DocumentConfig) error {
	seen := make(map[string]bool, len(configs))
	linked := 0
	for _, c := range configs {
		if strings.TrimSpace(c.ID) == "" {
			return &types.ValidationError{Field: "id", Message: "document config id is required"}
		}
		if seen[c.ID] {
			return &types.ValidationError{Field: "id", Message: fmt.Sprintf("duplicate document config %q", c.ID)}
		}
		seen[c.ID] = true
		if strings.TrimSpace(c.Label) == "" {
			return &types.ValidationError{Field: "label", Message: fmt.Sprintf("document config %q needs a label", c.ID)}
		}
		if c.LinksEducation {
			linked++
		}
	}
	if linked > 1 {
		return &types.ValidationError{Field: "links_education", Message: "only one entry may expand per education record"}
	}
	return nil
}

// SaveDocumentCatalog replaces the document catalog, numbering entries in the
// given order, and reconciles every DRAFT and DOCS_REJECTED applicant.
func (s *Service) SaveDocumentCatalog(ctx context.Context, configs []types.DocumentConfig) ([]types.DocumentConfig, error) {
	if err := validateDocumentCatalog(configs); err != nil {
		return nil, err
	}
	saved, err := mutate(ctx, s, store.KeyDocumentConfigs, func([]types.DocumentConfig) ([]types.DocumentConfig, error) {
		return types.Renumber(configs), nil
	})
	if err != nil {
		return nil, err
	}

	unlock := s.lock(store.KeyApplicants)
	defer unlock()
	if _, err := s.reconcileLocked(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// FieldCatalog returns the profile field catalog in display order.
func (s *Service) FieldCatalog(ctx context.Context) ([]types.FieldConfig, error) {
	fields, _, err := store.Load[types.FieldConfig](ctx, s.store, store.KeyFieldConfigs)
	if err != nil {
		return nil, err
	}
	return types.SortFieldConfigs(fields), nil
}

// SaveFieldCatalog replaces the profile field catalog, numbering entries in the given order.
func (s *Service) SaveFieldCatalog(ctx context.Context, fields []types.FieldConfig) ([]types.FieldConfig, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f.ID) == "" {
			return nil, &types.ValidationError{Field: "id", Message: "field id is required"}
		}
		if seen[f.ID] {
			return nil, &types.ValidationError{Field: "id", Message: fmt.Sprintf("duplicate field %q", f.ID)}
		}
		seen[f.ID] = true
		if !f.Kind.Valid() {
			return nil, &types.ValidationError{Field: "kind", Message: fmt.Sprintf("field %q has unknown kind %q", f.ID, f.Kind)}
		}
		for _, r := range f.ScoreRanges {
			if r.Min > r.Max {
				return nil, &types.ValidationError{Field: "score_ranges", Message: fmt.Sprintf("%s: min above max", r.Exam)}
			}
		}
	}
	return mutate(ctx, s, store.KeyFieldConfigs, func([]types.FieldConfig) ([]types.FieldConfig, error) {
		return types.Renumber(fields), nil
	})
}

// PaymentConfig returns the fee configuration.
func (s *Service) PaymentConfig(ctx context.Context) (types.PaymentConfig, error) {
	return s.loadPaymentConfig(ctx)
}

// SavePaymentConfig replaces the fee configuration.
func (s *Service) SavePaymentConfig(ctx context.Context, cfg types.PaymentConfig) (types.PaymentConfig, error) {
	if cfg.ApplicationFee < 0 || cfg.InterviewFee < 0 || cfg.TuitionFee < 0 {
		return types.PaymentConfig{}, &types.ValidationError{Field: "amount", Message: "fee amounts cannot be negative"}
	}
	_, err := mutate(ctx, s, store.KeyPaymentConfig, func([]types.PaymentConfig) ([]types.PaymentConfig, error) {
		return []types.PaymentConfig{cfg}, nil
	})
	if err != nil {
		return types.PaymentConfig{}, err
	}
	return cfg, nil
}

// ListSuites returns the exam suites.
func (s *Service) ListSuites(ctx context.Context) ([]types.ExamSuite, error) {
	suites, _, err := store.Load[types.ExamSuite](ctx, s.store, store.KeyExamSuites)
	return suites, err
}

// SaveSuite creates or replaces a suite. A suite without an id gets one.
func (s *Service) SaveSuite(ctx context.Context, suite types.ExamSuite) (types.ExamSuite, error) {
	if strings.TrimSpace(suite.Title) == "" {
		return types.ExamSuite{}, &types.ValidationError{Field: "title", Message: "suite title is required"}
	}
	if suite.ID == "" {
		suite.ID = s.newID()
	}
	_, err := mutate(ctx, s, store.KeyExamSuites, func(all []types.ExamSuite) ([]types.ExamSuite, error) {
		for i := range all {
			if all[i].ID == suite.ID {
				all[i] = suite
				return all, nil
			}
		}
		return append(all, suite), nil
	})
	if err != nil {
		return types.ExamSuite{}, err
	}
	return suite, nil
}

// DeleteSuite removes a suite no question references.
func (s *Service) DeleteSuite(ctx context.Context, id string) error {
	questions, _, err := store.Load[types.ExamQuestion](ctx, s.store, store.KeyExamQuestions)
	if err != nil {
		return err
	}
	if n := len(exam.InSuite(questions, id)); n > 0 {
		return types.NewGuardViolation("delete suite", fmt.Sprintf("suite %s still has %d question(s)", id, n))
	}
	_, err = mutate(ctx, s, store.KeyExamSuites, func(all []types.ExamSuite) ([]types.ExamSuite, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, types.NewNotFound("suite", id)
	})
	return err
}

// ListQuestions returns the question corpus, optionally limited to one suite.
func (s *Service) ListQuestions(ctx context.Context, suiteID string) ([]types.ExamQuestion, error) {
	questions, _, err := store.Load[types.ExamQuestion](ctx, s.store, store.KeyExamQuestions)
	if err != nil {
		return nil, err
	}
	if suiteID == "" {
		return questions, nil
	}
	return exam.InSuite(questions, suiteID), nil
}

// SaveQuestion normalizes, validates and upserts a question.
func (s *Service) SaveQuestion(ctx context.Context, q types.ExamQuestion) (types.ExamQuestion, error) {
	q = exam.NormalizeQuestion(q)
	if err := exam.ValidateQuestion(q); err != nil {
		return types.ExamQuestion{}, err
	}
	suites, _, err := store.Load[types.ExamSuite](ctx, s.store, store.KeyExamSuites)
	if err != nil {
		return types.ExamQuestion{}, err
	}
	found := false
	for _, suite := range suites {
		if suite.ID == q.SuiteID {
			found = true
			break
		}
	}
	if !found {
		return types.ExamQuestion{}, types.NewNotFound("suite", q.SuiteID)
	}
	if q.ID == "" {
		q.ID = s.newID()
	}

	_, err = mutate(ctx, s, store.KeyExamQuestions, func(all []types.ExamQuestion) ([]types.ExamQuestion, error) {
		for i := range all {
			if all[i].ID == q.ID {
				all[i] = q
				return all, nil
			}
		}
		return append(all, q), nil
	})
	if err != nil {
		return types.ExamQuestion{}, err
	}
	return q, nil
}

// DeleteQuestion removes a question. Stored answers to it are ignored by grading.
func (s *Service) DeleteQuestion(ctx context.Context, id string) error {
	_, err := mutate(ctx, s, store.KeyExamQuestions, func(all []types.ExamQuestion) ([]types.ExamQuestion, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, types.NewNotFound("question", id)
	})
	return err
}

// ListAnnouncements returns announcements; visibleOnly hides drafts.
func (s *Service) ListAnnouncements(ctx context.Context, visibleOnly bool) ([]types.Announcement, error) {
	all, _, err := store.Load[types.Announcement](ctx, s.store, store.KeyAnnouncements)
	if err != nil || !visibleOnly {
		return all, err
	}
	out := make([]types.Announcement, 0, len(all))
	for _, a := range all {
		if a.IsVisible {
			out = append(out, a)
		}
	}
	return out, nil
}

// SaveAnnouncement creates or replaces an announcement.
func (s *Service) SaveAnnouncement(ctx context.Context, ann types.Announcement) (types.Announcement, error) {
	if strings.TrimSpace(ann.Title) == "" {
		return types.Announcement{}, &types.ValidationError{Field: "title", Message: "announcement title is required"}
	}
	if ann.ID == "" {
		ann.ID = s.newID()
	}
	if ann.Date.IsZero() {
		ann.Date = s.now()
	}
	_, err := mutate(ctx, s, store.KeyAnnouncements, func(all []types.Announcement) ([]types.Announcement, error) {
		for i := range all {
			if all[i].ID == ann.ID {
				all[i] = ann
				return all, nil
			}
		}
		return append(all, ann), nil
	})
	if err != nil {
		return types.Announcement{}, err
	}
	return ann, nil
}

// DeleteAnnouncement removes an announcement.
func (s *Service) DeleteAnnouncement(ctx context.Context, id string) error {
	_, err := mutate(ctx, s, store.KeyAnnouncements, func(all []types.Announcement) ([]types.Announcement, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, types.NewNotFound("announcement", id)
	})
	return err
}

// ListStaff returns the staff directory.
func (s *Service) ListStaff(ctx context.Context) ([]types.StaffUser, error) {
	users, _, err := store.Load[types.StaffUser](ctx, s.store, store.KeyStaffUsers)
	return users, err
}

// FindStaff looks a staff user up by username or id.
func (s *Service) FindStaff(ctx context.Context, ref string) (types.StaffUser, error) {
	users, err := s.ListStaff(ctx)
	if err != nil {
		return types.StaffUser{}, err
	}
	for _, u := range users {
		if u.ID == ref || strings.EqualFold(u.Username, ref) {
			return u, nil
		}
	}
	return types.StaffUser{}, types.NewNotFound("staff user", ref)
}

// ListMajors returns the selectable fields of study.
func (s *Service) ListMajors(ctx context.Context) ([]types.EducationMajor, error) {
	majors, _, err := store.Load[types.EducationMajor](ctx, s.store, store.KeyEducationMajors)
	return majors, err
}
