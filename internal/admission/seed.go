package admission

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/uniadmit/internal/catalog"
	"github.com/jonathan/uniadmit/internal/interview"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

// AlreadySeededError reports a seed run against populated collections.
type AlreadySeededError struct {
	Keys []string
}

func (e *AlreadySeededError) Error() string {
	return fmt.Sprintf("store already holds data for %v; use force to overwrite", e.Keys)
}

// seedStep writes one collection of a seed bundle.
type seedStep struct {
	key   string
	count int
	write func(ctx context.Context, version int64) error
}

func step[T any](s *Service, key string, records []T) seedStep {
	return seedStep{
		key:   key,
		count: len(records),
		write: func(ctx context.Context, version int64) error {
			_, err := store.Save(ctx, s.store, key, records, version)
			return err
		},
	}
}

// Seed writes a seed bundle into the store. Collections that already hold
// records are refused unless force is set. Applicants are only written when
// the bundle carries some.
func (s *Service) Seed(ctx context.Context, seed catalog.Seed, force bool) error {
	if err := interview.NewPool(seed.InterviewSlots).CheckInvariants(); err != nil {
		return err
	}
	for i := range seed.Applicants {
		seed.Applicants[i].Normalize()
	}

	steps := []seedStep{
		step(s, store.KeyFieldConfigs, types.SortFieldConfigs(seed.FieldConfigs)),
		step(s, store.KeyDocumentConfigs, types.SortDocumentConfigs(seed.DocumentConfigs)),
		step(s, store.KeyPaymentConfig, []types.PaymentConfig{seed.PaymentConfig}),
		step(s, store.KeyExamSuites, seed.ExamSuites),
		step(s, store.KeyExamQuestions, seed.ExamQuestions),
		step(s, store.KeyInterviewSlots, seed.InterviewSlots),
		step(s, store.KeyAnnouncements, seed.Announcements),
		step(s, store.KeyStaffUsers, seed.StaffUsers),
		step(s, store.KeyEducationMajors, seed.EducationMajors),
	}
	if len(seed.Applicants) > 0 {
		steps = append(steps, step(s, store.KeyApplicants, seed.Applicants))
	}

	versions := make(map[string]int64, len(steps))
	var populated []string
	for _, st := range steps {
		c, err := s.store.Get(ctx, st.key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", st.key, err)
		}
		versions[st.key] = c.Version
		if len(c.Records) > 0 {
			populated = append(populated, st.key)
		}
	}
	if len(populated) > 0 && !force {
		return &AlreadySeededError{Keys: populated}
	}

	for _, st := range steps {
		unlock := s.lock(st.key)
		err := st.write(ctx, versions[st.key])
		unlock()
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", st.key, err)
		}
		log.Printf("[admission] seeded %s (%d record(s))", st.key, st.count)
	}
	return nil
}

// IsAlreadySeeded reports whether err is an *AlreadySeededError.
func IsAlreadySeeded(err error) bool {
	var target *AlreadySeededError
	return errors.As(err, &target)
}
