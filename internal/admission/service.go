// Package admission hosts the admission components over the persistence
// gateway. Every mutation loads a collection with its version, computes the
// next snapshot with the pure component functions and replaces the
// collection against the version it read.
package admission

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/uniadmit/internal/lifecycle"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

// Service composes the lifecycle, document, fee, exam and interview
// components over a store.
type Service struct {
	store store.Store
	now   func() time.Time
	newID func() string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock serializes writers of one collection inside this process and returns
// the unlock func.
func (s *Service) lock(key string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[key] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// mutate replaces a whole collection with fn's result under the collection lock.
func mutate[T any](ctx context.Context, s *Service, key string, fn func([]T) ([]T, error)) ([]T, error) {
	unlock := s.lock(key)
	defer unlock()

	records, version, err := store.Load[T](ctx, s.store, key)
	if err != nil {
		return nil, err
	}
	next, err := fn(records)
	if err != nil {
		return nil, err
	}
	if _, err := store.Save(ctx, s.store, key, next, version); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", key, err)
	}
	return next, nil
}

func (s *Service) engine(cat lifecycle.Catalog) *lifecycle.Engine {
	return lifecycle.New(cat, lifecycle.WithClock(s.now))
}

// loadCatalog reads the four catalogs the guards depend on concurrently.
func (s *Service) loadCatalog(ctx context.Context) (lifecycle.Catalog, error) {
	var cat lifecycle.Catalog
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fields, _, err := store.Load[types.FieldConfig](gCtx, s.store, store.KeyFieldConfigs)
		cat.Fields = types.SortFieldConfigs(fields)
		return err
	})
	g.Go(func() error {
		docs, _, err := store.Load[types.DocumentConfig](gCtx, s.store, store.KeyDocumentConfigs)
		cat.Documents = types.SortDocumentConfigs(docs)
		return err
	})
	g.Go(func() error {
		questions, _, err := store.Load[types.ExamQuestion](gCtx, s.store, store.KeyExamQuestions)
		cat.Questions = questions
		return err
	})
	g.Go(func() error {
		payment, err := s.loadPaymentConfig(gCtx)
		cat.Payment = payment
		return err
	})

	if err := g.Wait(); err != nil {
		return lifecycle.Catalog{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// loadPaymentConfig reads the single-record payment collection. An unseeded
// store requires no fees.
func (s *Service) loadPaymentConfig(ctx context.Context) (types.PaymentConfig, error) {
	records, _, err := store.Load[types.PaymentConfig](ctx, s.store, store.KeyPaymentConfig)
	if err != nil || len(records) == 0 {
		return types.PaymentConfig{}, err
	}
	return records[0], nil
}

func (s *Service) loadApplicants(ctx context.Context) ([]types.Applicant, int64, error) {
	applicants, version, err := store.Load[types.Applicant](ctx, s.store, store.KeyApplicants)
	if err != nil {
		return nil, 0, err
	}
	for i := range applicants {
		applicants[i].Normalize()
	}
	return applicants, version, nil
}

func indexOf(applicants []types.Applicant, id string) int {
	for i, a := range applicants {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// updateApplicant applies fn to one applicant and replaces the applicants
// collection. Status changes are logged.
func (s *Service) updateApplicant(ctx context.Context, id string, fn func(types.Applicant) (types.Applicant, error)) (types.Applicant, error) {
	unlock := s.lock(store.KeyApplicants)
	defer unlock()
	return s.updateApplicantLocked(ctx, id, fn)
}

func (s *Service) updateApplicantLocked(ctx context.Context, id string, fn func(types.Applicant) (types.Applicant, error)) (types.Applicant, error) {
	applicants, version, err := s.loadApplicants(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	i := indexOf(applicants, id)
	if i < 0 {
		return types.Applicant{}, types.NewNotFound("applicant", id)
	}

	before := applicants[i]
	after, err := fn(before.Clone())
	if err != nil {
		return types.Applicant{}, err
	}
	after.UpdatedAt = s.now()
	applicants[i] = after

	if _, err := store.Save(ctx, s.store, store.KeyApplicants, applicants, version); err != nil {
		return types.Applicant{}, fmt.Errorf("failed to save applicant %s: %w", id, err)
	}
	if before.Status != after.Status {
		log.Printf("[admission] applicant %s: %s -> %s", id, before.Status, after.Status)
	}
	return after, nil
}

// GetApplicant returns one applicant.
func (s *Service) GetApplicant(ctx context.Context, id string) (types.Applicant, error) {
	applicants, _, err := s.loadApplicants(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	i := indexOf(applicants, id)
	if i < 0 {
		return types.Applicant{}, types.NewNotFound("applicant", id)
	}
	return applicants[i], nil
}

// ListApplicants returns the applicants matching filter, in store order.
func (s *Service) ListApplicants(ctx context.Context, filter types.ApplicantFilter) ([]types.Applicant, error) {
	applicants, _, err := s.loadApplicants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Applicant, 0, len(applicants))
	for _, a := range applicants {
		if filter.Match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
