package admission

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/uniadmit/internal/interview"
	"github.com/jonathan/uniadmit/internal/lifecycle"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

func (s *Service) loadPool(ctx context.Context) (interview.Pool, int64, error) {
	slots, version, err := store.Load[types.InterviewSlot](ctx, s.store, store.KeyInterviewSlots)
	if err != nil {
		return interview.Pool{}, 0, err
	}
	return interview.NewPool(slots), version, nil
}

// mutatePool replaces the slot collection with fn's pool under the slot lock.
func (s *Service) mutatePool(ctx context.Context, fn func(interview.Pool) (interview.Pool, error)) (interview.Pool, error) {
	unlock := s.lock(store.KeyInterviewSlots)
	defer unlock()

	pool, version, err := s.loadPool(ctx)
	if err != nil {
		return interview.Pool{}, err
	}
	next, err := fn(pool)
	if err != nil {
		return interview.Pool{}, err
	}
	if _, err := store.Save(ctx, s.store, store.KeyInterviewSlots, next.Slots(), version); err != nil {
		return interview.Pool{}, fmt.Errorf("failed to save interview slots: %w", err)
	}
	return next, nil
}

// ListSlots returns every slot in pool order.
func (s *Service) ListSlots(ctx context.Context) ([]types.InterviewSlot, error) {
	pool, _, err := s.loadPool(ctx)
	if err != nil {
		return nil, err
	}
	return pool.Slots(), nil
}

// AvailableSlots returns slots with remaining capacity, earliest first.
func (s *Service) AvailableSlots(ctx context.Context) ([]types.InterviewSlot, error) {
	pool, _, err := s.loadPool(ctx)
	if err != nil {
		return nil, err
	}
	return pool.Available(), nil
}

// CreateSlot adds an interview slot.
func (s *Service) CreateSlot(ctx context.Context, in types.SlotInput) (types.InterviewSlot, error) {
	if err := in.Validate(); err != nil {
		return types.InterviewSlot{}, err
	}
	var created types.InterviewSlot
	_, err := s.mutatePool(ctx, func(p interview.Pool) (interview.Pool, error) {
		next, slot, err := p.Create(s.newID(), in)
		created = slot
		return next, err
	})
	if err != nil {
		return types.InterviewSlot{}, err
	}
	return created, nil
}

// UpdateSlot edits a slot. Capacity may not fall below the bookings.
func (s *Service) UpdateSlot(ctx context.Context, id string, in types.SlotInput) (types.InterviewSlot, error) {
	if err := in.Validate(); err != nil {
		return types.InterviewSlot{}, err
	}
	pool, err := s.mutatePool(ctx, func(p interview.Pool) (interview.Pool, error) {
		return p.Update(id, in)
	})
	if err != nil {
		return types.InterviewSlot{}, err
	}
	return pool.Slot(id)
}

// DeleteSlot removes a slot without bookings.
func (s *Service) DeleteSlot(ctx context.Context, id string) error {
	_, err := s.mutatePool(ctx, func(p interview.Pool) (interview.Pool, error) {
		return p.Delete(id)
	})
	return err
}

// BookInterview reserves a slot for an applicant and records the booking.
// A booked applicant choosing another slot is moved in one pool write.
func (s *Service) BookInterview(ctx context.Context, id, slotID string) (types.Applicant, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	engine := s.engine(cat)
	return s.placeApplicant(ctx, id, slotID, engine.Book)
}

// TransferInterview moves a booked applicant to another slot on staff authority.
func (s *Service) TransferInterview(ctx context.Context, id, slotID string) (types.Applicant, error) {
	return s.placeApplicant(ctx, id, slotID, s.engine(lifecycle.Catalog{}).Transfer)
}

// placeApplicant books slotID in the pool and then applies transition to the
// applicant. The slot lock is taken before the applicant lock. If the
// applicant write fails the previous pool is written back.
func (s *Service) placeApplicant(ctx context.Context, id, slotID string,
	transition func(types.Applicant, types.InterviewSlot) (types.Applicant, error)) (types.Applicant, error) {
	unlockSlots := s.lock(store.KeyInterviewSlots)
	defer unlockSlots()
	unlockApplicants := s.lock(store.KeyApplicants)
	defer unlockApplicants()

	pool, poolVersion, err := s.loadPool(ctx)
	if err != nil {
		return types.Applicant{}, err
	}
	current, err := s.GetApplicant(ctx, id)
	if err != nil {
		return types.Applicant{}, err
	}
	target, err := pool.Slot(slotID)
	if err != nil {
		return types.Applicant{}, err
	}
	// Guards first, so a refused transition never touches the pool.
	if _, err := transition(current, target); err != nil {
		return types.Applicant{}, err
	}

	next, booked, err := pool.Book(id, slotID, current.InterviewSlotID)
	if err != nil {
		return types.Applicant{}, err
	}
	if err := next.CheckInvariants(); err != nil {
		return types.Applicant{}, err
	}
	newPoolVersion, err := store.Save(ctx, s.store, store.KeyInterviewSlots, next.Slots(), poolVersion)
	if err != nil {
		return types.Applicant{}, fmt.Errorf("failed to save interview slots: %w", err)
	}

	updated, err := s.updateApplicantLocked(ctx, id, func(a types.Applicant) (types.Applicant, error) {
		return transition(a, booked)
	})
	if err != nil {
		if _, rerr := store.Save(ctx, s.store, store.KeyInterviewSlots, pool.Slots(), newPoolVersion); rerr != nil {
			log.Printf("[admission] failed to restore interview slots after booking error: %v", rerr)
			return types.Applicant{}, errors.Join(err, rerr)
		}
		return types.Applicant{}, err
	}
	log.Printf("[admission] applicant %s booked into slot %s (%d/%d)", id, slotID, booked.Booked, booked.Capacity)
	return updated, nil
}

// CreateGroup adds an empty, auto-named group to a slot.
func (s *Service) CreateGroup(ctx context.Context, slotID string) (types.InterviewGroup, error) {
	var group types.InterviewGroup
	_, err := s.mutatePool(ctx, func(p interview.Pool) (interview.Pool, error) {
		next, g, err := p.CreateGroup(slotID, s.newID())
		group = g
		return next, err
	})
	if err != nil {
		return types.InterviewGroup{}, err
	}
	return group, nil
}

// RenameGroup renames a group.
func (s *Service) RenameGroup(ctx context.Context, slotID, groupID, name string) (types.InterviewSlot, error) {
	return s.slotAfter(ctx, slotID, func(p interview.Pool) (interview.Pool, error) {
		return p.RenameGroup(slotID, groupID, name)
	})
}

// DeleteGroup removes a group; its members become unassigned.
func (s *Service) DeleteGroup(ctx context.Context, slotID, groupID string) (types.InterviewSlot, error) {
	return s.slotAfter(ctx, slotID, func(p interview.Pool) (interview.Pool, error) {
		return p.DeleteGroup(slotID, groupID)
	})
}

// AssignToGroup places an applicant booked into the slot into one of its groups.
func (s *Service) AssignToGroup(ctx context.Context, slotID, groupID, applicantID string) (types.InterviewSlot, error) {
	a, err := s.GetApplicant(ctx, applicantID)
	if err != nil {
		return types.InterviewSlot{}, err
	}
	if a.InterviewSlotID != slotID {
		return types.InterviewSlot{}, types.NewGuardViolation("assign to group",
			fmt.Sprintf("applicant %s is not booked into slot %s", applicantID, slotID))
	}
	return s.slotAfter(ctx, slotID, func(p interview.Pool) (interview.Pool, error) {
		return p.Assign(slotID, groupID, applicantID)
	})
}

// Unassign removes an applicant from whatever group of the slot holds them.
func (s *Service) Unassign(ctx context.Context, slotID, applicantID string) (types.InterviewSlot, error) {
	return s.slotAfter(ctx, slotID, func(p interview.Pool) (interview.Pool, error) {
		return p.Unassign(slotID, applicantID)
	})
}

// MoveWithinGroup swaps an applicant with its neighbour in the calling order.
func (s *Service) MoveWithinGroup(ctx context.Context, slotID, groupID, applicantID, direction string) (types.InterviewSlot, error) {
	return s.slotAfter(ctx, slotID, func(p interview.Pool) (interview.Pool, error) {
		return p.Move(slotID, groupID, applicantID, direction)
	})
}

// Unassigned lists applicants holding a booking in the slot but in no group.
// A decided applicant keeps the booking.
func (s *Service) Unassigned(ctx context.Context, slotID string) ([]string, error) {
	pool, _, err := s.loadPool(ctx)
	if err != nil {
		return nil, err
	}
	slot, err := pool.Slot(slotID)
	if err != nil {
		return nil, err
	}
	applicants, _, err := s.loadApplicants(ctx)
	if err != nil {
		return nil, err
	}
	var booked []string
	for _, a := range applicants {
		if a.InterviewSlotID == slotID {
			booked = append(booked, a.ID)
		}
	}
	return interview.Unassigned(slot, booked), nil
}

func (s *Service) slotAfter(ctx context.Context, slotID string, fn func(interview.Pool) (interview.Pool, error)) (types.InterviewSlot, error) {
	pool, err := s.mutatePool(ctx, fn)
	if err != nil {
		return types.InterviewSlot{}, err
	}
	return pool.Slot(slotID)
}
