// Package interview allocates applicants to capacity-limited interview slots
// and orders them into calling groups.
//
// A Pool is a snapshot of every slot. Operations never mutate the receiver;
// they return a new Pool, so a failed operation leaves the caller's snapshot
// untouched and the result can be written back as one replace.
package interview

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/uniadmit/internal/types"
)

// Pool is an immutable view over the interview slots.
type Pool struct {
	slots []types.InterviewSlot
}

// NewPool copies slots into a Pool.
func NewPool(slots []types.InterviewSlot) Pool {
	out := make([]types.InterviewSlot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return Pool{slots: out}
}

// Slots returns a copy of the slots in pool order.
func (p Pool) Slots() []types.InterviewSlot {
	return NewPool(p.slots).slots
}

// Slot returns one slot by id.
func (p Pool) Slot(id string) (types.InterviewSlot, error) {
	i := p.index(id)
	if i < 0 {
		return types.InterviewSlot{}, types.NewNotFound("slot", id)
	}
	return p.slots[i].Clone(), nil
}

// Available returns slots with remaining capacity, ordered by start time.
func (p Pool) Available() []types.InterviewSlot {
	var out []types.InterviewSlot
	for _, s := range p.slots {
		if s.Available() {
			out = append(out, s.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (p Pool) index(id string) int {
	for i, s := range p.slots {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (p Pool) with(i int, s types.InterviewSlot) Pool {
	next := NewPool(p.slots)
	next.slots[i] = s
	return next
}

// Create adds a slot with nothing booked.
func (p Pool) Create(id string, in types.SlotInput) (Pool, types.InterviewSlot, error) {
	if p.index(id) >= 0 {
		return p, types.InterviewSlot{}, &types.InvariantViolation{Invariant: "unique slot id", Detail: id}
	}
	if in.Capacity <= 0 {
		return p, types.InterviewSlot{}, &types.InvariantViolation{Invariant: "capacity > 0", Detail: fmt.Sprintf("got %d", in.Capacity)}
	}
	slot := types.InterviewSlot{
		ID:       id,
		Start:    in.Start,
		End:      in.End,
		Location: in.Location,
		Type:     in.Type,
		Capacity: in.Capacity,
		Groups:   []types.InterviewGroup{},
	}
	next := NewPool(p.slots)
	next.slots = append(next.slots, slot)
	return next, slot.Clone(), nil
}

// Update edits a slot's schedule and capacity. The new capacity may not drop
// below the current bookings.
func (p Pool) Update(id string, in types.SlotInput) (Pool, error) {
	i := p.index(id)
	if i < 0 {
		return p, types.NewNotFound("slot", id)
	}
	s := p.slots[i].Clone()
	if in.Capacity <= 0 || in.Capacity < s.Booked {
		return p, &types.InvariantViolation{
			Invariant: "capacity >= booked",
			Detail:    fmt.Sprintf("slot %s has %d booked, capacity %d requested", id, s.Booked, in.Capacity),
		}
	}
	s.Start, s.End = in.Start, in.End
	s.Location, s.Type = in.Location, in.Type
	s.Capacity = in.Capacity
	return p.with(i, s), nil
}

// Delete removes a slot that has no bookings.
func (p Pool) Delete(id string) (Pool, error) {
	i := p.index(id)
	if i < 0 {
		return p, types.NewNotFound("slot", id)
	}
	if p.slots[i].Booked > 0 {
		return p, types.NewGuardViolation("delete slot", fmt.Sprintf("slot %s has %d booking(s)", id, p.slots[i].Booked))
	}
	next := NewPool(p.slots)
	next.slots = append(next.slots[:i], next.slots[i+1:]...)
	return next, nil
}

// Book places an applicant into target. When previous names another slot the
// applicant held, that booking is released in the same operation and the
// applicant leaves its groups. Booking the slot already held is a no-op.
func (p Pool) Book(applicantID, targetID, previousID string) (Pool, types.InterviewSlot, error) {
	ti := p.index(targetID)
	if ti < 0 {
		return p, types.InterviewSlot{}, types.NewNotFound("slot", targetID)
	}
	if previousID == targetID {
		return p, p.slots[ti].Clone(), nil
	}

	target := p.slots[ti]
	if !target.Available() {
		return p, types.InterviewSlot{}, &types.CapacityExceeded{SlotID: target.ID, Capacity: target.Capacity, Booked: target.Booked}
	}

	next := NewPool(p.slots)
	if previousID != "" {
		if pi := next.index(previousID); pi >= 0 {
			prev := &next.slots[pi]
			if prev.Booked > 0 {
				prev.Booked--
			}
			removeFromGroups(prev, applicantID)
		}
	}
	next.slots[ti].Booked++
	return next, next.slots[ti].Clone(), nil
}

// Release frees an applicant's booking in a slot.
func (p Pool) Release(applicantID, slotID string) (Pool, error) {
	i := p.index(slotID)
	if i < 0 {
		return p, types.NewNotFound("slot", slotID)
	}
	s := p.slots[i].Clone()
	if s.Booked == 0 {
		return p, &types.InvariantViolation{Invariant: "booked >= 0", Detail: "release from empty slot " + slotID}
	}
	s.Booked--
	removeFromGroups(&s, applicantID)
	return p.with(i, s), nil
}

// CheckInvariants verifies capacity bounds and single-group membership for every slot.
func (p Pool) CheckInvariants() error {
	for _, s := range p.slots {
		if s.Capacity <= 0 {
			return &types.InvariantViolation{Invariant: "capacity > 0", Detail: s.ID}
		}
		if s.Booked < 0 || s.Booked > s.Capacity {
			return &types.InvariantViolation{
				Invariant: "0 <= booked <= capacity",
				Detail:    fmt.Sprintf("slot %s: %d/%d", s.ID, s.Booked, s.Capacity),
			}
		}
		seen := map[string]string{}
		for _, g := range s.Groups {
			for _, id := range g.ApplicantIDs {
				if other, dup := seen[id]; dup {
					return &types.InvariantViolation{
						Invariant: "one group per slot",
						Detail:    fmt.Sprintf("applicant %s in groups %s and %s of slot %s", id, other, g.ID, s.ID),
					}
				}
				seen[id] = g.ID
			}
		}
	}
	return nil
}

// Timestamp returns the denormalized start time stored on a booked applicant.
func Timestamp(s types.InterviewSlot) *time.Time {
	t := s.Start
	return &t
}

func removeFromGroups(s *types.InterviewSlot, applicantID string) {
	for gi := range s.Groups {
		s.Groups[gi].ApplicantIDs = without(s.Groups[gi].ApplicantIDs, applicantID)
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
