package interview

import (
	"fmt"
	"strings"

	"github.com/jonathan/uniadmit/internal/types"
)

func (p Pool) slotForEdit(slotID string) (int, types.InterviewSlot, error) {
	i := p.index(slotID)
	if i < 0 {
		return -1, types.InterviewSlot{}, types.NewNotFound("slot", slotID)
	}
	return i, p.slots[i].Clone(), nil
}

func groupIndex(s types.InterviewSlot, groupID string) int {
	for i, g := range s.Groups {
		if g.ID == groupID {
			return i
		}
	}
	return -1
}

// CreateGroup appends an empty group named "Group N" to a slot.
func (p Pool) CreateGroup(slotID, groupID string) (Pool, types.InterviewGroup, error) {
	i, s, err := p.slotForEdit(slotID)
	if err != nil {
		return p, types.InterviewGroup{}, err
	}
	if groupIndex(s, groupID) >= 0 {
		return p, types.InterviewGroup{}, &types.InvariantViolation{Invariant: "unique group id", Detail: groupID}
	}
	g := types.InterviewGroup{
		ID:           groupID,
		Name:         fmt.Sprintf("Group %d", len(s.Groups)+1),
		ApplicantIDs: []string{},
	}
	s.Groups = append(s.Groups, g)
	return p.with(i, s), g, nil
}

// RenameGroup changes a group's display name.
func (p Pool) RenameGroup(slotID, groupID, name string) (Pool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return p, &types.ValidationError{Field: "name", Message: "group name is required"}
	}
	i, s, err := p.slotForEdit(slotID)
	if err != nil {
		return p, err
	}
	gi := groupIndex(s, groupID)
	if gi < 0 {
		return p, types.NewNotFound("group", groupID)
	}
	s.Groups[gi].Name = name
	return p.with(i, s), nil
}

// DeleteGroup removes a group. Its members become unassigned but stay booked.
func (p Pool) DeleteGroup(slotID, groupID string) (Pool, error) {
	i, s, err := p.slotForEdit(slotID)
	if err != nil {
		return p, err
	}
	gi := groupIndex(s, groupID)
	if gi < 0 {
		return p, types.NewNotFound("group", groupID)
	}
	s.Groups = append(s.Groups[:gi], s.Groups[gi+1:]...)
	return p.with(i, s), nil
}

// Assign moves an applicant into a group, removing them from every other
// group of the slot first. The caller checks that the applicant is booked
// into the slot.
func (p Pool) Assign(slotID, groupID, applicantID string) (Pool, error) {
	i, s, err := p.slotForEdit(slotID)
	if err != nil {
		return p, err
	}
	gi := groupIndex(s, groupID)
	if gi < 0 {
		return p, types.NewNotFound("group", groupID)
	}
	removeFromGroups(&s, applicantID)
	s.Groups[gi].ApplicantIDs = append(s.Groups[gi].ApplicantIDs, applicantID)
	return p.with(i, s), nil
}

// Unassign removes an applicant from every group of the slot.
func (p Pool) Unassign(slotID, applicantID string) (Pool, error) {
	i, s, err := p.slotForEdit(slotID)
	if err != nil {
		return p, err
	}
	removeFromGroups(&s, applicantID)
	return p.with(i, s), nil
}

// Move swaps an applicant with the adjacent member in the given direction.
// Moving the first member up or the last member down changes nothing.
func (p Pool) Move(slotID, groupID, applicantID, direction string) (Pool, error) {
	i, s, err := p.slotForEdit(slotID)
	if err != nil {
		return p, err
	}
	gi := groupIndex(s, groupID)
	if gi < 0 {
		return p, types.NewNotFound("group", groupID)
	}
	ids := s.Groups[gi].ApplicantIDs
	at := -1
	for k, id := range ids {
		if id == applicantID {
			at = k
			break
		}
	}
	if at < 0 {
		return p, types.NewNotFound("group member", applicantID)
	}

	switch direction {
	case types.MoveUp:
		if at > 0 {
			ids[at], ids[at-1] = ids[at-1], ids[at]
		}
	case types.MoveDown:
		if at < len(ids)-1 {
			ids[at], ids[at+1] = ids[at+1], ids[at]
		}
	default:
		return p, &types.ValidationError{Field: "direction", Message: "must be up or down"}
	}
	return p.with(i, s), nil
}

// Unassigned returns the booked applicants that are in no group of the slot,
// preserving the order of booked.
func Unassigned(s types.InterviewSlot, booked []string) []string {
	out := []string{}
	for _, id := range booked {
		if s.GroupOf(id) < 0 {
			out = append(out, id)
		}
	}
	return out
}
