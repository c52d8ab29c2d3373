package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/uniadmit/internal/types"
)

var day = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func input(capacity int, start time.Time) types.SlotInput {
	return types.SlotInput{Start: start, End: start.Add(time.Hour), Location: "Room 301", Type: types.InterviewOnsite, Capacity: capacity}
}

func poolWith(t *testing.T, slots ...types.InterviewSlot) Pool {
	t.Helper()
	p := NewPool(slots)
	require.NoError(t, p.CheckInvariants())
	return p
}

func booked(p Pool, id string) int {
	s, _ := p.Slot(id)
	return s.Booked
}

func TestCreateUpdateDelete(t *testing.T) {
	p, slot, err := Pool{}.Create("s1", input(10, day))
	require.NoError(t, err)
	assert.Equal(t, 10, slot.Capacity)
	assert.Equal(t, 0, slot.Booked)

	_, _, err = p.Create("s1", input(1, day))
	assert.True(t, types.IsInvariantViolation(err))

	p, err = p.Update("s1", input(4, day.Add(time.Hour)))
	require.NoError(t, err)
	s, err := p.Slot("s1")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Capacity)
	assert.Equal(t, day.Add(time.Hour), s.Start)

	p, err = p.Delete("s1")
	require.NoError(t, err)
	assert.Empty(t, p.Slots())

	_, err = p.Delete("s1")
	assert.True(t, types.IsNotFound(err))
}

func TestUpdate_CapacityBelowBookedFails(t *testing.T) {
	p := poolWith(t, types.InterviewSlot{ID: "s1", Start: day, Capacity: 10, Booked: 5})

	next, err := p.Update("s1", input(2, day))
	assert.True(t, types.IsInvariantViolation(err))
	assert.Equal(t, 10, mustSlot(t, next, "s1").Capacity)
	assert.Equal(t, 10, mustSlot(t, p, "s1").Capacity)

	_, err = p.Update("s1", input(5, day))
	assert.NoError(t, err)
}

func mustSlot(t *testing.T, p Pool, id string) types.InterviewSlot {
	t.Helper()
	s, err := p.Slot(id)
	require.NoError(t, err)
	return s
}

func TestDelete_BookedSlotIsRejected(t *testing.T) {
	p := poolWith(t, types.InterviewSlot{ID: "s1", Capacity: 2, Booked: 1})
	_, err := p.Delete("s1")
	assert.True(t, types.IsGuardViolation(err))
}

func TestBook_FullSlot(t *testing.T) {
	p := poolWith(t, types.InterviewSlot{ID: "s1", Capacity: 1, Booked: 1})

	next, _, err := p.Book("a2", "s1", "")
	var full *types.CapacityExceeded
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 1, full.Capacity)
	assert.Equal(t, 1, booked(next, "s1"))
}

func TestBook_TransferIsAtomic(t *testing.T) {
	p := poolWith(t,
		types.InterviewSlot{ID: "A", Start: day, Capacity: 3},
		types.InterviewSlot{ID: "B", Start: day.Add(2 * time.Hour), Capacity: 3, Booked: 1},
	)

	p, slot, err := p.Book("a1", "A", "")
	require.NoError(t, err)
	assert.Equal(t, 1, slot.Booked)
	p, _, err = p.CreateGroup("A", "g1")
	require.NoError(t, err)
	p, err = p.Assign("A", "g1", "a1")
	require.NoError(t, err)

	before := booked(p, "A") + booked(p, "B")
	moved, _, err := p.Book("a1", "B", "A")
	require.NoError(t, err)

	assert.Equal(t, booked(p, "A")-1, booked(moved, "A"))
	assert.Equal(t, booked(p, "B")+1, booked(moved, "B"))
	assert.Equal(t, before, booked(moved, "A")+booked(moved, "B"))
	assert.Equal(t, -1, mustSlot(t, moved, "A").GroupOf("a1"))
	assert.NoError(t, moved.CheckInvariants())
}

func TestBook_SameSlotIsNoop(t *testing.T) {
	p := poolWith(t, types.InterviewSlot{ID: "A", Capacity: 1, Booked: 1})
	next, _, err := p.Book("a1", "A", "A")
	require.NoError(t, err)
	assert.Equal(t, 1, booked(next, "A"))
}

func TestBook_TransferIntoFullSlotKeepsOld(t *testing.T) {
	p := poolWith(t,
		types.InterviewSlot{ID: "A", Capacity: 2, Booked: 1},
		types.InterviewSlot{ID: "B", Capacity: 1, Booked: 1},
	)
	next, _, err := p.Book("a1", "B", "A")
	assert.True(t, types.IsCapacityExceeded(err))
	assert.Equal(t, 1, booked(next, "A"))
	assert.Equal(t, 1, booked(next, "B"))
}

func TestRelease(t *testing.T) {
	p := poolWith(t, types.InterviewSlot{ID: "A", Capacity: 2, Booked: 1})
	p, err := p.Release("a1", "A")
	require.NoError(t, err)
	assert.Equal(t, 0, booked(p, "A"))

	_, err = p.Release("a1", "A")
	assert.True(t, types.IsInvariantViolation(err))
}

func TestAvailable(t *testing.T) {
	p := poolWith(t,
		types.InterviewSlot{ID: "late", Start: day.Add(time.Hour), Capacity: 2},
		types.InterviewSlot{ID: "full", Start: day, Capacity: 1, Booked: 1},
		types.InterviewSlot{ID: "early", Start: day, Capacity: 2},
	)
	var ids []string
	for _, s := range p.Available() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"early", "late"}, ids)
}

func TestInvariantsHoldAcrossBookings(t *testing.T) {
	p := poolWith(t,
		types.InterviewSlot{ID: "A", Capacity: 2},
		types.InterviewSlot{ID: "B", Capacity: 1},
	)
	held := map[string]string{}
	steps := []struct{ applicant, slot string }{
		{"a1", "A"}, {"a2", "A"}, {"a3", "A"}, {"a3", "B"}, {"a1", "B"}, {"a2", "B"}, {"a1", "A"},
	}
	for _, st := range steps {
		next, _, err := p.Book(st.applicant, st.slot, held[st.applicant])
		if err == nil {
			held[st.applicant] = st.slot
			p = next
		}
		require.NoError(t, p.CheckInvariants())
	}
	assert.Equal(t, 2, booked(p, "A"))
	assert.Equal(t, 1, booked(p, "B"))
}

func TestCheckInvariants_DetectsViolations(t *testing.T) {
	over := NewPool([]types.InterviewSlot{{ID: "A", Capacity: 1, Booked: 2}})
	assert.True(t, types.IsInvariantViolation(over.CheckInvariants()))

	dup := NewPool([]types.InterviewSlot{{
		ID: "A", Capacity: 3, Booked: 1,
		Groups: []types.InterviewGroup{
			{ID: "g1", ApplicantIDs: []string{"a1"}},
			{ID: "g2", ApplicantIDs: []string{"a1"}},
		},
	}})
	assert.True(t, types.IsInvariantViolation(dup.CheckInvariants()))
}
