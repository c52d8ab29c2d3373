package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/uniadmit/internal/catalog"
	"github.com/jonathan/uniadmit/internal/types"
)

func TestPrintSeed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSeed(catalog.Defaults(time.Now()))
	output := buf.String()

	assert.Contains(t, output, "SEED")
	assert.Contains(t, output, "Exam questions:    4")
	assert.Contains(t, output, "Staff users:       3")
	assert.Contains(t, output, "tuition 15000 THB")
	assert.NotContains(t, output, "Applicants:")
}

func TestPrintPipeline(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	now := time.Now()
	a := types.NewApplicant("a1", now)
	b := types.NewApplicant("a2", now)
	b.Status = types.StatusSubmitted
	c := types.NewApplicant("a3", now)
	c.Status = types.StatusSubmitted

	p.PrintPipeline([]types.Applicant{a, b, c})
	output := buf.String()

	assert.Contains(t, output, "Total applicants: 3")
	assert.Regexp(t, `DRAFT\s+1`, output)
	assert.Regexp(t, `SUBMITTED\s+2`, output)
	assert.Regexp(t, `ENROLLED\s+0`, output)
	assert.Less(t, strings.Index(output, "DRAFT"), strings.Index(output, "ENROLLED"), "lifecycle order")
}

func TestPrintSlots(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	slots := catalog.InterviewSlots()
	slots[0].Booked = slots[0].Capacity
	p.PrintSlots(slots)
	output := buf.String()

	assert.Contains(t, output, "INTERVIEW SLOTS")
	assert.Contains(t, output, "slot_1  2023-12-01 09:00  10/10  FULL")
	assert.Contains(t, output, "slot_2  2023-12-01 13:00  0/20")
}

func TestPrintSlots_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSlots(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
