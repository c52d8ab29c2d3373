// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/uniadmit/internal/catalog"
	"github.com/jonathan/uniadmit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSeed outputs how many records of each collection a seed bundle holds.
func (p *Printer) PrintSeed(seed catalog.Seed) {
	var sb strings.Builder
	row := func(label string, n int) {
		sb.WriteString(fmt.Sprintf("%-18s %d\n", label+":", n))
	}
	row("Fields", len(seed.FieldConfigs))
	row("Documents", len(seed.DocumentConfigs))
	row("Exam suites", len(seed.ExamSuites))
	row("Exam questions", len(seed.ExamQuestions))
	row("Interview slots", len(seed.InterviewSlots))
	row("Announcements", len(seed.Announcements))
	row("Staff users", len(seed.StaffUsers))
	row("Majors", len(seed.EducationMajors))
	if len(seed.Applicants) > 0 {
		row("Applicants", len(seed.Applicants))
	}

	cfg := seed.PaymentConfig
	sb.WriteString(fmt.Sprintf("\nFees: application %.0f, interview %.0f, tuition %.0f %s",
		cfg.ApplicationFee, cfg.InterviewFee, cfg.TuitionFee, cfg.Currency))

	p.printBox("SEED", sb.String())
}

// PrintPipeline outputs applicant counts per lifecycle status, in lifecycle order.
func (p *Printer) PrintPipeline(applicants []types.Applicant) {
	counts := make(map[types.ApplicationStatus]int)
	for _, a := range applicants {
		counts[a.Status]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total applicants: %d\n\n", len(applicants)))
	for _, s := range types.AllStatuses {
		sb.WriteString(fmt.Sprintf("  %-18s %d\n", s, counts[s]))
	}

	p.printBox("APPLICATION PIPELINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSlots outputs occupancy for each interview slot.
func (p *Printer) PrintSlots(slots []types.InterviewSlot) {
	if len(slots) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(slots), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := slots[i]
		sb.WriteString(fmt.Sprintf("%s  %s  %d/%d", s.ID, s.Start.Format("2006-01-02 15:04"), s.Booked, s.Capacity))
		if s.Booked >= s.Capacity {
			sb.WriteString("  FULL")
		}
		sb.WriteString("\n")
		if len(s.Groups) > 0 {
			sb.WriteString(fmt.Sprintf("    %d group(s), %s\n", len(s.Groups), s.Type))
		} else {
			sb.WriteString(fmt.Sprintf("    %s, %s\n", s.Type, s.Location))
		}
	}
	if len(slots) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more slots\n", len(slots)-maxItemsToShow))
	}

	p.printBox("INTERVIEW SLOTS", strings.TrimSuffix(sb.String(), "\n"))
}
