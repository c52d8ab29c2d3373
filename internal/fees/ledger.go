// Package fees tracks the application, interview, and tuition fee tracks.
package fees

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/uniadmit/internal/types"
)

// SourceGateway marks a payment recorded from an external confirmation.
const SourceGateway = "gateway"

// Paid reports whether the track is settled. A track the payment config does
// not require is always settled.
func Paid(a types.Applicant, cfg types.PaymentConfig, track types.FeeTrack) bool {
	if !cfg.Required(track) {
		return true
	}
	return a.FeeStatuses.Get(track) == types.FeePaid
}

// ApplicationFeePaid gates DRAFT -> SUBMITTED.
func ApplicationFeePaid(a types.Applicant, cfg types.PaymentConfig) bool {
	return Paid(a, cfg, types.TrackApplication)
}

// InterviewFeePaid gates DOCS_APPROVED -> INTERVIEW_READY.
func InterviewFeePaid(a types.Applicant, cfg types.PaymentConfig) bool {
	return Paid(a, cfg, types.TrackInterview)
}

// TuitionFeePaid gates PASSED -> ENROLLED.
func TuitionFeePaid(a types.Applicant, cfg types.PaymentConfig) bool {
	return Paid(a, cfg, types.TrackTuition)
}

// Confirm records a trusted payment confirmation and moves the track to PAID.
// Confirming a track that is already PAID returns a unchanged.
func Confirm(a types.Applicant, track types.FeeTrack, c types.PaymentConfirmation, now time.Time) types.Applicant {
	if a.FeeStatuses.Get(track) == types.FeePaid {
		return a
	}
	out := a.Clone()
	paidAt := c.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	out.FeeStatuses = out.FeeStatuses.With(track, types.FeePaid)
	out.Payments = append(out.Payments, types.PaymentRecord{
		Track:     track,
		Reference: c.Reference,
		Method:    c.Method,
		Amount:    c.Amount,
		PaidAt:    paidAt,
		Source:    SourceGateway,
	})
	return out
}

// Override sets a track to any status on staff authority. It is the only
// path that can move a PAID track back to PENDING or REJECTED.
func Override(a types.Applicant, track types.FeeTrack, status types.FeeStatus, staffID string, now time.Time) (types.Applicant, error) {
	if !status.Valid() {
		return a, &types.ValidationError{Field: "status", Message: fmt.Sprintf("unknown fee status %q", status)}
	}
	out := a.Clone()
	out.FeeStatuses = out.FeeStatuses.With(track, status)
	if status == types.FeePaid && a.FeeStatuses.Get(track) != types.FeePaid {
		out.Payments = append(out.Payments, types.PaymentRecord{
			Track:  track,
			PaidAt: now,
			Source: staffID,
		})
	}
	return out, nil
}

// LastPayment returns the most recent payment record of a track.
func LastPayment(a types.Applicant, track types.FeeTrack) (types.PaymentRecord, bool) {
	for i := len(a.Payments) - 1; i >= 0; i-- {
		if a.Payments[i].Track == track {
			return a.Payments[i], true
		}
	}
	return types.PaymentRecord{}, false
}

// TrackLabel is the display name of a fee track.
func TrackLabel(track types.FeeTrack) string {
	switch track {
	case types.TrackApplication:
		return "Application Fee"
	case types.TrackInterview:
		return "Interview Fee"
	case types.TrackTuition:
		return "Tuition Fee"
	}
	return string(track)
}

// Receipt renders a plain-text receipt for a PAID track.
func Receipt(a types.Applicant, cfg types.PaymentConfig, track types.FeeTrack) (string, error) {
	if a.FeeStatuses.Get(track) != types.FeePaid {
		return "", types.NewGuardViolation("receipt", TrackLabel(track)+" not paid")
	}

	var b strings.Builder
	b.WriteString("RECEIPT\n\n")
	fmt.Fprintf(&b, "Fee Type: %s\n", TrackLabel(track))
	amount := cfg.Amount(track)
	if rec, ok := LastPayment(a, track); ok {
		fmt.Fprintf(&b, "Date: %s\n", rec.PaidAt.Format(time.RFC3339))
		if rec.Reference != "" {
			fmt.Fprintf(&b, "Reference: %s\n", rec.Reference)
		}
		if rec.Method != "" {
			fmt.Fprintf(&b, "Method: %s\n", rec.Method)
		}
		if rec.Amount > 0 {
			amount = rec.Amount
		}
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "THB"
	}
	fmt.Fprintf(&b, "Amount: %.2f %s\n", amount, currency)
	fmt.Fprintf(&b, "Applicant: %s (%s)\n", a.FullName, a.ID)
	return b.String(), nil
}
