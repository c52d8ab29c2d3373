package fees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/uniadmit/internal/types"
)

var now = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func allRequired() types.PaymentConfig {
	return types.PaymentConfig{
		KPlus:                 true,
		RequireApplicationFee: true,
		RequireInterviewFee:   true,
		RequireTuitionFee:     true,
		ApplicationFee:        500,
		InterviewFee:          200,
		TuitionFee:            15000,
		Currency:              "THB",
	}
}

func TestPaid_NotRequiredIsVacuouslyTrue(t *testing.T) {
	a := types.NewApplicant("app_1", now)
	cfg := allRequired()

	assert.False(t, ApplicationFeePaid(a, cfg))
	cfg.RequireApplicationFee = false
	assert.True(t, ApplicationFeePaid(a, cfg))
	assert.False(t, InterviewFeePaid(a, cfg))
	assert.False(t, TuitionFeePaid(a, cfg))
}

func TestConfirm(t *testing.T) {
	a := types.NewApplicant("app_1", now)
	paid := Confirm(a, types.TrackApplication, types.PaymentConfirmation{Reference: "KP-1", Method: "kplus", Amount: 500}, now)

	assert.Equal(t, types.FeePaid, paid.FeeStatuses.Application)
	assert.Equal(t, types.FeePending, a.FeeStatuses.Application)
	require.Len(t, paid.Payments, 1)
	assert.Equal(t, SourceGateway, paid.Payments[0].Source)
	assert.Equal(t, now, paid.Payments[0].PaidAt)

	again := Confirm(paid, types.TrackApplication, types.PaymentConfirmation{Reference: "KP-2"}, now)
	assert.Len(t, again.Payments, 1)
}

func TestOverride(t *testing.T) {
	a := Confirm(types.NewApplicant("app_1", now), types.TrackTuition, types.PaymentConfirmation{Reference: "QR-9"}, now)

	reverted, err := Override(a, types.TrackTuition, types.FeeRejected, "staff_1", now)
	require.NoError(t, err)
	assert.Equal(t, types.FeeRejected, reverted.FeeStatuses.Tuition)

	manual, err := Override(reverted, types.TrackTuition, types.FeePaid, "staff_1", now)
	require.NoError(t, err)
	rec, ok := LastPayment(manual, types.TrackTuition)
	require.True(t, ok)
	assert.Equal(t, "staff_1", rec.Source)

	_, err = Override(a, types.TrackTuition, "REFUNDED", "staff_1", now)
	assert.True(t, types.IsValidation(err))
}

func TestReceipt(t *testing.T) {
	a := types.NewApplicant("app_7", now)
	a.FullName = "Nattaya Srisuk"

	_, err := Receipt(a, allRequired(), types.TrackInterview)
	assert.True(t, types.IsGuardViolation(err))

	a = Confirm(a, types.TrackInterview, types.PaymentConfirmation{Reference: "QR-77", Method: "qrcode"}, now)
	text, err := Receipt(a, allRequired(), types.TrackInterview)
	require.NoError(t, err)
	assert.Contains(t, text, "Fee Type: Interview Fee")
	assert.Contains(t, text, "Reference: QR-77")
	assert.Contains(t, text, "Amount: 200.00 THB")
	assert.Contains(t, text, "Applicant: Nattaya Srisuk (app_7)")
}
