package booking

import (
	"errors"
	"fmt"
	"math"
	"time"

	"rentzy/internal/promo"
)

// Pricing and hold constants. Amounts are VND.
const (
	DeliveryFee    int64 = 200000
	DefaultHoldFee int64 = 500000

	ReservationHoldWindow = 10 * time.Minute

	billingDay = 24 * time.Hour
)

var (
	ErrInvalidDateRange        = errors.New("end must not be before start")
	ErrCannotCancelStartedTrip = errors.New("trip already started or booking is final")
	ErrInvalidStateTransition  = errors.New("invalid booking status transition")
	ErrNoDepositFound          = errors.New("no completed deposit transaction")
)

// allowedTransitions is the booking status graph. Terminal states map to an
// empty list: nothing moves out of them.
var allowedTransitions = map[Status][]Status{
	StatusPending:     {StatusConfirmed, StatusDepositPaid, StatusCanceled, StatusRejected, StatusExpired},
	StatusConfirmed:   {StatusDepositPaid, StatusCanceled, StatusRejected},
	StatusDepositPaid: {StatusRentalPaid, StatusCanceled, StatusRejected},
	StatusRentalPaid:  {StatusInProgress, StatusCanceled, StatusRejected},
	StatusInProgress:  {StatusCompleted},
	StatusCompleted:   {},
	StatusCanceled:    {},
	StatusRejected:    {},
	StatusExpired:     {},
}

func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves a booking to the target status and stamps the
// matching timestamp field. The booking is not touched on error.
func ApplyTransition(b *Booking, to Status, now time.Time) error {
	if b == nil {
		return fmt.Errorf("booking is nil")
	}
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, b.Status, to)
	}

	b.Status = to
	t := now
	switch to {
	case StatusConfirmed:
		b.ConfirmedAt = &t
	case StatusDepositPaid:
		b.DepositPaidAt = &t
	case StatusRentalPaid:
		b.PaidAt = &t
	case StatusInProgress:
		b.StartedAt = &t
	case StatusCompleted:
		b.CompletedAt = &t
	case StatusCanceled, StatusRejected, StatusExpired:
		b.CanceledAt = &t
	}
	return nil
}

// CombineDateTime builds a single instant from a calendar date ("2006-01-02"),
/// a time of day ("15:04") and an explicit timezone.
func CombineDateTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	return t, nil
}

// TotalDays returns the number of billing days between start and end.
// A zero-length interval bills zero days, anything up to 24h bills one day,
// and longer rentals round partial days up.
func TotalDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidDateRange
	}
	d := end.Sub(start)
	if d == 0 {
		return 0, nil
	}
	if d <= billingDay {
		return 1, nil
	}
	days := int(d / billingDay)
	if d%billingDay != 0 {
		days++
	}
	return days, nil
}

// PricingInput carries everything ComputeRentalCost needs. The vehicle fields
// come from the vehicle record; HoldFee of 0 means the marketplace default.
// An empty PickupLocation means pickup at the vehicle's home location.
type PricingInput struct {
	PricePerDay     int64
	VehicleLocation string
	Deposit         int64
	HoldFee         int64
	PickupLocation  string
	Start           time.Time
	End             time.Time
	Discount        int64
}

// Quote is the full cost breakdown for a rental.
type Quote struct {
	TotalDays   int   `json:"total_days"`
	RentalFee   int64 `json:"rental_fee"`
	DeliveryFee int64 `json:"delivery_fee"`
	Discount    int64 `json:"discount"`
	Deposit     int64 `json:"deposit"`
	HoldFee     int64 `json:"hold_fee"`
	FinalAmount int64 `json:"final_amount"`
	TotalAmount int64 `json:"total_amount"`
}

// ComputeRentalCost is deterministic and side-effect free. The discount is
// applied exactly once, to rentalFee+deliveryFee, before deposit and hold fee
// are added on top.
func ComputeRentalCost(in PricingInput) (*Quote, error) {
	days, err := TotalDays(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	rentalFee := int64(days) * in.PricePerDay

	var deliveryFee int64
	if in.PickupLocation != "" && in.PickupLocation != in.VehicleLocation {
		deliveryFee = DeliveryFee
	}

	final := rentalFee + deliveryFee - in.Discount
	if final < 0 {
		final = 0
	}

	holdFee := in.HoldFee
	if holdFee == 0 {
		holdFee = DefaultHoldFee
	}

	return &Quote{
		TotalDays:   days,
		RentalFee:   rentalFee,
		DeliveryFee: deliveryFee,
		Discount:    in.Discount,
		Deposit:     in.Deposit,
		HoldFee:     holdFee,
		FinalAmount: final,
		TotalAmount: final + in.Deposit + holdFee,
	}, nil
}

// PromoDiscount returns the discount a promo rule grants on the given
// subtotal. A subtotal below the promo's minimum order is not an error, the
// code is simply inapplicable and the discount is 0.
func PromoDiscount(p *promo.Promo, subtotal int64) int64 {
	if p == nil || subtotal < p.MinOrder {
		return 0
	}
	d := int64(math.Round(float64(subtotal) * p.Percent))
	if d > p.MaxDiscount {
		d = p.MaxDiscount
	}
	if d < 0 {
		d = 0
	}
	return d
}

// PaymentState summarizes how much of the contractual total has been paid.
type PaymentState struct {
	TotalPaid       int64 `json:"total_paid"`
	Remaining       int64 `json:"remaining"`
	CanPayRemaining bool  `json:"can_pay_remaining"`
}

func isPaymentType(t TransactionType) bool {
	return t == TxDeposit || t == TxRental || t == TxPayment
}

// paidTotal sums completed payment transactions. Refunds, cancellations and
// wallet movements never count toward the amount paid.
func paidTotal(txs []Transaction) int64 {
	var sum int64
	for _, tx := range txs {
		if tx.Status == TxStatusCompleted && isPaymentType(tx.Type) {
			sum += tx.Amount
		}
	}
	return sum
}

// ClassifyPaymentState computes the paid/remaining split for a booking.
// RENTAL_PAID short-circuits the remainder to zero so a promo or rounding
// edge case can never leave a fully paid booking with a residual balance.
func ClassifyPaymentState(b *Booking, txs []Transaction) PaymentState {
	paid := paidTotal(txs)
	remaining := b.TotalAmount - paid
	if b.Status == StatusRentalPaid || remaining < 0 {
		remaining = 0
	}
	return PaymentState{
		TotalPaid:       paid,
		Remaining:       remaining,
		CanPayRemaining: remaining > 0 && b.Status == StatusDepositPaid,
	}
}

// DepositTransaction returns the first completed deposit payment, or
// ErrNoDepositFound. Informational only, callers treat the error as "no
// reservation fee has been paid yet".
func DepositTransaction(txs []Transaction) (*Transaction, error) {
	for i := range txs {
		if txs[i].Type == TxDeposit && txs[i].Status == TxStatusCompleted {
			return &txs[i], nil
		}
	}
	return nil, ErrNoDepositFound
}

// RefundPlan is the outcome of a cancellation request. The amounts are
// credited to the renter's wallet by the caller.
type RefundPlan struct {
	ReservationRefund int64 `json:"reservation_refund"`
	RemainingRefund   int64 `json:"remaining_refund"`
	TotalRefund       int64 `json:"total_refund"`
	DaysUntilStart    int   `json:"days_until_start"`
	CanCancel         bool  `json:"can_cancel"`
}

func cancelable(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDepositPaid, StatusRentalPaid:
		return true
	}
	return false
}

// ComputeCancellationRefund prices a renter-initiated cancellation.
//
// The reservation fee is refunded on a tier keyed by whole days until the
// trip starts: 100% above 10 days, 30% above 5, nothing at 5 or less. It only
// applies once the fee has actually been paid (DEPOSIT_PAID or later).
// Anything paid beyond the reservation fee comes back in full.
func ComputeCancellationRefund(b *Booking, txs []Transaction, now time.Time) (*RefundPlan, error) {
	if !cancelable(b.Status) || !b.StartAt.After(now) {
		return nil, ErrCannotCancelStartedTrip
	}

	days := int(b.StartAt.Sub(now) / billingDay)
	paid := paidTotal(txs)

	var reservationRefund int64
	if b.Status == StatusDepositPaid || b.Status == StatusRentalPaid {
		switch {
		case days > 10:
			reservationRefund = b.HoldFee
		case days > 5:
			reservationRefund = int64(math.Round(float64(b.HoldFee) * 0.3))
		}
	}

	remainingPaid := paid - b.HoldFee
	if remainingPaid < 0 {
		remainingPaid = 0
	}
	var remainingRefund int64
	if b.Status != StatusPending {
		remainingRefund = remainingPaid
	}

	return &RefundPlan{
		ReservationRefund: reservationRefund,
		RemainingRefund:   remainingRefund,
		TotalRefund:       reservationRefund + remainingRefund,
		DaysUntilStart:    days,
		CanCancel:         true,
	}, nil
}

// WithinHoldWindow reports whether a pending reservation is still inside its
// 10-minute payment hold.
func WithinHoldWindow(createdAt, now time.Time) bool {
	return now.Before(createdAt.Add(ReservationHoldWindow))
}
