package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, renter_id, vehicle_id, start_at, end_at, pickup_location, return_location,
	total_days, rental_fee, delivery_fee, deposit, hold_fee, discount, total_amount, promo_code, status,
	created_at, updated_at, confirmed_at, deposit_paid_at, paid_at, started_at, completed_at, canceled_at`

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (renter_id, vehicle_id, start_at, end_at, pickup_location, return_location,
			total_days, rental_fee, delivery_fee, deposit, hold_fee, discount, total_amount, promo_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + bookingColumns

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.RenterID, b.VehicleID, b.StartAt, b.EndAt, b.PickupLocation, b.ReturnLocation,
		b.TotalDays, b.RentalFee, b.DeliveryFee, b.Deposit, b.HoldFee, b.Discount,
		b.TotalAmount, b.PromoCode, b.Status)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// Update persists status and lifecycle timestamps. Money fields are written
// once at creation and never change afterwards.
func (r *repository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, confirmed_at = $2, deposit_paid_at = $3, paid_at = $4,
			started_at = $5, completed_at = $6, canceled_at = $7, updated_at = NOW()
		WHERE id = $8
	`

	_, err := r.db.ExecContext(ctx, query,
		b.Status, b.ConfirmedAt, b.DepositPaidAt, b.PaidAt,
		b.StartedAt, b.CompletedAt, b.CanceledAt, b.ID)
	return err
}

func (r *repository) ListByRenter(ctx context.Context, renterID int) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE renter_id = $1 ORDER BY created_at DESC`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, renterID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

const bookingWithVehicleQuery = `
	SELECT
		b.id, b.renter_id, b.vehicle_id, b.start_at, b.end_at, b.pickup_location, b.return_location,
		b.total_days, b.rental_fee, b.delivery_fee, b.deposit, b.hold_fee, b.discount, b.total_amount,
		b.promo_code, b.status, b.created_at, b.updated_at, b.confirmed_at, b.deposit_paid_at,
		b.paid_at, b.started_at, b.completed_at, b.canceled_at,
		v.name AS vehicle_name,
		v.location AS vehicle_location,
		v.owner_id AS owner_id
	FROM bookings b
	JOIN vehicles v ON b.vehicle_id = v.id
`

func (r *repository) ListByOwner(ctx context.Context, ownerID int) ([]BookingWithVehicle, error) {
	query := bookingWithVehicleQuery + `
	WHERE v.owner_id = $1
	ORDER BY b.created_at DESC`

	var bookings []BookingWithVehicle
	err := r.db.SelectContext(ctx, &bookings, query, ownerID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListAll(ctx context.Context, status Status) ([]BookingWithVehicle, error) {
	var bookings []BookingWithVehicle
	var err error

	if status == "" {
		err = r.db.SelectContext(ctx, &bookings, bookingWithVehicleQuery+` ORDER BY b.created_at DESC`)
	} else {
		err = r.db.SelectContext(ctx, &bookings,
			bookingWithVehicleQuery+` WHERE b.status = $1 ORDER BY b.created_at DESC`, status)
	}
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// HasOverlap reports whether the vehicle already has a live booking touching
// the [start, end) window. Terminal bookings free the vehicle up again.
func (r *repository) HasOverlap(ctx context.Context, vehicleID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE vehicle_id = $1
			  AND status IN ('PENDING', 'CONFIRMED', 'DEPOSIT_PAID', 'RENTAL_PAID', 'IN_PROGRESS')
			  AND start_at < $3 AND end_at > $2
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, vehicleID, start, end)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'PENDING' AND created_at < $1`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, cutoff)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) AddTransaction(ctx context.Context, tx *Transaction) (*Transaction, error) {
	query := `
		INSERT INTO transactions (booking_id, type, status, amount, payment_method, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, booking_id, type, status, amount, payment_method, reference, created_at
	`

	var created Transaction
	err := r.db.GetContext(ctx, &created, query,
		tx.BookingID, tx.Type, tx.Status, tx.Amount, tx.PaymentMethod, tx.Reference)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) ListTransactions(ctx context.Context, bookingID int) ([]Transaction, error) {
	query := `
		SELECT id, booking_id, type, status, amount, payment_method, reference, created_at
		FROM transactions
		WHERE booking_id = $1
		ORDER BY created_at ASC, id ASC
	`

	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs, query, bookingID)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
