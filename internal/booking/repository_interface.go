package booking

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	ListByRenter(ctx context.Context, renterID int) ([]Booking, error)
	ListByOwner(ctx context.Context, ownerID int) ([]BookingWithVehicle, error)
	ListAll(ctx context.Context, status Status) ([]BookingWithVehicle, error)
	HasOverlap(ctx context.Context, vehicleID int, start, end time.Time) (bool, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]Booking, error)
	AddTransaction(ctx context.Context, tx *Transaction) (*Transaction, error)
	ListTransactions(ctx context.Context, bookingID int) ([]Transaction, error)
}
