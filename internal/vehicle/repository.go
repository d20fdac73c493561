package vehicle

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const vehicleColumns = `id, owner_id, name, plate_number, price_per_day, location, deposit, hold_fee, status, created_at, updated_at`

func (r *repository) Create(ctx context.Context, ownerID int, req CreateVehicleRequest) (*Vehicle, error) {
	query := `
		INSERT INTO vehicles (owner_id, name, plate_number, price_per_day, location, deposit, hold_fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING ` + vehicleColumns

	var v Vehicle
	err := r.db.GetContext(ctx, &v, query,
		ownerID, req.Name, req.PlateNumber, req.PricePerDay, req.Location, req.Deposit, req.HoldFee)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	var v Vehicle
	err := r.db.GetContext(ctx, &v, query, id)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *repository) ListApproved(ctx context.Context) ([]Vehicle, error) {
	return r.listWhere(ctx, `status = 'approved'`)
}

func (r *repository) ListByStatus(ctx context.Context, status ApprovalStatus) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE status = $1 ORDER BY created_at DESC`

	var vehicles []Vehicle
	err := r.db.SelectContext(ctx, &vehicles, query, status)
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_id = $1 ORDER BY created_at DESC`

	var vehicles []Vehicle
	err := r.db.SelectContext(ctx, &vehicles, query, ownerID)
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *repository) listWhere(ctx context.Context, where string) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE ` + where + ` ORDER BY created_at DESC`

	var vehicles []Vehicle
	err := r.db.SelectContext(ctx, &vehicles, query)
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *repository) SetStatus(ctx context.Context, id int, status ApprovalStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrVehicleNotFound
	}

	return nil
}
