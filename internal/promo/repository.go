package promo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPromoNotFound = errors.New("promo code not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, code string, percent float64, maxDiscount, minOrder int64) (*Promo, error) {
	query := `
		INSERT INTO promos (code, percent, max_discount, min_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, percent, max_discount, min_order, active, created_at
	`

	var p Promo
	err := r.db.GetContext(ctx, &p, query, code, percent, maxDiscount, minOrder)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetActiveByCode(ctx context.Context, code string) (*Promo, error) {
	query := `
		SELECT id, code, percent, max_discount, min_order, active, created_at
		FROM promos
		WHERE code = $1 AND active = TRUE
	`

	var p Promo
	err := r.db.GetContext(ctx, &p, query, code)
	if err != nil {
		return nil, ErrPromoNotFound
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Promo, error) {
	query := `
		SELECT id, code, percent, max_discount, min_order, active, created_at
		FROM promos
		ORDER BY created_at DESC
	`

	var promos []Promo
	err := r.db.SelectContext(ctx, &promos, query)
	if err != nil {
		return nil, err
	}

	return promos, nil
}

func (r *repository) Deactivate(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE promos SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrPromoNotFound
	}

	return nil
}
