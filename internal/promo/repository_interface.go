package promo

import "context"

type Repository interface {
	Create(ctx context.Context, code string, percent float64, maxDiscount, minOrder int64) (*Promo, error)
	GetActiveByCode(ctx context.Context, code string) (*Promo, error)
	List(ctx context.Context) ([]Promo, error)
	Deactivate(ctx context.Context, id int) error
}
