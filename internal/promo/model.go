package promo

import "time"

// Promo is one discount rule: a percentage off the rental subtotal, capped,
// and only applicable above a minimum order.
type Promo struct {
	ID          int       `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Percent     float64   `db:"percent" json:"percent"`
	MaxDiscount int64     `db:"max_discount" json:"max_discount"`
	MinOrder    int64     `db:"min_order" json:"min_order"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreatePromoRequest struct {
	Code        string  `json:"code" binding:"required"`
	Percent     float64 `json:"percent" binding:"required,gt=0,lte=1"`
	MaxDiscount int64   `json:"max_discount" binding:"required,gt=0"`
	MinOrder    int64   `json:"min_order" binding:"gte=0"`
}
