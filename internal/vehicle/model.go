package vehicle

import "time"

type ApprovalStatus string

const (
	StatusPendingApproval ApprovalStatus = "pending"
	StatusApproved        ApprovalStatus = "approved"
	StatusRejected        ApprovalStatus = "rejected"
)

// Vehicle amounts are VND. HoldFee of 0 means the marketplace default
// reservation fee applies.
type Vehicle struct {
	ID          int            `db:"id" json:"id"`
	OwnerID     int            `db:"owner_id" json:"owner_id"`
	Name        string         `db:"name" json:"name"`
	PlateNumber string         `db:"plate_number" json:"plate_number"`
	PricePerDay int64          `db:"price_per_day" json:"price_per_day"`
	Location    string         `db:"location" json:"location"`
	Deposit     int64          `db:"deposit" json:"deposit"`
	HoldFee     int64          `db:"hold_fee" json:"hold_fee"`
	Status      ApprovalStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type CreateVehicleRequest struct {
	Name        string `json:"name" binding:"required"`
	PlateNumber string `json:"plate_number" binding:"required"`
	PricePerDay int64  `json:"price_per_day" binding:"required,gt=0"`
	Location    string `json:"location" binding:"required"`
	Deposit     int64  `json:"deposit" binding:"gte=0"`
	HoldFee     int64  `json:"hold_fee" binding:"gte=0"`
}
