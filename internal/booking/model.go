package booking

import "time"

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusConfirmed   Status = "CONFIRMED"
	StatusDepositPaid Status = "DEPOSIT_PAID"
	StatusRentalPaid  Status = "RENTAL_PAID"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusCompleted   Status = "COMPLETED"
	StatusCanceled    Status = "CANCELED"
	StatusRejected    Status = "REJECTED"
	StatusExpired     Status = "EXPIRED"
)

type TransactionType string

const (
	TxDeposit        TransactionType = "DEPOSIT"
	TxRental         TransactionType = "RENTAL"
	TxRefund         TransactionType = "REFUND"
	TxWalletDeposit  TransactionType = "WALLET_DEPOSIT"
	TxWalletWithdraw TransactionType = "WALLET_WITHDRAW"
	TxPayment        TransactionType = "PAYMENT"
	TxCancellation   TransactionType = "CANCELLATION"
)

type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "PENDING"
	TxStatusCompleted TransactionStatus = "COMPLETED"
	TxStatusFailed    TransactionStatus = "FAILED"
	TxStatusCanceled  TransactionStatus = "CANCELED"
	TxStatusRefunded  TransactionStatus = "REFUNDED"
)

type Booking struct {
	ID             int       `db:"id" json:"id"`
	RenterID       int       `db:"renter_id" json:"renter_id"`
	VehicleID      int       `db:"vehicle_id" json:"vehicle_id"`
	StartAt        time.Time `db:"start_at" json:"start_at"`
	EndAt          time.Time `db:"end_at" json:"end_at"`
	PickupLocation string    `db:"pickup_location" json:"pickup_location"`
	ReturnLocation string    `db:"return_location" json:"return_location"`
	TotalDays      int       `db:"total_days" json:"total_days"`
	RentalFee      int64     `db:"rental_fee" json:"rental_fee"`
	DeliveryFee    int64     `db:"delivery_fee" json:"delivery_fee"`
	Deposit        int64     `db:"deposit" json:"deposit"`
	HoldFee        int64     `db:"hold_fee" json:"hold_fee"`
	Discount       int64     `db:"discount" json:"discount"`
	TotalAmount    int64     `db:"total_amount" json:"total_amount"`
	PromoCode      *string   `db:"promo_code" json:"promo_code,omitempty"`
	Status         Status    `db:"status" json:"status"`

	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	ConfirmedAt   *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	DepositPaidAt *time.Time `db:"deposit_paid_at" json:"deposit_paid_at,omitempty"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	StartedAt     *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CanceledAt    *time.Time `db:"canceled_at" json:"canceled_at,omitempty"`
}

// Transaction is an immutable record of one money movement tied to a booking.
type Transaction struct {
	ID            int               `db:"id" json:"id"`
	BookingID     int               `db:"booking_id" json:"booking_id"`
	Type          TransactionType   `db:"type" json:"type"`
	Status        TransactionStatus `db:"status" json:"status"`
	Amount        int64             `db:"amount" json:"amount"`
	PaymentMethod string            `db:"payment_method" json:"payment_method"`
	Reference     string            `db:"reference" json:"reference"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

type BookingWithVehicle struct {
	Booking
	VehicleName     string `db:"vehicle_name" json:"vehicle_name"`
	VehicleLocation string `db:"vehicle_location" json:"vehicle_location"`
	OwnerID         int    `db:"owner_id" json:"owner_id"`
}

type QuoteRequest struct {
	VehicleID      int    `json:"vehicle_id" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	PickupTime     string `json:"pickup_time" binding:"required"`
	ReturnTime     string `json:"return_time" binding:"required"`
	PickupLocation string `json:"pickup_location"`
	ReturnLocation string `json:"return_location"`
	PromoCode      string `json:"promo_code"`
}

type CreateBookingRequest struct {
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	PickupTime     string `json:"pickup_time" binding:"required"`
	ReturnTime     string `json:"return_time" binding:"required"`
	PickupLocation string `json:"pickup_location"`
	ReturnLocation string `json:"return_location"`
	PromoCode      string `json:"promo_code"`
}

type PayRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type CreateBookingResponse struct {
	Booking *Booking `json:"booking"`
	Quote   *Quote   `json:"quote"`
}

type CancelBookingResponse struct {
	Message string      `json:"message" example:"Booking canceled"`
	Refund  *RefundPlan `json:"refund"`
}
