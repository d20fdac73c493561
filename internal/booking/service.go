package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentzy/internal/email"
	"rentzy/internal/logger"
	"rentzy/internal/metrics"
	"rentzy/internal/promo"
	"rentzy/internal/user"
	"rentzy/internal/vehicle"
	"rentzy/internal/wallet"

	"github.com/google/uuid"
)

const PaymentMethodWallet = "wallet"

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleNotAvailable = errors.New("vehicle is not available for these dates")
	ErrOwnVehicle          = errors.New("cannot book your own vehicle")
	ErrNotYours            = errors.New("booking belongs to another user")
	ErrInsufficientFunds   = errors.New("insufficient wallet balance")
	ErrHoldWindowExpired   = errors.New("reservation hold window has expired")
	ErrNothingToPay        = errors.New("no remaining balance to pay")
)

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	Create(ctx context.Context, renterID, vehicleID int, req CreateBookingRequest) (*Booking, *Quote, error)
	GetDetail(ctx context.Context, userID, bookingID int) (*BookingDetail, error)
	PayDeposit(ctx context.Context, userID, bookingID int, method string) (*Booking, error)
	PayRemaining(ctx context.Context, userID, bookingID int, method string) (*Booking, error)
	Cancel(ctx context.Context, userID, bookingID int) (*RefundPlan, error)
	Confirm(ctx context.Context, ownerID, bookingID int) (*Booking, error)
	Reject(ctx context.Context, ownerID, bookingID int) (*Booking, error)
	ConfirmDelivery(ctx context.Context, ownerID, bookingID int) (*Booking, error)
	ConfirmReturn(ctx context.Context, ownerID, bookingID int) (*Booking, error)
	ListMine(ctx context.Context, renterID int) ([]Booking, error)
	ListForOwner(ctx context.Context, ownerID int) ([]BookingWithVehicle, error)
	ListAll(ctx context.Context, status Status) ([]BookingWithVehicle, error)
	ExpirePending(ctx context.Context) (int, error)
}

type BookingDetail struct {
	Booking      *Booking      `json:"booking"`
	Transactions []Transaction `json:"transactions"`
	Payment      PaymentState  `json:"payment"`
}

type service struct {
	bookingRepo  Repository
	vehicleRepo  vehicle.Repository
	promoRepo    promo.Repository
	walletRepo   wallet.Repository
	userRepo     user.Repository
	emailService *email.Service
	loc          *time.Location
	now          func() time.Time
}

func NewService(
	bookingRepo Repository,
	vehicleRepo vehicle.Repository,
	promoRepo promo.Repository,
	walletRepo wallet.Repository,
	userRepo user.Repository,
	emailService *email.Service,
	loc *time.Location,
) Service {
	return &service{
		bookingRepo:  bookingRepo,
		vehicleRepo:  vehicleRepo,
		promoRepo:    promoRepo,
		walletRepo:   walletRepo,
		userRepo:     userRepo,
		emailService: emailService,
		loc:          loc,
		now:          time.Now,
	}
}

// quoteFor resolves the vehicle and promo and prices the rental. The promo
// discount is computed against rentalFee+deliveryFee and applied once.
func (s *service) quoteFor(ctx context.Context, v *vehicle.Vehicle, startDate, endDate, pickupTime, returnTime, pickupLocation, promoCode string) (*Quote, time.Time, time.Time, error) {
	start, err := CombineDateTime(startDate, pickupTime, s.loc)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	end, err := CombineDateTime(endDate, returnTime, s.loc)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}

	in := PricingInput{
		PricePerDay:     v.PricePerDay,
		VehicleLocation: v.Location,
		Deposit:         v.Deposit,
		HoldFee:         v.HoldFee,
		PickupLocation:  pickupLocation,
		Start:           start,
		End:             end,
	}

	base, err := ComputeRentalCost(in)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}

	if promoCode != "" {
		p, err := s.promoRepo.GetActiveByCode(ctx, promoCode)
		if err == nil {
			in.Discount = PromoDiscount(p, base.RentalFee+base.DeliveryFee)
		}
	}

	q, err := ComputeRentalCost(in)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	return q, start, end, nil
}

func (s *service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	v, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, ErrVehicleNotFound
	}

	q, _, _, err := s.quoteFor(ctx, v, req.StartDate, req.EndDate, req.PickupTime, req.ReturnTime, req.PickupLocation, req.PromoCode)
	return q, err
}

func (s *service) Create(ctx context.Context, renterID, vehicleID int, req CreateBookingRequest) (*Booking, *Quote, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, nil, ErrVehicleNotFound
	}
	if v.Status != vehicle.StatusApproved {
		return nil, nil, ErrVehicleNotAvailable
	}
	if v.OwnerID == renterID {
		return nil, nil, ErrOwnVehicle
	}

	q, start, end, err := s.quoteFor(ctx, v, req.StartDate, req.EndDate, req.PickupTime, req.ReturnTime, req.PickupLocation, req.PromoCode)
	if err != nil {
		return nil, nil, err
	}
	if !end.After(start) {
		return nil, nil, ErrInvalidDateRange
	}

	overlap, err := s.bookingRepo.HasOverlap(ctx, vehicleID, start, end)
	if err != nil {
		return nil, nil, err
	}
	if overlap {
		return nil, nil, ErrVehicleNotAvailable
	}

	pickup := req.PickupLocation
	if pickup == "" {
		pickup = v.Location
	}
	ret := req.ReturnLocation
	if ret == "" {
		ret = v.Location
	}

	b := &Booking{
		RenterID:       renterID,
		VehicleID:      vehicleID,
		StartAt:        start,
		EndAt:          end,
		PickupLocation: pickup,
		ReturnLocation: ret,
		TotalDays:      q.TotalDays,
		RentalFee:      q.RentalFee,
		DeliveryFee:    q.DeliveryFee,
		Deposit:        q.Deposit,
		HoldFee:        q.HoldFee,
		Discount:       q.Discount,
		TotalAmount:    q.TotalAmount,
		Status:         StatusPending,
	}
	if req.PromoCode != "" && q.Discount > 0 {
		code := req.PromoCode
		b.PromoCode = &code
	}

	created, err := s.bookingRepo.Create(ctx, b)
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordBooking(string(StatusPending))
	return created, q, nil
}

func (s *service) GetDetail(ctx context.Context, userID, bookingID int) (*BookingDetail, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.RenterID != userID {
		v, err := s.vehicleRepo.GetByID(ctx, b.VehicleID)
		if err != nil || v.OwnerID != userID {
			return nil, ErrNotYours
		}
	}

	txs, err := s.bookingRepo.ListTransactions(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	return &BookingDetail{
		Booking:      b,
		Transactions: txs,
		Payment:      ClassifyPaymentState(b, txs),
	}, nil
}

func (s *service) PayDeposit(ctx context.Context, userID, bookingID int, method string) (*Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.RenterID != userID {
		return nil, ErrNotYours
	}

	now := s.now()
	if b.Status == StatusPending && !WithinHoldWindow(b.CreatedAt, now) {
		if err := ApplyTransition(b, StatusExpired, now); err == nil {
			if err := s.bookingRepo.Update(ctx, b); err != nil {
				return nil, err
			}
			metrics.RecordBookingExpired()
		}
		return nil, ErrHoldWindowExpired
	}
	if !CanTransition(b.Status, StatusDepositPaid) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, b.Status, StatusDepositPaid)
	}

	if method == PaymentMethodWallet {
		if err := s.walletRepo.AddTransaction(ctx, userID, -b.HoldFee, "booking_deposit"); err != nil {
			if errors.Is(err, wallet.ErrInsufficientBalance) {
				return nil, ErrInsufficientFunds
			}
			return nil, err
		}
	}

	if _, err := s.bookingRepo.AddTransaction(ctx, &Transaction{
		BookingID:     b.ID,
		Type:          TxDeposit,
		Status:        TxStatusCompleted,
		Amount:        b.HoldFee,
		PaymentMethod: method,
		Reference:     uuid.NewString(),
	}); err != nil {
		return nil, err
	}

	if err := ApplyTransition(b, StatusDepositPaid, now); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(StatusDepositPaid))
	s.notifyConfirmation(ctx, b)
	return b, nil
}

func (s *service) PayRemaining(ctx context.Context, userID, bookingID int, method string) (*Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.RenterID != userID {
		return nil, ErrNotYours
	}

	txs, err := s.bookingRepo.ListTransactions(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	state := ClassifyPaymentState(b, txs)
	if !state.CanPayRemaining {
		return nil, ErrNothingToPay
	}

	if method == PaymentMethodWallet {
		if err := s.walletRepo.AddTransaction(ctx, userID, -state.Remaining, "booking_payment"); err != nil {
			if errors.Is(err, wallet.ErrInsufficientBalance) {
				return nil, ErrInsufficientFunds
			}
			return nil, err
		}
	}

	if _, err := s.bookingRepo.AddTransaction(ctx, &Transaction{
		BookingID:     b.ID,
		Type:          TxRental,
		Status:        TxStatusCompleted,
		Amount:        state.Remaining,
		PaymentMethod: method,
		Reference:     uuid.NewString(),
	}); err != nil {
		return nil, err
	}

	if err := ApplyTransition(b, StatusRentalPaid, s.now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(StatusRentalPaid))
	return b, nil
}

func (s *service) Cancel(ctx context.Context, userID, bookingID int) (*RefundPlan, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.RenterID != userID {
		return nil, ErrNotYours
	}

	txs, err := s.bookingRepo.ListTransactions(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plan, err := ComputeCancellationRefund(b, txs, now)
	if err != nil {
		return nil, err
	}

	if err := ApplyTransition(b, StatusCanceled, now); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	if _, err := s.bookingRepo.AddTransaction(ctx, &Transaction{
		BookingID:     b.ID,
		Type:          TxCancellation,
		Status:        TxStatusCompleted,
		Amount:        0,
		PaymentMethod: PaymentMethodWallet,
		Reference:     uuid.NewString(),
	}); err != nil {
		return nil, err
	}

	if plan.TotalRefund > 0 {
		if err := s.refundToWallet(ctx, b, plan.TotalRefund); err != nil {
			return nil, err
		}
	}

	metrics.RecordBookingCancellation()
	metrics.RecordRefund(plan.TotalRefund)
	s.notifyCancellation(ctx, b, plan.TotalRefund)
	return plan, nil
}

// refundToWallet credits the renter and records the movement on the booking.
func (s *service) refundToWallet(ctx context.Context, b *Booking, amount int64) error {
	if err := s.walletRepo.AddTransaction(ctx, b.RenterID, amount, "booking_refund"); err != nil {
		return err
	}
	_, err := s.bookingRepo.AddTransaction(ctx, &Transaction{
		BookingID:     b.ID,
		Type:          TxRefund,
		Status:        TxStatusCompleted,
		Amount:        amount,
		PaymentMethod: PaymentMethodWallet,
		Reference:     uuid.NewString(),
	})
	return err
}

// ownedBooking loads a booking and checks the caller owns the vehicle.
func (s *service) ownedBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	v, err := s.vehicleRepo.GetByID(ctx, b.VehicleID)
	if err != nil {
		return nil, ErrVehicleNotFound
	}
	if v.OwnerID != ownerID {
		return nil, ErrNotYours
	}
	return b, nil
}

func (s *service) transitionOwned(ctx context.Context, ownerID, bookingID int, to Status) (*Booking, error) {
	b, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(b, to, s.now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	metrics.RecordBooking(string(to))
	return b, nil
}

func (s *service) Confirm(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	return s.transitionOwned(ctx, ownerID, bookingID, StatusConfirmed)
}

// Reject refuses a booking and returns everything the renter has paid so far.
func (s *service) Reject(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	b, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	txs, err := s.bookingRepo.ListTransactions(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	paid := paidTotal(txs)

	if err := ApplyTransition(b, StatusRejected, s.now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	if paid > 0 {
		if err := s.refundToWallet(ctx, b, paid); err != nil {
			return nil, err
		}
		metrics.RecordRefund(paid)
	}

	metrics.RecordBooking(string(StatusRejected))
	return b, nil
}

func (s *service) ConfirmDelivery(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	return s.transitionOwned(ctx, ownerID, bookingID, StatusInProgress)
}

// ConfirmReturn closes the trip and settles the security deposit back to the
// renter's wallet.
func (s *service) ConfirmReturn(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	b, err := s.transitionOwned(ctx, ownerID, bookingID, StatusCompleted)
	if err != nil {
		return nil, err
	}

	if b.Deposit > 0 {
		if err := s.refundToWallet(ctx, b, b.Deposit); err != nil {
			return nil, err
		}
		metrics.RecordRefund(b.Deposit)
	}

	return b, nil
}

func (s *service) ListMine(ctx context.Context, renterID int) ([]Booking, error) {
	return s.bookingRepo.ListByRenter(ctx, renterID)
}

func (s *service) ListForOwner(ctx context.Context, ownerID int) ([]BookingWithVehicle, error) {
	return s.bookingRepo.ListByOwner(ctx, ownerID)
}

func (s *service) ListAll(ctx context.Context, status Status) ([]BookingWithVehicle, error) {
	return s.bookingRepo.ListAll(ctx, status)
}

// ExpirePending sweeps PENDING bookings whose 10-minute hold has lapsed
// without a deposit payment. Called from a ticker in main.
func (s *service) ExpirePending(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.bookingRepo.ListExpiredPending(ctx, now.Add(-ReservationHoldWindow))
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		b := &stale[i]
		if err := ApplyTransition(b, StatusExpired, now); err != nil {
			continue
		}
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			logger.Errorf("Failed to expire booking %d: %v", b.ID, err)
			continue
		}
		metrics.RecordBookingExpired()
		expired++
	}
	return expired, nil
}

func (s *service) notifyConfirmation(ctx context.Context, b *Booking) {
	if s.emailService == nil {
		return
	}
	u, err := s.userRepo.FindByID(ctx, b.RenterID)
	if err != nil || u == nil {
		return
	}
	v, err := s.vehicleRepo.GetByID(ctx, b.VehicleID)
	if err != nil {
		return
	}
	s.emailService.SendBookingConfirmation(ctx, u.Email, u.Name, v.Name, b.StartAt, b.EndAt)
}

func (s *service) notifyCancellation(ctx context.Context, b *Booking, refund int64) {
	if s.emailService == nil {
		return
	}
	u, err := s.userRepo.FindByID(ctx, b.RenterID)
	if err != nil || u == nil {
		return
	}
	s.emailService.SendCancellation(ctx, u.Email, u.Name, refund)
}
