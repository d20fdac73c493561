package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rentzy/internal/auth"
	"rentzy/internal/email"
	"rentzy/internal/promo"
	"rentzy/internal/user"
	"rentzy/internal/vehicle"
	"rentzy/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, emailService *email.Service, loc *time.Location) *Handler {
	return &Handler{
		service: NewService(
			NewRepository(db),
			vehicle.NewRepository(db),
			promo.NewRepository(db),
			wallet.NewRepository(db),
			user.NewRepository(db),
			emailService,
			loc,
		),
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotYours):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrVehicleNotAvailable), errors.Is(err, ErrHoldWindowExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrCannotCancelStartedTrip),
		errors.Is(err, ErrOwnVehicle),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrNothingToPay):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GetQuote godoc
// @Summary      Price a rental
// @Description  Computes the full cost breakdown for a prospective booking without creating it.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      QuoteRequest  true  "Rental parameters"
// @Success      200      {object}  Quote
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /quotes [post]
func (h *Handler) GetQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := h.service.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, q)
}

// Book godoc
// @Summary      Book vehicle
// @Description  Creates a PENDING booking for the vehicle. The reservation fee must be paid within the 10-minute hold window.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        vehicleID  path      int                   true  "Vehicle ID"
// @Param        request    body      CreateBookingRequest  true  "Booking data"
// @Success      201        {object}  CreateBookingResponse
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Failure      409        {object}  gin.H
// @Router       /vehicles/{vehicleID}/book [post]
func (h *Handler) Book(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, q, err := h.service.Create(c.Request.Context(), userID, vehicleID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateBookingResponse{Booking: b, Quote: q})
}

// ListMyBookings godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Booking
// @Failure      500  {object}  gin.H
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookings, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking godoc
// @Summary      Booking detail
// @Description  Returns the booking, its transaction history and the paid/remaining split.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  BookingDetail
// @Failure      403        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// PayDeposit godoc
// @Summary      Pay reservation fee
// @Description  Pays the hold fee. Moves the booking to DEPOSIT_PAID.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int         true  "Booking ID"
// @Param        request    body      PayRequest  true  "Payment method"
// @Success      200        {object}  Booking
// @Failure      400        {object}  gin.H
// @Failure      409        {object}  gin.H
// @Router       /bookings/{bookingID}/deposit [post]
func (h *Handler) PayDeposit(c *gin.Context) {
	h.pay(c, h.service.PayDeposit)
}

// PayRemaining godoc
// @Summary      Pay remaining balance
// @Description  Pays everything still owed. Moves the booking to RENTAL_PAID.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int         true  "Booking ID"
// @Param        request    body      PayRequest  true  "Payment method"
// @Success      200        {object}  Booking
// @Failure      400        {object}  gin.H
// @Router       /bookings/{bookingID}/pay [post]
func (h *Handler) PayRemaining(c *gin.Context) {
	h.pay(c, h.service.PayRemaining)
}

func (h *Handler) pay(c *gin.Context, fn func(ctx context.Context, userID, bookingID int, method string) (*Booking, error)) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := fn(c.Request.Context(), userID, bookingID, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Cancels a booking that has not started yet and credits the refund to the renter's wallet.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  CancelBookingResponse
// @Failure      400        {object}  gin.H
// @Failure      403        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	plan, err := h.service.Cancel(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CancelBookingResponse{Message: "Booking canceled", Refund: plan})
}

// Confirm godoc
// @Summary      Confirm booking (owner)
// @Tags         owner
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      400        {object}  gin.H
// @Router       /bookings/{bookingID}/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	h.ownerAction(c, h.service.Confirm)
}

// Reject godoc
// @Summary      Reject booking (owner)
// @Description  Rejects the booking and refunds everything paid so far to the renter's wallet.
// @Tags         owner
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      400        {object}  gin.H
// @Router       /bookings/{bookingID}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	h.ownerAction(c, h.service.Reject)
}

// ConfirmDelivery godoc
// @Summary      Confirm vehicle handed over (owner)
// @Tags         owner
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      400        {object}  gin.H
// @Router       /bookings/{bookingID}/delivery [post]
func (h *Handler) ConfirmDelivery(c *gin.Context) {
	h.ownerAction(c, h.service.ConfirmDelivery)
}

// ConfirmReturn godoc
// @Summary      Confirm vehicle returned (owner)
// @Description  Completes the trip and settles the security deposit back to the renter.
// @Tags         owner
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      400        {object}  gin.H
// @Router       /bookings/{bookingID}/return [post]
func (h *Handler) ConfirmReturn(c *gin.Context) {
	h.ownerAction(c, h.service.ConfirmReturn)
}

func (h *Handler) ownerAction(c *gin.Context, fn func(ctx context.Context, ownerID, bookingID int) (*Booking, error)) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	b, err := fn(c.Request.Context(), ownerID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListOwnerBookings godoc
// @Summary      List bookings on my vehicles
// @Tags         owner
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithVehicle
// @Failure      500  {object}  gin.H
// @Router       /owner/bookings [get]
func (h *Handler) ListOwnerBookings(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookings, err := h.service.ListForOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListAllBookings godoc
// @Summary      List all bookings
// @Description  Returns every booking, optionally filtered by status. Admin only.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Booking status"
// @Success      200     {array}   BookingWithVehicle
// @Failure      500     {object}  gin.H
// @Router       /admin/bookings [get]
func (h *Handler) ListAllBookings(c *gin.Context) {
	status := Status(c.Query("status"))

	bookings, err := h.service.ListAll(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}
