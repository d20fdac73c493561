package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Quote), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, renterID, vehicleID int, req CreateBookingRequest) (*Booking, *Quote, error) {
	args := m.Called(ctx, renterID, vehicleID, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*Booking), args.Get(1).(*Quote), args.Error(2)
}

func (m *MockService) GetDetail(ctx context.Context, userID, bookingID int) (*BookingDetail, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingDetail), args.Error(1)
}

func (m *MockService) PayDeposit(ctx context.Context, userID, bookingID int, method string) (*Booking, error) {
	args := m.Called(ctx, userID, bookingID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) PayRemaining(ctx context.Context, userID, bookingID int, method string) (*Booking, error) {
	args := m.Called(ctx, userID, bookingID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) Cancel(ctx context.Context, userID, bookingID int) (*RefundPlan, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RefundPlan), args.Error(1)
}

func (m *MockService) Confirm(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) Reject(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ConfirmDelivery(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ConfirmReturn(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ListMine(ctx context.Context, renterID int) ([]Booking, error) {
	args := m.Called(ctx, renterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockService) ListForOwner(ctx context.Context, ownerID int) ([]BookingWithVehicle, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithVehicle), args.Error(1)
}

func (m *MockService) ListAll(ctx context.Context, status Status) ([]BookingWithVehicle, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithVehicle), args.Error(1)
}

func (m *MockService) ExpirePending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func setupHandlerTest(userID int) (*gin.Engine, *MockService) {
	gin.SetMode(gin.TestMode)
	svc := new(MockService)
	h := &Handler{service: svc}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	router.POST("/quotes", h.GetQuote)
	router.POST("/vehicles/:vehicleID/book", h.Book)
	router.GET("/bookings", h.ListMyBookings)
	router.GET("/bookings/:bookingID", h.GetBooking)
	router.POST("/bookings/:bookingID/deposit", h.PayDeposit)
	router.POST("/bookings/:bookingID/pay", h.PayRemaining)
	router.POST("/bookings/:bookingID/cancel", h.Cancel)
	router.POST("/bookings/:bookingID/confirm", h.Confirm)

	return router, svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_GetQuote(t *testing.T) {
	router, svc := setupHandlerTest(1)

	req := QuoteRequest{
		VehicleID:  7,
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
		PickupTime: "09:00",
		ReturnTime: "09:00",
	}
	svc.On("Quote", mock.Anything, req).Return(&Quote{
		TotalDays:   2,
		RentalFee:   1600000,
		HoldFee:     500000,
		Deposit:     2000000,
		FinalAmount: 1600000,
		TotalAmount: 4100000,
	}, nil)

	w := doJSON(t, router, http.MethodPost, "/quotes", req)

	require.Equal(t, http.StatusOK, w.Code)
	var got Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(4100000), got.TotalAmount)
}

func TestHandler_GetQuote_BadRequest(t *testing.T) {
	router, _ := setupHandlerTest(1)

	w := doJSON(t, router, http.MethodPost, "/quotes", map[string]interface{}{"vehicle_id": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Book(t *testing.T) {
	router, svc := setupHandlerTest(1)

	req := CreateBookingRequest{
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
		PickupTime: "09:00",
		ReturnTime: "09:00",
	}

	t.Run("created", func(t *testing.T) {
		svc.On("Create", mock.Anything, 1, 7, req).
			Return(&Booking{ID: 10, Status: StatusPending}, &Quote{TotalAmount: 4100000}, nil).Once()

		w := doJSON(t, router, http.MethodPost, "/vehicles/7/book", req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp CreateBookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 10, resp.Booking.ID)
	})

	t.Run("overlap maps to 409", func(t *testing.T) {
		svc.On("Create", mock.Anything, 1, 7, req).
			Return(nil, nil, ErrVehicleNotAvailable).Once()

		w := doJSON(t, router, http.MethodPost, "/vehicles/7/book", req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown vehicle maps to 404", func(t *testing.T) {
		svc.On("Create", mock.Anything, 1, 7, req).
			Return(nil, nil, ErrVehicleNotFound).Once()

		w := doJSON(t, router, http.MethodPost, "/vehicles/7/book", req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid vehicle id", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/vehicles/abc/book", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_PayDeposit(t *testing.T) {
	router, svc := setupHandlerTest(1)

	t.Run("ok", func(t *testing.T) {
		svc.On("PayDeposit", mock.Anything, 1, 10, "wallet").
			Return(&Booking{ID: 10, Status: StatusDepositPaid}, nil).Once()

		w := doJSON(t, router, http.MethodPost, "/bookings/10/deposit", PayRequest{PaymentMethod: "wallet"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("expired hold maps to 409", func(t *testing.T) {
		svc.On("PayDeposit", mock.Anything, 1, 10, "wallet").
			Return(nil, ErrHoldWindowExpired).Once()

		w := doJSON(t, router, http.MethodPost, "/bookings/10/deposit", PayRequest{PaymentMethod: "wallet"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("insufficient funds maps to 400", func(t *testing.T) {
		svc.On("PayDeposit", mock.Anything, 1, 10, "wallet").
			Return(nil, ErrInsufficientFunds).Once()

		w := doJSON(t, router, http.MethodPost, "/bookings/10/deposit", PayRequest{PaymentMethod: "wallet"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing payment method", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/bookings/10/deposit", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Cancel(t *testing.T) {
	router, svc := setupHandlerTest(1)

	t.Run("refund plan returned", func(t *testing.T) {
		svc.On("Cancel", mock.Anything, 1, 10).Return(&RefundPlan{
			ReservationRefund: 500000,
			TotalRefund:       500000,
			DaysUntilStart:    11,
			CanCancel:         true,
		}, nil).Once()

		w := doJSON(t, router, http.MethodPost, "/bookings/10/cancel", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp CancelBookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(500000), resp.Refund.TotalRefund)
	})

	t.Run("started trip maps to 400", func(t *testing.T) {
		svc.On("Cancel", mock.Anything, 1, 10).Return(nil, ErrCannotCancelStartedTrip).Once()

		w := doJSON(t, router, http.MethodPost, "/bookings/10/cancel", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("foreign booking maps to 403", func(t *testing.T) {
		svc.On("Cancel", mock.Anything, 1, 10).Return(nil, ErrNotYours).Once()

		w := doJSON(t, router, http.MethodPost, "/bookings/10/cancel", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_GetBooking(t *testing.T) {
	router, svc := setupHandlerTest(1)

	now := time.Now()
	svc.On("GetDetail", mock.Anything, 1, 10).Return(&BookingDetail{
		Booking: &Booking{ID: 10, Status: StatusDepositPaid, TotalAmount: 4100000, CreatedAt: now},
		Transactions: []Transaction{
			{Type: TxDeposit, Status: TxStatusCompleted, Amount: 500000},
		},
		Payment: PaymentState{TotalPaid: 500000, Remaining: 3600000, CanPayRemaining: true},
	}, nil)

	w := doJSON(t, router, http.MethodGet, "/bookings/10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var detail BookingDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, int64(3600000), detail.Payment.Remaining)
	assert.True(t, detail.Payment.CanPayRemaining)
}

func TestHandler_Confirm(t *testing.T) {
	router, svc := setupHandlerTest(2)

	svc.On("Confirm", mock.Anything, 2, 10).
		Return(&Booking{ID: 10, Status: StatusConfirmed}, nil)

	w := doJSON(t, router, http.MethodPost, "/bookings/10/confirm", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, StatusConfirmed, got.Status)
}
