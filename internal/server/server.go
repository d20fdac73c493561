package server

import (
	"context"
	"net/http"

	"rentzy/internal/auth"
	"rentzy/internal/booking"
	"rentzy/internal/config"
	"rentzy/internal/email"
	"rentzy/internal/promo"
	"rentzy/internal/user"
	"rentzy/internal/vehicle"
	"rentzy/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	loc := cfg.Location()

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	vehicleHandler := vehicle.NewHandler(db)
	bookingHandler := booking.NewHandler(db, emailService, loc)
	walletHandler := wallet.NewHandler(db)
	promoHandler := promo.NewHandler(db)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/vehicles", vehicleHandler.ListApproved)
		protected.GET("/vehicles/mine", auth.RequireRole("owner"), vehicleHandler.ListMine)
		protected.GET("/vehicles/:vehicleID", vehicleHandler.GetByID)
		protected.POST("/vehicles", auth.RequireRole("owner"), vehicleHandler.Create)
		protected.POST("/vehicles/:vehicleID/book", bookingHandler.Book)

		protected.POST("/quotes", bookingHandler.GetQuote)

		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.GET("/bookings/:bookingID", bookingHandler.GetBooking)
		protected.POST("/bookings/:bookingID/deposit", bookingHandler.PayDeposit)
		protected.POST("/bookings/:bookingID/pay", bookingHandler.PayRemaining)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.Cancel)

		ownerOnly := auth.RequireRole("owner")
		protected.GET("/owner/bookings", ownerOnly, bookingHandler.ListOwnerBookings)
		protected.POST("/bookings/:bookingID/confirm", ownerOnly, bookingHandler.Confirm)
		protected.POST("/bookings/:bookingID/reject", ownerOnly, bookingHandler.Reject)
		protected.POST("/bookings/:bookingID/delivery", ownerOnly, bookingHandler.ConfirmDelivery)
		protected.POST("/bookings/:bookingID/return", ownerOnly, bookingHandler.ConfirmReturn)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.POST("/wallet/topup", walletHandler.TopUp)
		protected.POST("/wallet/withdraw", walletHandler.Withdraw)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/vehicles", vehicleHandler.ListForAdmin)
		admin.POST("/vehicles/:vehicleID/approve", vehicleHandler.Approve)
		admin.POST("/vehicles/:vehicleID/reject", vehicleHandler.RejectVehicle)
		admin.GET("/bookings", bookingHandler.ListAllBookings)
		admin.GET("/promos", promoHandler.List)
		admin.POST("/promos", promoHandler.Create)
		admin.POST("/promos/:promoID/deactivate", promoHandler.Deactivate)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
