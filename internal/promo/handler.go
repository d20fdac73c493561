package promo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// Create godoc
// @Summary      Create promo code
// @Description  Creates a percentage discount code. Admin only.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePromoRequest  true  "Promo data"
// @Success      201      {object}  Promo
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/promos [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), req.Code, req.Percent, req.MaxDiscount, req.MinOrder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// List godoc
// @Summary      List promo codes
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Promo
// @Failure      500  {object}  gin.H
// @Router       /admin/promos [get]
func (h *Handler) List(c *gin.Context) {
	promos, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promos"})
		return
	}

	c.JSON(http.StatusOK, promos)
}

// Deactivate godoc
// @Summary      Deactivate promo code
// @Description  Deactivated codes no longer apply to new quotes or bookings.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        promoID  path      int  true  "Promo ID"
// @Success      200      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /admin/promos/{promoID}/deactivate [post]
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("promoID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promo ID"})
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrPromoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate promo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promo deactivated"})
}
