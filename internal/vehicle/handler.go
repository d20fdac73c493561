package vehicle

import (
	"net/http"
	"strconv"

	"rentzy/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		service: NewService(NewRepository(db)),
	}
}

// Create godoc
// @Summary      Submit vehicle
// @Description  Submits a vehicle for admin approval. Owner only.
// @Tags         vehicles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateVehicleRequest  true  "Vehicle data"
// @Success      201      {object}  Vehicle
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /vehicles [post]
func (h *Handler) Create(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.service.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}

	c.JSON(http.StatusCreated, v)
}

// ListApproved godoc
// @Summary      List vehicles
// @Description  Returns all approved vehicles available for rent.
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Vehicle
// @Failure      500  {object}  gin.H
// @Router       /vehicles [get]
func (h *Handler) ListApproved(c *gin.Context) {
	vehicles, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// GetByID godoc
// @Summary      Get vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        vehicleID  path      int  true  "Vehicle ID"
// @Success      200        {object}  Vehicle
// @Failure      404        {object}  gin.H
// @Router       /vehicles/{vehicleID} [get]
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	v, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, v)
}

// ListMine godoc
// @Summary      List my vehicles
// @Description  Returns vehicles of the authenticated owner, in every approval state.
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Vehicle
// @Failure      500  {object}  gin.H
// @Router       /vehicles/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vehicles, err := h.service.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// ListForAdmin godoc
// @Summary      List vehicles by approval status
// @Description  Returns vehicles filtered by approval status. Admin only.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Approval status (pending, approved, rejected)"
// @Success      200     {array}   Vehicle
// @Failure      500     {object}  gin.H
// @Router       /admin/vehicles [get]
func (h *Handler) ListForAdmin(c *gin.Context) {
	status := ApprovalStatus(c.DefaultQuery("status", string(StatusPendingApproval)))

	vehicles, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// Approve godoc
// @Summary      Approve vehicle
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        vehicleID  path      int  true  "Vehicle ID"
// @Success      200        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /admin/vehicles/{vehicleID}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	h.setStatus(c, StatusApproved)
}

// RejectVehicle godoc
// @Summary      Reject vehicle
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        vehicleID  path      int  true  "Vehicle ID"
// @Success      200        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /admin/vehicles/{vehicleID}/reject [post]
func (h *Handler) RejectVehicle(c *gin.Context) {
	h.setStatus(c, StatusRejected)
}

func (h *Handler) setStatus(c *gin.Context, status ApprovalStatus) {
	id, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var serviceErr error
	if status == StatusApproved {
		serviceErr = h.service.Approve(c.Request.Context(), id)
	} else {
		serviceErr = h.service.Reject(c.Request.Context(), id)
	}
	if serviceErr != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle " + string(status)})
}
