package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petmily/service-reservation/internal/application"
	"github.com/petmily/service-reservation/internal/platform/auth"
	"github.com/petmily/service-reservation/internal/platform/middleware"
	"github.com/petmily/service-reservation/internal/platform/response"
)

// ReservationHandler handles HTTP requests for reservation operations.
type ReservationHandler struct {
	service *application.ReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(service *application.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes registers all reservation routes on the given router group.
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	memberRole := middleware.RequireRole(auth.RoleMember)
	petsitterRole := middleware.RequireRole(auth.RolePetsitter)

	reservations := r.Group("/api/v1/reservations")
	reservations.Use(authMW)
	{
		reservations.POST("/petsitters", h.FindPossiblePetsitters)
		reservations.POST("", memberRole, h.CreateReservation)
		reservations.GET("/member", memberRole, h.MemberReservations)
		reservations.GET("/petsitter", petsitterRole, h.PetsitterReservations)
		reservations.GET("/schedule/:petsitterId", h.PetsitterSchedule)
		reservations.GET("/:id", h.GetReservation)
		reservations.PATCH("/:id/confirm", petsitterRole, h.ConfirmReservation)
		reservations.PATCH("/:id/petsittercancel", petsitterRole, h.CancelByPetsitter)
		reservations.PATCH("/:id/membercancel", memberRole, h.CancelByMember)
	}
}

// FindPossiblePetsitters handles POST /api/v1/reservations/petsitters.
func (h *ReservationHandler) FindPossiblePetsitters(c *gin.Context) {
	var req application.FindPetsittersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.FindPossiblePetsitters(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateReservation handles POST /api/v1/reservations.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	memberID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReservation(c.Request.Context(), memberID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetReservation handles GET /api/v1/reservations/:id.
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	result, err := h.service.GetReservation(c.Request.Context(), reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// MemberReservations handles GET /api/v1/reservations/member.
func (h *ReservationHandler) MemberReservations(c *gin.Context) {
	memberID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.GetMemberReservations(c.Request.Context(), memberID, c.Query("condition"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// PetsitterReservations handles GET /api/v1/reservations/petsitter.
func (h *ReservationHandler) PetsitterReservations(c *gin.Context) {
	petsitterID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.GetPetsitterReservations(c.Request.Context(), petsitterID, c.Query("condition"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// PetsitterSchedule handles GET /api/v1/reservations/schedule/:petsitterId.
func (h *ReservationHandler) PetsitterSchedule(c *gin.Context) {
	petsitterID, err := uuid.Parse(c.Param("petsitterId"))
	if err != nil {
		response.BadRequest(c, "invalid petsitter ID")
		return
	}

	result, err := h.service.GetPetsitterSchedule(c.Request.Context(), petsitterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ConfirmReservation handles PATCH /api/v1/reservations/:id/confirm.
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	h.changeStatus(c, h.service.ConfirmReservation)
}

// CancelByPetsitter handles PATCH /api/v1/reservations/:id/petsittercancel.
func (h *ReservationHandler) CancelByPetsitter(c *gin.Context) {
	h.changeStatus(c, h.service.CancelByPetsitter)
}

// CancelByMember handles PATCH /api/v1/reservations/:id/membercancel.
func (h *ReservationHandler) CancelByMember(c *gin.Context) {
	h.changeStatus(c, h.service.CancelByMember)
}

type statusChange func(ctx context.Context, reservationID, actorID uuid.UUID) (*application.ReservationDTO, error)

func (h *ReservationHandler) changeStatus(c *gin.Context, change statusChange) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := change(c.Request.Context(), reservationID, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
