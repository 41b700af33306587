package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petmily/service-reservation/internal/application"
	"github.com/petmily/service-reservation/internal/blobstore"
	"github.com/petmily/service-reservation/internal/platform/auth"
	"github.com/petmily/service-reservation/internal/platform/middleware"
	"github.com/petmily/service-reservation/internal/platform/response"
)

const photoField = "file"

// PetHandler handles HTTP requests for pet profile operations.
type PetHandler struct {
	service        *application.PetService
	maxUploadBytes int64
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(service *application.PetService, maxUploadBytes int64) *PetHandler {
	return &PetHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes registers all pet profile routes.
func (h *PetHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	memberRole := middleware.RequireRole(auth.RoleMember)

	pets := r.Group("/api/v1/pets")
	pets.Use(authMW)
	{
		pets.POST("", memberRole, h.CreatePet)
		pets.GET("", h.ListPets)
		pets.GET("/:id", h.GetPet)
		pets.PATCH("/:id", memberRole, h.UpdatePet)
		pets.DELETE("/:id/photo", memberRole, h.DeletePhoto)
		pets.DELETE("/:id", memberRole, h.DeletePet)
	}
}

// CreatePet handles POST /api/v1/pets (multipart: fields + file).
func (h *PetHandler) CreatePet(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreatePetRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	photo, err := h.readUpload(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePet(c.Request.Context(), ownerID, req, photo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPets handles GET /api/v1/pets. Lists the caller's pets unless
// member_id names another member.
func (h *PetHandler) ListPets(c *gin.Context) {
	memberID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	if raw := c.Query("member_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid member ID")
			return
		}
		memberID = id
	}

	result, err := h.service.GetMemberPets(c.Request.Context(), memberID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetPet handles GET /api/v1/pets/:id.
func (h *PetHandler) GetPet(c *gin.Context) {
	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet ID")
		return
	}

	result, err := h.service.GetPet(c.Request.Context(), petID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePet handles PATCH /api/v1/pets/:id (multipart: fields + optional file).
func (h *PetHandler) UpdatePet(c *gin.Context) {
	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet ID")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.UpdatePetRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	photo, err := h.readUpload(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePet(c.Request.Context(), actorID, petID, req, photo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeletePhoto handles DELETE /api/v1/pets/:id/photo.
func (h *PetHandler) DeletePhoto(c *gin.Context) {
	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet ID")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.DeletePhoto(c.Request.Context(), actorID, petID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeletePet handles DELETE /api/v1/pets/:id.
func (h *PetHandler) DeletePet(c *gin.Context) {
	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet ID")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	if err := h.service.DeletePet(c.Request.Context(), actorID, petID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// readUpload returns the photo part of a multipart request, or nil when the
// request carries none.
func (h *PetHandler) readUpload(c *gin.Context) (*blobstore.Upload, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}
	header, err := c.FormFile(photoField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid photo upload: %w", err)
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", h.maxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open photo upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo upload: %w", err)
	}
	return &blobstore.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
