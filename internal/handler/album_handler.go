package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sitso-en/photovault/internal/application"
	"github.com/sitso-en/photovault/internal/auth"
	"github.com/sitso-en/photovault/internal/middleware"
	"github.com/sitso-en/photovault/internal/response"
)

// AlbumHandler handles HTTP requests for album operations.
type AlbumHandler struct {
	service        *application.AlbumService
	createThrottle *middleware.Throttle
}

// NewAlbumHandler creates a new AlbumHandler.
func NewAlbumHandler(service *application.AlbumService) *AlbumHandler {
	return &AlbumHandler{
		service:        service,
		createThrottle: middleware.NewThrottle(50, time.Hour),
	}
}

// RegisterRoutes registers all album routes.
func (h *AlbumHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	optionalMW := middleware.OptionalAuthMiddleware(jwtManager)

	albums := r.Group("/api/v1/albums")
	{
		albums.POST("", authMW, h.createThrottle.Handler(), h.CreateAlbum)
		albums.GET("", authMW, h.ListAlbums)
		albums.GET("/:id", optionalMW, h.GetAlbum)
		albums.PUT("/:id", authMW, h.UpdateAlbum)
		albums.DELETE("/:id", authMW, h.DeleteAlbum)
		albums.POST("/:id/photos/:photoID", authMW, h.AddPhoto)
		albums.DELETE("/:id/photos/:photoID", authMW, h.RemovePhoto)
	}
}

type albumRequestBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateAlbum handles POST /api/v1/albums.
func (h *AlbumHandler) CreateAlbum(c *gin.Context) {
	var body albumRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor := middleware.GetActor(c)
	result, err := h.service.CreateAlbum(c.Request.Context(), actor, application.CreateAlbumRequest{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListAlbums handles GET /api/v1/albums.
func (h *AlbumHandler) ListAlbums(c *gin.Context) {
	actor := middleware.GetActor(c)
	page := parsePage(c)

	result, err := h.service.ListAlbums(c.Request.Context(), actor, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetAlbum handles GET /api/v1/albums/:id.
func (h *AlbumHandler) GetAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid album ID")
		return
	}

	actor := middleware.GetActor(c)
	result, err := h.service.GetAlbum(c.Request.Context(), actor, albumID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateAlbum handles PUT /api/v1/albums/:id.
func (h *AlbumHandler) UpdateAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid album ID")
		return
	}

	var body albumRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor := middleware.GetActor(c)
	result, err := h.service.UpdateAlbum(c.Request.Context(), actor, albumID, application.UpdateAlbumRequest{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteAlbum handles DELETE /api/v1/albums/:id.
func (h *AlbumHandler) DeleteAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid album ID")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.service.DeleteAlbum(c.Request.Context(), actor, albumID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": albumID})
}

// AddPhoto handles POST /api/v1/albums/:id/photos/:photoID.
func (h *AlbumHandler) AddPhoto(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid album ID")
		return
	}
	photoID, err := uuid.Parse(c.Param("photoID"))
	if err != nil {
		response.BadRequest(c, "invalid photo ID")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.service.AddPhoto(c.Request.Context(), actor, albumID, photoID); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"album_id": albumID, "photo_id": photoID})
}

// RemovePhoto handles DELETE /api/v1/albums/:id/photos/:photoID.
func (h *AlbumHandler) RemovePhoto(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid album ID")
		return
	}
	photoID, err := uuid.Parse(c.Param("photoID"))
	if err != nil {
		response.BadRequest(c, "invalid photo ID")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.service.RemovePhoto(c.Request.Context(), actor, albumID, photoID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"removed": photoID})
}
