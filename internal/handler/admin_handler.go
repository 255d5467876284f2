package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sitso-en/photovault/internal/application"
	"github.com/sitso-en/photovault/internal/auth"
	"github.com/sitso-en/photovault/internal/domain/user"
	"github.com/sitso-en/photovault/internal/middleware"
	"github.com/sitso-en/photovault/internal/response"
)

// AdminHandler handles moderation and dashboard endpoints. Every route
// requires the admin role.
type AdminHandler struct {
	photoService *application.PhotoService
	albumService *application.AlbumService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(photoService *application.PhotoService, albumService *application.AlbumService) *AdminHandler {
	return &AdminHandler{photoService: photoService, albumService: albumService}
}

// RegisterRoutes registers all admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminMW := middleware.RequireRole(user.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminMW)
	{
		admin.GET("/photos", h.ListAllPhotos)
		admin.POST("/photos/:id/flag", h.FlagDeletePhoto)
		admin.GET("/albums", h.ListAllAlbums)
		admin.GET("/stats", h.GetPhotoStats)
	}
}

// ListAllPhotos handles GET /api/v1/admin/photos.
func (h *AdminHandler) ListAllPhotos(c *gin.Context) {
	page, limit := parsePagination(c)

	photos, total, err := h.photoService.ListAllPhotos(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, photos, total, page, limit)
}

// GetPhotoStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetPhotoStats(c *gin.Context) {
	stats, err := h.photoService.GetPhotoStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// FlagDeletePhoto handles POST /api/v1/admin/photos/:id/flag.
func (h *AdminHandler) FlagDeletePhoto(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid photo ID")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// The body is optional; an empty reason gets a default downstream.
	_ = c.ShouldBindJSON(&body)

	actor := middleware.GetActor(c)
	result, warning, err := h.photoService.AdminFlagDelete(c.Request.Context(), actor, photoID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	if warning != "" {
		response.SuccessWithWarning(c, result, warning)
		return
	}
	response.Success(c, result)
}

// ListAllAlbums handles GET /api/v1/admin/albums.
func (h *AdminHandler) ListAllAlbums(c *gin.Context) {
	page, limit := parsePagination(c)

	albums, total, err := h.albumService.ListAllAlbums(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, albums, total, page, limit)
}
