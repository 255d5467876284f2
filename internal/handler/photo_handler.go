package handler

import (
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sitso-en/photovault/internal/application"
	"github.com/sitso-en/photovault/internal/auth"
	"github.com/sitso-en/photovault/internal/middleware"
	"github.com/sitso-en/photovault/internal/response"
)

// PhotoHandler handles HTTP requests for photo operations.
type PhotoHandler struct {
	service        *application.PhotoService
	uploadThrottle *middleware.Throttle
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(service *application.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		service:        service,
		uploadThrottle: middleware.NewThrottle(20, time.Hour),
	}
}

// RegisterRoutes registers all photo routes.
func (h *PhotoHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	optionalMW := middleware.OptionalAuthMiddleware(jwtManager)

	photos := r.Group("/api/v1/photos")
	{
		photos.GET("", optionalMW, h.ListPhotos)
		photos.GET("/public", h.PublicPhotos)
		photos.GET("/mine", authMW, h.MyPhotos)
		photos.GET("/:id", optionalMW, h.GetPhoto)
		photos.POST("", authMW, h.uploadThrottle.Handler(), h.UploadPhoto)
		photos.PUT("/:id", authMW, h.UpdatePhoto)
		photos.DELETE("/:id", authMW, h.DeletePhoto)
	}
}

// ListPhotos handles GET /api/v1/photos.
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	actor := middleware.GetActor(c)
	page := parsePage(c)

	result, err := h.service.ListPhotos(c.Request.Context(), actor, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// PublicPhotos handles GET /api/v1/photos/public.
func (h *PhotoHandler) PublicPhotos(c *gin.Context) {
	result, err := h.service.PublicPhotos(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// MyPhotos handles GET /api/v1/photos/mine.
func (h *PhotoHandler) MyPhotos(c *gin.Context) {
	actor := middleware.GetActor(c)

	result, err := h.service.MyPhotos(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetPhoto handles GET /api/v1/photos/:id.
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid photo ID")
		return
	}

	actor := middleware.GetActor(c)
	result, err := h.service.GetPhoto(c.Request.Context(), actor, photoID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UploadPhoto handles POST /api/v1/photos (multipart form).
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	actor := middleware.GetActor(c)

	fileName, data, ok := readImageFile(c)
	if !ok {
		return
	}

	req := application.UploadPhotoRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Visibility:  c.PostForm("visibility"),
		FileName:    fileName,
		Data:        data,
	}

	result, err := h.service.UploadPhoto(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdatePhoto handles PUT /api/v1/photos/:id (multipart form, file
// optional).
func (h *PhotoHandler) UpdatePhoto(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid photo ID")
		return
	}

	actor := middleware.GetActor(c)
	req := application.UpdatePhotoRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Visibility:  c.PostForm("visibility"),
	}

	if _, ferr := c.FormFile("image"); ferr == nil {
		fileName, data, ok := readImageFile(c)
		if !ok {
			return
		}
		req.FileName = fileName
		req.Data = data
	}

	result, err := h.service.UpdatePhoto(c.Request.Context(), actor, photoID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeletePhoto handles DELETE /api/v1/photos/:id.
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid photo ID")
		return
	}

	actor := middleware.GetActor(c)
	warning, err := h.service.DeletePhoto(c.Request.Context(), actor, photoID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if warning != "" {
		response.SuccessWithWarning(c, gin.H{"deleted": photoID}, warning)
		return
	}
	response.Success(c, gin.H{"deleted": photoID})
}

// readImageFile extracts the "image" part of a multipart form. It
// writes the error response itself when extraction fails.
func readImageFile(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read image file")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "failed to read image file")
		return "", nil, false
	}

	return fileHeader.Filename, data, true
}

// parsePage reads the page query parameter, defaulting to 1.
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parsePagination reads page and limit query parameters for uncached
// admin listings.
func parsePagination(c *gin.Context) (int, int) {
	page := parsePage(c)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
