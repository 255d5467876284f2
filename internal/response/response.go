package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitso-en/photovault/internal/domain"
	"github.com/sitso-en/photovault/internal/storage"
)

// ErrorBody is the wire shape of every error response: a
// machine-readable kind plus a human-readable reason. Internal detail
// never crosses this boundary.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Paginated writes a 200 with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// SuccessWithWarning writes a 200 with a payload and a non-fatal
// warning, used when a committed mutation ends with a degraded side
// effect (e.g. an orphaned blob after a failed storage delete).
func SuccessWithWarning(c *gin.Context, data interface{}, warning string) {
	c.JSON(http.StatusOK, gin.H{
		"data":    data,
		"warning": warning,
	})
}

// BadRequest writes a 400 with the given reason.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Kind: string(domain.KindValidation), Message: message})
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorBody{Kind: string(domain.KindUnauthorized), Message: message})
}

// TooManyRequests writes a 429 with the given reason.
func TooManyRequests(c *gin.Context, message string) {
	c.JSON(http.StatusTooManyRequests, ErrorBody{Kind: "rate_limited", Message: message})
}

// Error maps a domain or storage error to its HTTP status.
func Error(c *gin.Context, err error) {
	if storage.IsValidation(err) {
		c.JSON(http.StatusBadRequest, ErrorBody{Kind: string(storage.KindValidation), Message: err.Error()})
		return
	}

	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	message := err.Error()

	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindStorage:
		status = http.StatusBadGateway
	default:
		// Never leak internal detail on unclassified errors.
		message = "internal server error"
	}

	c.JSON(status, ErrorBody{Kind: string(kind), Message: message})
}
