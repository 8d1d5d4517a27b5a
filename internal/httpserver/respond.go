package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"crm-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to status codes and payloads. Unknown
// errors are logged with the route and answered with a generic 500 body,
// never echoing the underlying message.
func respondError(c *gin.Context, logger *log.Logger, err error, notFoundMsg string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, domain.ErrNoFields):
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMsg})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Duplicate phone or email"})
	default:
		logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "internal server error"})
	}
}

func badRequestField(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": []domain.FieldError{{Field: field, Message: message}}})
}

// paramID parses the :id path parameter. On failure it writes a 400
// response and reports false.
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestField(c, "id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}
