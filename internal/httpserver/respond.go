package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopflow/internal/domain"
)

// actorID pulls the acting user from the X-User-ID header. Authentication
// proper lives at the edge; the API only needs to know who is asking.
func actorID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header required"})
		return "", false
	}
	return id, true
}

// respondErr maps domain errors onto status codes. Transition and
// operation rejections are conflicts: the resource exists, the request
// just arrived in the wrong state.
func respondErr(c *gin.Context, logger *zap.Logger, err error) {
	var transition *domain.InvalidTransitionError
	var operation *domain.InvalidOperationError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not allowed"})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{
			"error": transition.Error(),
			"from":  transition.From,
			"to":    transition.To,
		})
	case errors.As(err, &operation):
		c.JSON(http.StatusConflict, gin.H{"error": operation.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "version conflict, retry"})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}
