package handlers

import (
	"net/http"

	"DR-SIGN/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes {success:false, error}. Server-side causes are logged
// and replaced by a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"success": false, "error": apperr.PublicMessage(err)})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// respondOK merges fields into {success:true}.
func respondOK(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func organizationID(c *gin.Context) string {
	return c.GetHeader(OrganizationHeader)
}
