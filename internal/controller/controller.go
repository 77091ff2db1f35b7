// Package controller holds the helpers shared by the role-scoped gin handlers
// in its subpackages.
package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/rs/zerolog/log"
)

// ParseID reads a numeric path parameter, writing a 400 response when it is malformed.
func ParseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// BindJSON binds the request body, writing a 400 response on failure.
func BindJSON(c *gin.Context, op string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Warn().Err(err).Msg(op + ": Failed to bind JSON")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return false
	}
	return true
}

// RespondError renders a service error with the status of its kind.
func RespondError(c *gin.Context, op string, err error) {
	status := apperror.HTTPStatus(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("path", c.FullPath()).Int("status", status).Msg(op + ": Service error")
	c.JSON(status, dto.ErrorResponse{Message: apperror.PublicMessage(err)})
}
