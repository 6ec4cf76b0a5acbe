package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIResponse is the uniform envelope every endpoint responds with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{
		Success: status < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

// RespondError maps an *APIError to its status; anything else is an internal
// error, logged and reported as a bare 500.
func RespondError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		Respond(c, apiErr.Status, apiErr.Message, nil)
		return
	}

	logrus.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"method": c.Request.Method,
	}).WithError(err).Error("request failed")
	Respond(c, http.StatusInternalServerError, "Internal server error", nil)
}
