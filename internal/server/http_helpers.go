package server

import (
	"net/http"

	"pickleball/internal/apperr"
	"pickleball/internal/logging"

	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Error   string            `json:"error"`
	Code    apperr.Code       `json:"code"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// writeError maps err onto its HTTP status and logs it. Server faults log the
// cause; client faults log at warn level.
func writeError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logging.Errorf("request failed method=%s path=%s status=%d code=%s err=%v",
			c.Request.Method, c.Request.URL.Path, status, appErr.Code, appErr)
	} else {
		logging.Warnf("request rejected method=%s path=%s status=%d code=%s message=%q",
			c.Request.Method, c.Request.URL.Path, status, appErr.Code, appErr.Message)
	}
	c.AbortWithStatusJSON(status, errorBody{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Field:   appErr.Field,
		Details: appErr.Details,
	})
}

func routeNotFound() *apperr.Error {
	return apperr.NotFound(apperr.CodeRouteNotFound, "route not found")
}

func writeMessage(c *gin.Context, status int, message string) {
	writeJSON(c, status, gin.H{"message": message})
}
