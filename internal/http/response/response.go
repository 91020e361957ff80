package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hatchbot-backend/internal/platform/errs"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondErr maps err onto the wire envelope through the errs
// taxonomy. Non-sentinel errors answer with a generic message so
// internals never reach the client.
func RespondErr(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	kind := errs.Kind(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: kind}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
