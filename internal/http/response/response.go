package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pusdatin/satudata-backend/internal/platform/apierr"
)

type APIError struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps err through apierr and writes the error envelope. The
// underlying error is attached to the gin context for the request logger.
func RespondErr(c *gin.Context, err error) {
	e := apierr.From(err)
	if e == nil {
		c.Status(http.StatusNoContent)
		return
	}
	_ = c.Error(err)
	c.JSON(e.Status, ErrorEnvelope{
		Error: APIError{
			Message: e.PublicMessage(),
			Code:    e.Code,
			Details: e.Details,
		},
	})
}

func AbortErr(c *gin.Context, err error) {
	RespondErr(c, err)
	c.Abort()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
