// Package response renders the JSON envelope for the app's fetch-style
// endpoints (progress tracking). Pages render HTML templates; only the
// /api surface comes through here.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the shape every JSON endpoint answers with. Exactly one of
// Data and Error is set.
type Envelope struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Success writes a 200 with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{OK: true, Data: data})
}

// BadRequest rejects a malformed request body.
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

// Unauthorized rejects a caller with no session.
func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, message)
}

// InternalError reports a server-side failure without leaking its cause;
// the error itself goes to the request log.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, "something went wrong")
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Error: message})
}
