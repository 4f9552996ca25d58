// Package response renders the JSON envelope shared by every API endpoint:
//
//	{"status": "success"|"fail"|"error", "message"?, "data"?, "errors"?, "results"?}
//
// "fail" is used for client errors (4xx) and "error" for server errors (5xx).
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// GenericErrorMessage is shown for server errors when details are hidden.
const GenericErrorMessage = "Something went wrong"

// Envelope is the response body.
type Envelope struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Results *int     `json:"results,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Data writes a success envelope carrying data.
func Data(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: StatusSuccess, Data: data})
}

// List writes a success envelope with a results count.
func List(c *gin.Context, count int, data any) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Results: &count, Data: data})
}

// Message writes a success envelope with only a message.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, Envelope{Status: StatusSuccess, Message: message})
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail aborts the request with a client error envelope.
func Fail(c *gin.Context, code int, message string, errs ...string) {
	c.AbortWithStatusJSON(code, Envelope{Status: StatusFail, Message: message, Errors: errs})
}

// Error aborts the request with a server error envelope.
func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Status: StatusError, Message: message})
}

// InternalError aborts with 500. The error text is exposed only when expose is true.
func InternalError(c *gin.Context, err error, expose bool) {
	msg := GenericErrorMessage
	if expose && err != nil {
		msg = err.Error()
	}
	Error(c, http.StatusInternalServerError, msg)
}
