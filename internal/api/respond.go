package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matheus3301/wppapi/internal/wa"
)

// messageBody is the `{message}` shape most endpoints answer with.
type messageBody struct {
	Message string `json:"message"`
}

// looseBool interprets path-segment flags the way the API always has:
// empty and "false" (case-insensitive) are false, anything else is true.
func looseBool(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.EqualFold(s, "false")
}

// failMessage maps a facade error to the response message body.
// Failures never surface as bare 5xx; the caller always gets JSON.
func failMessage(c *gin.Context, err error, chatNotFound string) {
	switch {
	case errors.Is(err, wa.ErrChatNotFound):
		c.JSON(http.StatusOK, messageBody{Message: chatNotFound})
	case errors.Is(err, wa.ErrNotReady):
		c.JSON(http.StatusOK, messageBody{Message: "Session is not connected"})
	case errors.Is(err, wa.ErrMessageNotFound):
		c.JSON(http.StatusOK, messageBody{Message: "Message not found"})
	default:
		c.JSON(http.StatusOK, messageBody{Message: err.Error()})
	}
}
