package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Success writes data as a 200 JSON body.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: message})
}

// Error maps a service error onto a status code. Only domain-level messages
// reach the client; anything else is reported as an internal error.
func Error(c *gin.Context, err error) {
	var vErr *quote.ValidationError
	var fxErr *quote.FxUnavailableError

	switch {
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: vErr.Error()})
	case errors.As(err, &fxErr):
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorBody{Error: "FX service unavailable"})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
	}
}
