package httpserver

import (
	"errors"
	"net/http"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	"github.com/TechX-demo/easy-pay-cart/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

// writeError maps service errors to responses. Unknown errors are logged and
// reported as 500.
func (h *handlers) writeError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	var cfgErr *payment.ConfigError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		redirectToCart(c)
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error(), "fields": cfgErr.Fields})
	case errors.Is(err, checkout.ErrNotEditable), errors.Is(err, checkout.ErrCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrUnknownMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func redirectToCart(c *gin.Context) {
	c.Header("Location", "/cart")
	c.JSON(http.StatusSeeOther, gin.H{"error": checkout.ErrEmptyCart.Error(), "redirect": "/cart"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
