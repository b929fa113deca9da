package httpserver

import (
	"net/http"

	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	"github.com/gin-gonic/gin"
)

type paymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

func (h *handlers) getAlipayConfig(c *gin.Context) {
	cfg, err := h.deps.Payments.AlipayConfig(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *handlers) saveAlipayConfig(c *gin.Context) {
	var cfg payment.AlipayConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, "invalid alipay config")
		return
	}
	saved, err := h.deps.Payments.SaveAlipayConfig(c.Request.Context(), cfg)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handlers) getPaymentMethod(c *gin.Context) {
	name, err := h.deps.Payments.DefaultMethod(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"method": name})
}

func (h *handlers) setPaymentMethod(c *gin.Context) {
	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "method is required")
		return
	}
	if err := h.deps.Payments.SetDefaultMethod(c.Request.Context(), req.Method); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"method": req.Method})
}
