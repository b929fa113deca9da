package httpserver

import (
	"errors"
	"net/http"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	"github.com/TechX-demo/easy-pay-cart/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

func (h *handlers) enterCheckout(c *gin.Context) {
	s := currentSession(c)
	f, err := s.EnterCheckout(func(current *checkout.Flow) (*checkout.Flow, error) {
		return h.deps.Checkout.Enter(c.Request.Context(), current, s.Cart, s.Notifier)
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (h *handlers) getCheckout(c *gin.Context) {
	f := currentSession(c).Checkout()
	if f == nil {
		redirectToCart(c)
		return
	}
	v := f.View()
	if v.RedirectToCart {
		redirectToCart(c)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handlers) updateCheckout(c *gin.Context) {
	f := currentSession(c).Checkout()
	if f == nil {
		redirectToCart(c)
		return
	}
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "invalid checkout form")
		return
	}
	v, err := f.Update(form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handlers) submitCheckout(c *gin.Context) {
	f := currentSession(c).Checkout()
	if f == nil {
		redirectToCart(c)
		return
	}
	v, err := f.Submit(c.Request.Context())
	if errors.Is(err, checkout.ErrPaymentFailed) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": payment.Reason(err), "checkout": v})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusOK
	if v.Status == domain.CheckoutStatusSubmitting {
		status = http.StatusAccepted
	}
	c.JSON(status, v)
}
