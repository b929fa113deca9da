package httpserver

import (
	"net/http"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/service/cart"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartResponse struct {
	Items     []domain.CartLine `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"itemCount"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) createSession(c *gin.Context) {
	s, err := h.deps.Sessions.Issue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header(sessionHeader, s.ID)
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": s.ID,
		"expiresIn": h.deps.Sessions.TTLSeconds(),
	})
}

// renderCart derives the totals from a single Lines read so they always
// match the items in the same response.
func renderCart(c *gin.Context, store *cart.Store) {
	lines := store.Lines()
	resp := cartResponse{Items: lines, Total: decimal.Zero}
	for _, l := range lines {
		resp.Total = resp.Total.Add(l.Subtotal)
		resp.ItemCount += l.Quantity
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) getCart(c *gin.Context) {
	renderCart(c, currentSession(c).Cart)
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}
	p, err := h.deps.Catalog.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	store := currentSession(c).Cart
	store.AddItem(*p)
	renderCart(c, store)
}

func (h *handlers) updateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	store := currentSession(c).Cart
	store.UpdateQuantity(c.Param("productId"), *req.Quantity)
	renderCart(c, store)
}

func (h *handlers) removeItem(c *gin.Context) {
	store := currentSession(c).Cart
	store.RemoveItem(c.Param("productId"))
	renderCart(c, store)
}

func (h *handlers) increment(c *gin.Context) {
	store := currentSession(c).Cart
	store.Increment(c.Param("productId"))
	renderCart(c, store)
}

func (h *handlers) decrement(c *gin.Context) {
	store := currentSession(c).Cart
	store.Decrement(c.Param("productId"))
	renderCart(c, store)
}

func (h *handlers) clearCart(c *gin.Context) {
	store := currentSession(c).Cart
	store.Clear()
	renderCart(c, store)
}

func (h *handlers) drainNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": currentSession(c).Notifications.Drain()})
}
