package httpserver

import (
	"net/http"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	var (
		products []domain.Product
		err      error
	)
	if category := c.Query("category"); category != "" {
		products, err = h.deps.Catalog.ByCategory(c.Request.Context(), category)
	} else {
		products, err = h.deps.Catalog.List(c.Request.Context())
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "results": products})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.deps.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// reloadCatalog refreshes the in-memory catalog from the repository, e.g.
// right after an import. Carts pick up new names and prices on their next read.
func (h *handlers) reloadCatalog(c *gin.Context) {
	n, err := h.deps.Catalog.Reload(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": n})
}
