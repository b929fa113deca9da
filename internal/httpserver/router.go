package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/notify"
	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	"github.com/TechX-demo/easy-pay-cart/internal/service/checkout"
	"github.com/TechX-demo/easy-pay-cart/internal/service/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	ByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Reload(ctx context.Context) (int, error)
}

type SessionService interface {
	Issue(ctx context.Context) (*session.Session, error)
	Lookup(ctx context.Context, id string) (*session.Session, error)
	TTLSeconds() int
}

type CheckoutService interface {
	Enter(ctx context.Context, current *checkout.Flow, c checkout.Cart, n notify.Notifier) (*checkout.Flow, error)
}

type PaymentSettings interface {
	AlipayConfig(ctx context.Context) (payment.AlipayConfig, error)
	SaveAlipayConfig(ctx context.Context, cfg payment.AlipayConfig) (payment.AlipayConfig, error)
	DefaultMethod(ctx context.Context) (string, error)
	SetDefaultMethod(ctx context.Context, name string) error
}

type Deps struct {
	Catalog     CatalogService
	Sessions    SessionService
	Checkout    CheckoutService
	Payments    PaymentSettings
	CORSOrigins []string
	ReadyChecks []ReadinessCheck
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("catalog service is required")
	case d.Sessions == nil:
		return errors.New("session service is required")
	case d.Checkout == nil:
		return errors.New("checkout service is required")
	case d.Payments == nil:
		return errors.New("payment settings are required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zerolog.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.ReadyChecks))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)
	router.POST("/catalog/reload", h.reloadCatalog)

	router.GET("/settings/payment/alipay", h.getAlipayConfig)
	router.PUT("/settings/payment/alipay", h.saveAlipayConfig)
	router.GET("/settings/payment/method", h.getPaymentMethod)
	router.PUT("/settings/payment/method", h.setPaymentMethod)

	router.POST("/sessions", h.createSession)

	scoped := router.Group("/", sessionMiddleware(deps.Sessions))
	scoped.GET("/cart", h.getCart)
	scoped.DELETE("/cart", h.clearCart)
	scoped.POST("/cart/items", h.addItem)
	scoped.PUT("/cart/items/:productId", h.updateQuantity)
	scoped.DELETE("/cart/items/:productId", h.removeItem)
	scoped.POST("/cart/items/:productId/increment", h.increment)
	scoped.POST("/cart/items/:productId/decrement", h.decrement)

	scoped.POST("/checkout", h.enterCheckout)
	scoped.GET("/checkout", h.getCheckout)
	scoped.PUT("/checkout", h.updateCheckout)
	scoped.POST("/checkout/submit", h.submitCheckout)

	scoped.GET("/notifications", h.drainNotifications)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", sessionHeader},
		ExposeHeaders: []string{sessionHeader, "Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps   Deps
	logger *zerolog.Logger
}
