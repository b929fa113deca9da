package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	productrepo "github.com/TechX-demo/easy-pay-cart/internal/repository/product"
	"github.com/TechX-demo/easy-pay-cart/internal/repository/settings"
	"github.com/TechX-demo/easy-pay-cart/internal/seed"
	"github.com/TechX-demo/easy-pay-cart/internal/service/checkout"
	productsvc "github.com/TechX-demo/easy-pay-cart/internal/service/product"
	"github.com/TechX-demo/easy-pay-cart/internal/service/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := productsvc.New(productrepo.NewMemory(seed.Products()), nil)
	_, err := catalog.Reload(context.Background())
	require.NoError(t, err)

	registry, err := payment.NewRegistry(settings.NewMemory(), payment.MethodCard, payment.DefaultBreakerSettings(), nil)
	require.NoError(t, err)

	router, err := buildRouter(logDiscard(), nil, Deps{
		Catalog:  catalog,
		Sessions: session.NewManager(catalog, time.Hour, nil),
		Checkout: checkout.NewService(registry, nil),
		Payments: registry,
	})
	require.NoError(t, err)
	return &testAPI{router: router}
}

func logDiscard() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func (a *testAPI) do(method, path, sessionID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) newSession(t *testing.T) string {
	t.Helper()
	rec := a.do(http.MethodPost, "/sessions", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		SessionID string `json:"sessionId"`
		ExpiresIn int    `json:"expiresIn"`
	}
	decode(t, rec, &body)
	require.NotEmpty(t, body.SessionID)
	assert.Equal(t, 3600, body.ExpiresIn)
	assert.Equal(t, body.SessionID, rec.Header().Get(sessionHeader))
	return body.SessionID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type cartBody struct {
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	Total     string `json:"total"`
	ItemCount int    `json:"itemCount"`
}

const shippingForm = `{
	"shipping": {"fullName":"Ada Lovelace","email":"ada@example.com","address":"12 Analytical Row","city":"London","zipCode":"N1 9GU","country":"GB"},
	"paymentMethod": "card",
	"card": {"cardNumber":"%s","cardHolder":"Ada Lovelace","expiryDate":"12/99","cvv":"123"},
	"acceptTerms": true
}`

func form(cardNumber string) string {
	return strings.Replace(shippingForm, "%s", cardNumber, 1)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_FailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler(nil, []ReadinessCheck{{
		Name:  "redis",
		Check: func(context.Context) error { return errors.New("down") },
	}}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis not reachable")
}

func TestBuildRouter_RequiresDeps(t *testing.T) {
	_, err := buildRouter(logDiscard(), nil, Deps{})
	require.Error(t, err)
}

func TestProducts(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/products", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count   int              `json:"count"`
		Results []domain.Product `json:"results"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 6, list.Count)

	rec = api.do(http.MethodGet, "/products?category=Audio", "", "")
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Count)

	rec = api.do(http.MethodGet, "/products/3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Professional Camera Kit"`)

	rec = api.do(http.MethodGet, "/products/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Photography"`)
}

func TestCart_RequiresSession(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/cart", "not-a-session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCart_Mutations(t *testing.T) {
	api := newTestAPI(t)
	sid := api.newSession(t)

	rec := api.do(http.MethodPost, "/cart/items", sid, `{"productId":"4"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodPost, "/cart/items", sid, `{"productId":"4"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodPost, "/cart/items", sid, `{"productId":"1"}`)
	var body cartBody
	decode(t, rec, &body)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "4", body.Items[0].ProductID)
	assert.Equal(t, 2, body.Items[0].Quantity)
	assert.Equal(t, 3, body.ItemCount)

	rec = api.do(http.MethodPost, "/cart/items/4/decrement", sid, "")
	rec = api.do(http.MethodPost, "/cart/items/4/decrement", sid, "")
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Items[0].Quantity, "decrement stops at 1")

	rec = api.do(http.MethodPost, "/cart/items/1/increment", sid, "")
	decode(t, rec, &body)
	assert.Equal(t, 2, body.Items[1].Quantity)

	rec = api.do(http.MethodPut, "/cart/items/1", sid, `{"quantity":5}`)
	decode(t, rec, &body)
	assert.Equal(t, 6, body.ItemCount)

	rec = api.do(http.MethodPut, "/cart/items/1", sid, `{"quantity":0}`)
	decode(t, rec, &body)
	require.Len(t, body.Items, 1)

	rec = api.do(http.MethodPut, "/cart/items/1", sid, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, "/cart/items/4", sid, "")
	decode(t, rec, &body)
	assert.Empty(t, body.Items)
	assert.Equal(t, "0", body.Total)

	rec = api.do(http.MethodPost, "/cart/items", sid, `{"productId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodPost, "/cart/items", sid, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	api := newTestAPI(t)
	sid := api.newSession(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/checkout"},
		{http.MethodGet, "/checkout"},
		{http.MethodPost, "/checkout/submit"},
	} {
		rec := api.do(tc.method, tc.path, sid, "")
		assert.Equal(t, http.StatusSeeOther, rec.Code, tc.path)
		assert.Equal(t, "/cart", rec.Header().Get("Location"), tc.path)
	}
}

func TestCheckout_CardSuccess(t *testing.T) {
	api := newTestAPI(t)
	sid := api.newSession(t)
	api.do(http.MethodPost, "/cart/items", sid, `{"productId":"1"}`)
	api.do(http.MethodPost, "/cart/items", sid, `{"productId":"1"}`)

	rec := api.do(http.MethodPost, "/checkout", sid, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view checkout.View
	decode(t, rec, &view)
	assert.Equal(t, domain.CheckoutStatusEditing, view.Status)
	assert.Equal(t, "599.98", view.Total.StringFixed(2))

	rec = api.do(http.MethodPost, "/checkout/submit", sid, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"acceptTerms"`)

	rec = api.do(http.MethodPut, "/checkout", sid, form("4242 4242 4242 4242"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/checkout/submit", sid, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &view)
	assert.Equal(t, domain.CheckoutStatusSucceeded, view.Status)
	require.NotNil(t, view.Receipt)
	assert.True(t, strings.HasPrefix(view.Receipt.Reference, "pi_"))
	assert.Equal(t, "4242", view.CardLast4)

	var cart cartBody
	decode(t, api.do(http.MethodGet, "/cart", sid, ""), &cart)
	assert.Empty(t, cart.Items)

	rec = api.do(http.MethodGet, "/checkout", sid, "")
	require.Equal(t, http.StatusOK, rec.Code, "confirmation stays visible")

	rec = api.do(http.MethodPut, "/checkout", sid, form("4242424242424242"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var notes struct {
		Notifications []struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"notifications"`
	}
	decode(t, api.do(http.MethodGet, "/notifications", sid, ""), &notes)
	kinds := make([]string, 0, len(notes.Notifications))
	for _, n := range notes.Notifications {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []string{"cart.added", "cart.increased", "cart.cleared", "checkout.succeeded"}, kinds)

	decode(t, api.do(http.MethodGet, "/notifications", sid, ""), &notes)
	assert.Empty(t, notes.Notifications)
}

func TestCheckout_Declined(t *testing.T) {
	api := newTestAPI(t)
	sid := api.newSession(t)
	api.do(http.MethodPost, "/cart/items", sid, `{"productId":"2"}`)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/checkout", sid, "").Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/checkout", sid, form(payment.CardDeclined)).Code)

	rec := api.do(http.MethodPost, "/checkout/submit", sid, "")
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	var body struct {
		Error    string        `json:"error"`
		Checkout checkout.View `json:"checkout"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "card declined", body.Error)
	assert.Equal(t, domain.CheckoutStatusEditing, body.Checkout.Status)
	assert.Equal(t, "Payment failed: card declined", body.Checkout.LastError)

	var cart cartBody
	decode(t, api.do(http.MethodGet, "/cart", sid, ""), &cart)
	assert.Equal(t, 1, cart.ItemCount)

	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/checkout", sid, form("4242424242424242")).Code)
	rec = api.do(http.MethodPost, "/checkout/submit", sid, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckout_CartEmptiedWhileEditing(t *testing.T) {
	api := newTestAPI(t)
	sid := api.newSession(t)
	api.do(http.MethodPost, "/cart/items", sid, `{"productId":"5"}`)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/checkout", sid, "").Code)

	api.do(http.MethodDelete, "/cart", sid, "")

	rec := api.do(http.MethodGet, "/checkout", sid, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSettings_AlipayConfigAndCheckout(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/settings/payment/alipay", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg payment.AlipayConfig
	decode(t, rec, &cfg)
	assert.Equal(t, payment.DefaultAlipayConfig(), cfg)

	rec = api.do(http.MethodPut, "/settings/payment/alipay", "", `{"appId":"2021"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"merchantId"`)

	rec = api.do(http.MethodPut, "/settings/payment/alipay", "",
		`{"appId":"2021","merchantId":"2088","privateKey":"k","publicKey":"p","sandbox":true,"returnUrl":"https://shop.example.com/return"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPut, "/settings/payment/method", "", `{"method":"paypal"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPut, "/settings/payment/method", "", `{"method":"alipay"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/settings/payment/method", "", "")
	assert.Contains(t, rec.Body.String(), `"alipay"`)

	sid := api.newSession(t)
	api.do(http.MethodPost, "/cart/items", sid, `{"productId":"6"}`)
	rec = api.do(http.MethodPost, "/checkout", sid, "")
	var view checkout.View
	decode(t, rec, &view)
	assert.Equal(t, payment.MethodAlipay, view.PaymentMethod)

	body := strings.Replace(form(""), `"paymentMethod": "card"`, `"paymentMethod": "alipay"`, 1)
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/checkout", sid, body).Code)
	rec = api.do(http.MethodPost, "/checkout/submit", sid, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &view)
	require.NotNil(t, view.Receipt)
	assert.Contains(t, view.Receipt.RedirectURL, payment.SandboxAlipayGateway)
	assert.Equal(t, view.ID, view.Receipt.Reference)
}

type failingCatalog struct{ CatalogService }

func (failingCatalog) List(context.Context) ([]domain.Product, error) {
	return nil, errors.New("db down")
}

func TestProducts_InternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry, err := payment.NewRegistry(settings.NewMemory(), "", payment.DefaultBreakerSettings(), nil)
	require.NoError(t, err)
	router, err := buildRouter(logDiscard(), nil, Deps{
		Catalog:  failingCatalog{},
		Sessions: session.NewManager(nil, time.Hour, nil),
		Checkout: checkout.NewService(registry, nil),
		Payments: registry,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type mutableRepo struct {
	mu       sync.Mutex
	products []domain.Product
}

func (r *mutableRepo) List(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Product(nil), r.products...), nil
}

func (r *mutableRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mutableRepo) ListByCategory(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

func (r *mutableRepo) setPrice(id, price string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == id {
			r.products[i].Price = decimal.RequireFromString(price)
		}
	}
}

func TestCatalogReload_UpdatesExistingCart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &mutableRepo{products: seed.Products()}
	catalog := productsvc.New(repo, nil)
	_, err := catalog.Reload(context.Background())
	require.NoError(t, err)
	registry, err := payment.NewRegistry(settings.NewMemory(), "", payment.DefaultBreakerSettings(), nil)
	require.NoError(t, err)
	router, err := buildRouter(logDiscard(), nil, Deps{
		Catalog:  catalog,
		Sessions: session.NewManager(catalog, time.Hour, nil),
		Checkout: checkout.NewService(registry, nil),
		Payments: registry,
	})
	require.NoError(t, err)
	api := &testAPI{router: router}

	sid := api.newSession(t)
	api.do(http.MethodPost, "/cart/items", sid, `{"productId":"1"}`)
	api.do(http.MethodPost, "/cart/items", sid, `{"productId":"1"}`)
	var body cartBody
	decode(t, api.do(http.MethodGet, "/cart", sid, ""), &body)
	assert.Equal(t, "599.98", body.Total)

	repo.setPrice("1", "249.99")
	decode(t, api.do(http.MethodGet, "/cart", sid, ""), &body)
	assert.Equal(t, "599.98", body.Total, "served catalog changes only on reload")

	rec := api.do(http.MethodPost, "/catalog/reload", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":6`)

	decode(t, api.do(http.MethodGet, "/cart", sid, ""), &body)
	assert.Equal(t, "499.98", body.Total)
}

type failingReloadRepo struct{ mutableRepo }

func (*failingReloadRepo) List(context.Context) ([]domain.Product, error) {
	return nil, errors.New("db down")
}

func TestCatalogReload_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)
	catalog := productsvc.New(&failingReloadRepo{}, nil)
	registry, err := payment.NewRegistry(settings.NewMemory(), "", payment.DefaultBreakerSettings(), nil)
	require.NoError(t, err)
	router, err := buildRouter(logDiscard(), nil, Deps{
		Catalog:  catalog,
		Sessions: session.NewManager(catalog, time.Hour, nil),
		Checkout: checkout.NewService(registry, nil),
		Payments: registry,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/catalog/reload", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
