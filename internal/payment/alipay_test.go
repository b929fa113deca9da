package payment

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAlipayConfig() AlipayConfig {
	cfg := DefaultAlipayConfig()
	cfg.AppID = "2021000000000000"
	cfg.MerchantID = "2088000000000000"
	cfg.PrivateKey = "private"
	cfg.PublicKey = "public"
	cfg.ReturnURL = "https://shop.example.com/checkout/return"
	return cfg
}

func TestAlipayConfig_Validate(t *testing.T) {
	err := AlipayConfig{AppID: "x", PublicKey: "y"}.Validate()
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"merchantId", "privateKey", "returnUrl"}, cfgErr.Fields)

	cfg := validAlipayConfig()
	cfg.GatewayURL = "not a url"
	require.Error(t, cfg.Validate())

	require.NoError(t, validAlipayConfig().Validate())
}

func TestAlipayConfig_Gateway(t *testing.T) {
	cfg := validAlipayConfig()
	assert.Equal(t, SandboxAlipayGateway, cfg.Gateway())

	cfg.Sandbox = false
	assert.Equal(t, DefaultAlipayGateway, cfg.Gateway())

	cfg.GatewayURL = ""
	assert.Equal(t, DefaultAlipayGateway, cfg.Gateway())

	cfg.GatewayURL = "https://gw.example.com/gateway.do"
	assert.Equal(t, "https://gw.example.com/gateway.do", cfg.Gateway())

	cfg.Sandbox = true
	assert.Equal(t, "https://gw.example.com/gateway.do", cfg.Gateway(), "a custom gateway wins over sandbox")
}

func TestAlipay_NotConfigured(t *testing.T) {
	m := NewAlipay(nil)
	_, err := m.Confirm(context.Background(), Request{Amount: decimal.NewFromInt(10)})
	require.Error(t, err)
	assert.Equal(t, "alipay is not configured", Reason(err))

	incomplete := AlipayConfig{AppID: "only"}
	_, err = NewAlipay(&incomplete).Confirm(context.Background(), Request{Amount: decimal.NewFromInt(10)})
	assert.Equal(t, "alipay is not configured", Reason(err))
}

func TestAlipay_RedirectURL(t *testing.T) {
	cfg := validAlipayConfig()
	cfg.NotifyURL = "https://shop.example.com/notify"
	m := NewAlipay(&cfg, WithClock(fixedNow))

	conf, err := m.Confirm(context.Background(), Request{
		Amount:   decimal.RequireFromString("399.99"),
		Currency: "CNY",
		OrderID:  "order-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", conf.Reference)
	assert.Equal(t, MethodAlipay, conf.Provider)
	assert.Equal(t, "CNY", m.Currency())

	u, err := url.Parse(conf.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "openapi-sandbox.dl.alipaydev.com", u.Host)
	q := u.Query()
	assert.Equal(t, cfg.AppID, q.Get("app_id"))
	assert.Equal(t, "alipay.trade.page.pay", q.Get("method"))
	assert.Equal(t, "order-1", q.Get("out_trade_no"))
	assert.Equal(t, "399.99", q.Get("total_amount"))
	assert.Equal(t, cfg.ReturnURL, q.Get("return_url"))
	assert.Equal(t, cfg.NotifyURL, q.Get("notify_url"))
	assert.Equal(t, "2026-10-16 20:00:00", q.Get("timestamp"))
}

func TestAlipay_GeneratesTradeNo(t *testing.T) {
	cfg := validAlipayConfig()
	conf, err := NewAlipay(&cfg).Confirm(context.Background(), Request{Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Reference)
}
