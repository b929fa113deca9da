package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/repository/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Set(context.Context, string, string) error   { return f.err }

func newRegistry(t *testing.T, store settings.Repository, def string) *Registry {
	t.Helper()
	r, err := NewRegistry(store, def, DefaultBreakerSettings(), nil, WithClock(fixedNow))
	require.NoError(t, err)
	return r
}

func TestNewRegistry_UnknownDefault(t *testing.T) {
	_, err := NewRegistry(settings.NewMemory(), "paypal", DefaultBreakerSettings(), nil)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestRegistry_LoadDefaults(t *testing.T) {
	r := newRegistry(t, settings.NewMemory(), "")

	methods, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MethodCard, methods.Default)
	assert.Equal(t, []string{MethodAlipay, MethodCard}, methods.Names())

	m, err := methods.Get("")
	require.NoError(t, err)
	assert.Equal(t, MethodCard, m.Name())

	alipay, err := methods.Get(MethodAlipay)
	require.NoError(t, err)
	_, err = alipay.Confirm(context.Background(), Request{Amount: decimal.NewFromInt(1)})
	assert.Equal(t, "alipay is not configured", Reason(err))

	_, err = methods.Get("paypal")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestRegistry_SaveAlipayConfig(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemory()
	r := newRegistry(t, store, MethodCard)

	_, err := r.SaveAlipayConfig(ctx, AlipayConfig{AppID: "only"})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	_, err = store.Get(ctx, AlipayConfigKey)
	require.ErrorIs(t, err, domain.ErrNotFound, "invalid config must not be stored")

	cfg := validAlipayConfig()
	cfg.GatewayURL = ""
	saved, err := r.SaveAlipayConfig(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultAlipayGateway, saved.GatewayURL)

	raw, err := store.Get(ctx, AlipayConfigKey)
	require.NoError(t, err)
	var stored AlipayConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, saved, stored)

	loaded, err := r.AlipayConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	methods, err := r.Load(ctx)
	require.NoError(t, err)
	alipay, err := methods.Get(MethodAlipay)
	require.NoError(t, err)
	conf, err := alipay.Confirm(ctx, Request{Amount: decimal.NewFromInt(5), OrderID: "o-1"})
	require.NoError(t, err)
	assert.Contains(t, conf.RedirectURL, "out_trade_no=o-1")
}

func TestRegistry_AlipayConfigDefaultsOnBadJSON(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemory()
	require.NoError(t, store.Set(ctx, AlipayConfigKey, "{not json"))

	cfg, err := newRegistry(t, store, "").AlipayConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultAlipayConfig(), cfg)
}

func TestRegistry_DefaultMethodOverride(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemory()
	r := newRegistry(t, store, MethodCard)

	require.ErrorIs(t, r.SetDefaultMethod(ctx, "cash"), ErrUnknownMethod)
	require.NoError(t, r.SetDefaultMethod(ctx, MethodAlipay))

	name, err := r.DefaultMethod(ctx)
	require.NoError(t, err)
	assert.Equal(t, MethodAlipay, name)

	methods, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, MethodAlipay, methods.Default)
}

func TestRegistry_StoreErrors(t *testing.T) {
	boom := errors.New("boom")
	r := newRegistry(t, failingStore{err: boom}, "")

	_, err := r.Load(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, r.SetDefaultMethod(context.Background(), MethodCard), boom)
}
