package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/repository/settings"
	"github.com/rs/zerolog"
)

// Settings keys.
const (
	AlipayConfigKey  = "alipayConfig"
	DefaultMethodKey = "paymentMethod"
)

var ErrUnknownMethod = errors.New("unknown payment method")

// Registry builds the payment methods available to a checkout from the
// settings store.
type Registry struct {
	store         settings.Repository
	defaultMethod string
	opts          []Option
	breakers      map[string]*Breaker
	logger        *zerolog.Logger
}

// NewRegistry returns a registry whose fallback method is defaultMethod
// (card when empty). opts apply to every method built.
func NewRegistry(store settings.Repository, defaultMethod string, breaker BreakerSettings, logger *zerolog.Logger, opts ...Option) (*Registry, error) {
	if defaultMethod == "" {
		defaultMethod = MethodCard
	}
	if !knownMethod(defaultMethod) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, defaultMethod)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Registry{
		store:         store,
		defaultMethod: defaultMethod,
		opts:          opts,
		breakers: map[string]*Breaker{
			MethodCard:   NewBreaker(MethodCard, breaker, logger),
			MethodAlipay: NewBreaker(MethodAlipay, breaker, logger),
		},
		logger: logger,
	}, nil
}

// Load reads the current configuration and returns the methods for one
// checkout. Settings are read once here so a checkout sees a stable view.
func (r *Registry) Load(ctx context.Context) (*Methods, error) {
	cfg, err := r.AlipayConfig(ctx)
	if err != nil {
		return nil, err
	}
	def, err := r.DefaultMethod(ctx)
	if err != nil {
		return nil, err
	}
	var alipayCfg *AlipayConfig
	if cfg.Validate() == nil {
		alipayCfg = &cfg
	}
	return &Methods{
		Default: def,
		byName: map[string]Method{
			MethodCard:   r.breakers[MethodCard].Wrap(NewCard(r.opts...)),
			MethodAlipay: r.breakers[MethodAlipay].Wrap(NewAlipay(alipayCfg, r.opts...)),
		},
	}, nil
}

// AlipayConfig returns the stored wallet configuration, or the defaults when
// nothing has been saved yet.
func (r *Registry) AlipayConfig(ctx context.Context) (AlipayConfig, error) {
	cfg := DefaultAlipayConfig()
	raw, err := r.store.Get(ctx, AlipayConfigKey)
	if errors.Is(err, domain.ErrNotFound) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("load alipay config: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		r.logger.Warn().Err(err).Msg("stored alipay config is not valid json, using defaults")
		return DefaultAlipayConfig(), nil
	}
	return cfg, nil
}

// SaveAlipayConfig validates cfg and stores it. Nothing is written when
// validation fails.
func (r *Registry) SaveAlipayConfig(ctx context.Context, cfg AlipayConfig) (AlipayConfig, error) {
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = DefaultAlipayGateway
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("encode alipay config: %w", err)
	}
	if err := r.store.Set(ctx, AlipayConfigKey, string(raw)); err != nil {
		return cfg, fmt.Errorf("save alipay config: %w", err)
	}
	r.logger.Info().Str("app_id", cfg.AppID).Bool("sandbox", cfg.Sandbox).Msg("alipay config saved")
	return cfg, nil
}

// DefaultMethod returns the stored override or the configured default.
func (r *Registry) DefaultMethod(ctx context.Context) (string, error) {
	name, err := r.store.Get(ctx, DefaultMethodKey)
	if errors.Is(err, domain.ErrNotFound) {
		return r.defaultMethod, nil
	}
	if err != nil {
		return "", fmt.Errorf("load payment method: %w", err)
	}
	if !knownMethod(name) {
		return r.defaultMethod, nil
	}
	return name, nil
}

func (r *Registry) SetDefaultMethod(ctx context.Context, name string) error {
	if !knownMethod(name) {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	if err := r.store.Set(ctx, DefaultMethodKey, name); err != nil {
		return fmt.Errorf("save payment method: %w", err)
	}
	return nil
}

func knownMethod(name string) bool {
	return name == MethodCard || name == MethodAlipay
}

// Methods is the set of payment methods bound to one checkout.
type Methods struct {
	Default string
	byName  map[string]Method
}

// NewMethods builds a set from explicit methods; the first is the default.
func NewMethods(ms ...Method) *Methods {
	out := &Methods{byName: make(map[string]Method, len(ms))}
	for _, m := range ms {
		if out.Default == "" {
			out.Default = m.Name()
		}
		out.byName[m.Name()] = m
	}
	return out
}

// Get returns the method registered as name. An empty name selects the
// default.
func (m *Methods) Get(name string) (Method, error) {
	if name == "" {
		name = m.Default
	}
	method, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	return method, nil
}

func (m *Methods) Names() []string {
	out := make([]string, 0, len(m.byName))
	for name := range m.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
