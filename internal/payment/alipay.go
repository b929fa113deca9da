package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAlipayGateway = "https://openapi.alipay.com/gateway.do"
	SandboxAlipayGateway = "https://openapi-sandbox.dl.alipaydev.com/gateway.do"
)

// AlipayConfig is the merchant configuration of the wallet variant. It is
// stored as JSON in the settings store.
type AlipayConfig struct {
	AppID      string `json:"appId"`
	MerchantID string `json:"merchantId"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
	// GatewayURL overrides both public gateways when set to anything other
	// than DefaultAlipayGateway.
	GatewayURL string `json:"gatewayUrl"`
	// Sandbox selects SandboxAlipayGateway unless GatewayURL overrides it.
	Sandbox    bool   `json:"sandbox"`
	ReturnURL  string `json:"returnUrl"`
	NotifyURL  string `json:"notifyUrl,omitempty"`
}

func DefaultAlipayConfig() AlipayConfig {
	return AlipayConfig{GatewayURL: DefaultAlipayGateway, Sandbox: true}
}

// ConfigError lists the fields a save was rejected for.
type ConfigError struct {
	Fields []string
}

func (e *ConfigError) Error() string {
	return "invalid alipay config: missing " + strings.Join(e.Fields, ", ")
}

func (c AlipayConfig) Validate() error {
	var missing []string
	required := []struct {
		name, value string
	}{
		{"appId", c.AppID},
		{"merchantId", c.MerchantID},
		{"privateKey", c.PrivateKey},
		{"publicKey", c.PublicKey},
		{"returnUrl", c.ReturnURL},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Fields: missing}
	}
	if c.GatewayURL != "" {
		if u, err := url.Parse(c.GatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid alipay config: gatewayUrl %q is not an absolute URL", c.GatewayURL)
		}
	}
	return nil
}

// Gateway is the endpoint payments are redirected to.
func (c AlipayConfig) Gateway() string {
	if c.GatewayURL != "" && c.GatewayURL != DefaultAlipayGateway {
		return c.GatewayURL
	}
	if c.Sandbox {
		return SandboxAlipayGateway
	}
	return DefaultAlipayGateway
}

type alipay struct {
	cfg  *AlipayConfig
	opts options
}

// NewAlipay returns the simulated wallet variant. A nil cfg means the
// merchant has not configured the wallet; Confirm then fails.
func NewAlipay(cfg *AlipayConfig, opts ...Option) Method {
	return &alipay{cfg: cfg, opts: buildOptions(opts)}
}

func (a *alipay) Name() string     { return MethodAlipay }
func (a *alipay) Currency() string { return "CNY" }

func (a *alipay) Confirm(ctx context.Context, req Request) (Confirmation, error) {
	if a.cfg == nil {
		return Confirmation{}, fail("alipay is not configured")
	}
	if err := a.cfg.Validate(); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return Confirmation{}, fail("alipay is not configured")
		}
		return Confirmation{}, fail("%s", err.Error())
	}
	if !req.Amount.IsPositive() {
		return Confirmation{}, fail("amount must be positive")
	}

	if err := wait(ctx, a.opts.delay); err != nil {
		return Confirmation{}, err
	}

	tradeNo := req.OrderID
	if tradeNo == "" {
		tradeNo = fmt.Sprintf("%d%s", a.opts.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	redirect, err := a.pageURL(tradeNo, req)
	if err != nil {
		return Confirmation{}, err
	}
	return Confirmation{
		Reference:   tradeNo,
		Provider:    MethodAlipay,
		RedirectURL: redirect,
	}, nil
}

func (a *alipay) pageURL(tradeNo string, req Request) (string, error) {
	u, err := url.Parse(a.cfg.Gateway())
	if err != nil {
		return "", fmt.Errorf("parse gateway: %w", err)
	}
	q := u.Query()
	q.Set("app_id", a.cfg.AppID)
	q.Set("method", "alipay.trade.page.pay")
	q.Set("charset", "utf-8")
	q.Set("timestamp", a.opts.now().In(time.FixedZone("CST", 8*3600)).Format("2006-01-02 15:04:05"))
	q.Set("out_trade_no", tradeNo)
	q.Set("total_amount", req.Amount.StringFixed(2))
	q.Set("subject", "Order "+tradeNo)
	q.Set("return_url", a.cfg.ReturnURL)
	if a.cfg.NotifyURL != "" {
		q.Set("notify_url", a.cfg.NotifyURL)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
