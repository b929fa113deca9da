package checkout

import (
	"context"
	"fmt"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/notify"
	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	"github.com/rs/zerolog"
)

type methodLoader interface {
	Load(ctx context.Context) (*payment.Methods, error)
}

// Service starts checkouts with the payment configuration current at entry.
type Service struct {
	methods methodLoader
	logger  *zerolog.Logger
	opts    []Option
}

func NewService(methods methodLoader, logger *zerolog.Logger, opts ...Option) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{methods: methods, logger: logger, opts: opts}
}

// Enter returns the flow the shopper should see. An open flow is reused; a
// finished flow stays visible until the cart is filled again; anything else
// gets a fresh flow, which requires a non-empty cart.
func (s *Service) Enter(ctx context.Context, current *Flow, c Cart, n notify.Notifier) (*Flow, error) {
	if current != nil {
		switch current.Status() {
		case domain.CheckoutStatusSubmitting:
			return current, nil
		case domain.CheckoutStatusEditing:
			if !current.Abandoned() && !c.IsEmpty() {
				return current, nil
			}
		case domain.CheckoutStatusSucceeded:
			if c.IsEmpty() {
				return current, nil
			}
		}
		current.Close()
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	methods, err := s.methods.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}
	opts := append([]Option{WithLogger(s.logger), WithNotifier(n)}, s.opts...)
	f, err := Begin(c, methods, opts...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("checkout_id", f.ID()).Str("default_method", methods.Default).Msg("checkout: started")
	return f, nil
}
