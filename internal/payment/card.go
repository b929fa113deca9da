package payment

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Test card numbers with a fixed outcome.
const (
	CardDeclined          = "4000000000000002"
	CardInsufficientFunds = "4000000000009995"
)

type card struct {
	opts options
}

// NewCard returns the simulated card-form variant. It checks the card fields
// and approves any well-formed card except the test decline numbers.
func NewCard(opts ...Option) Method {
	return &card{opts: buildOptions(opts)}
}

func (c *card) Name() string     { return MethodCard }
func (c *card) Currency() string { return "USD" }

func (c *card) Confirm(ctx context.Context, req Request) (Confirmation, error) {
	if !req.Amount.IsPositive() {
		return Confirmation{}, fail("amount must be positive")
	}
	details := req.Billing.Card
	if details == nil {
		return Confirmation{}, fail("card details are required")
	}
	if strings.TrimSpace(details.Holder) == "" {
		return Confirmation{}, fail("cardholder name is required")
	}
	number := normalizeCardNumber(details.Number)
	if len(number) < 12 || len(number) > 19 || !isDigits(number) || !luhnValid(number) {
		return Confirmation{}, fail("card number is invalid")
	}
	if !validExpiry(details.Expiry, c.opts.now()) {
		return Confirmation{}, fail("card has expired or expiry date is invalid")
	}
	cvv := strings.TrimSpace(details.CVV)
	if len(cvv) < 3 || len(cvv) > 4 || !isDigits(cvv) {
		return Confirmation{}, fail("security code is invalid")
	}

	if err := wait(ctx, c.opts.delay); err != nil {
		return Confirmation{}, err
	}

	switch number {
	case CardDeclined:
		return Confirmation{}, fail("card declined")
	case CardInsufficientFunds:
		return Confirmation{}, fail("insufficient funds")
	}
	return Confirmation{
		Reference: "pi_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Provider:  MethodCard,
	}, nil
}

func normalizeCardNumber(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validExpiry accepts MM/YY; the card is valid through the end of that month.
func validExpiry(expiry string, now time.Time) bool {
	month, year, ok := strings.Cut(strings.TrimSpace(expiry), "/")
	if !ok || len(month) != 2 || len(year) != 2 {
		return false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	endOfMonth := time.Date(2000+y, time.Month(m)+1, 1, 0, 0, 0, 0, time.UTC)
	return now.UTC().Before(endOfMonth)
}
