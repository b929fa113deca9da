package domain

import "time"

type CheckoutStatus string

const (
	CheckoutStatusEditing    CheckoutStatus = "EDITING"
	CheckoutStatusSubmitting CheckoutStatus = "SUBMITTING"
	CheckoutStatusSucceeded  CheckoutStatus = "SUCCEEDED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// ShippingDetails holds the free-text delivery fields collected at checkout.
type ShippingDetails struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

// CardDetails mirrors the card form. Shape checks are left to the card method.
type CardDetails struct {
	Number string `json:"cardNumber"`
	Holder string `json:"cardHolder"`
	Expiry string `json:"expiryDate"`
	CVV    string `json:"cvv"`
}

// Receipt is what a successful checkout leaves behind for the confirmation view.
type Receipt struct {
	Reference   string       `json:"reference"`
	Provider    string       `json:"provider"`
	RedirectURL string       `json:"redirectUrl,omitempty"`
	Snapshot    CartSnapshot `json:"snapshot"`
	CompletedAt time.Time    `json:"completedAt"`
}
