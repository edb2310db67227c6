package cart

import (
	"errors"
	"strings"

	"pos-agent/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrEmptyCart            = errors.New("add at least one item to the cart")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrInvalidDiscount      = errors.New("discount must be between 0 and 100")
)

// OrderDraft holds the customer and payment details of the order being built.
type OrderDraft struct {
	CustomerName       string          `json:"customerName"`
	CustomerPhone      string          `json:"customerPhone,omitempty"`
	CustomerEmail      string          `json:"customerEmail,omitempty"`
	CustomerAddress    string          `json:"customerAddress,omitempty"`
	PaymentMethod      string          `json:"paymentMethod"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Notes              string          `json:"notes,omitempty"`
}

func NewDraft() OrderDraft {
	return OrderDraft{PaymentMethod: models.PaymentMethodCash, DiscountPercentage: decimal.Zero}
}

// ValidDiscount reports whether pct lies in [0, 100].
func ValidDiscount(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// Form is the order form: a cart and its draft.
type Form struct {
	Cart  *Cart
	Draft OrderDraft
}

func NewForm() *Form {
	return &Form{Cart: New(), Draft: NewDraft()}
}

func (f *Form) Totals() Totals {
	return ComputeTotals(f.Cart.Lines(), f.Draft.DiscountPercentage)
}

// Validate checks what must hold before the order goes to the server.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.Draft.CustomerName) == "" {
		return ErrCustomerNameRequired
	}
	if f.Cart.Len() == 0 {
		return ErrEmptyCart
	}
	if !models.ValidPaymentMethod(f.Draft.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	if !ValidDiscount(f.Draft.DiscountPercentage) {
		return ErrInvalidDiscount
	}
	return nil
}

// Request builds the place-order payload. Optional fields are trimmed and
// dropped when blank; a zero discount is omitted.
func (f *Form) Request() models.PlaceOrderRequest {
	d := f.Draft
	req := models.PlaceOrderRequest{
		CustomerName:    strings.TrimSpace(d.CustomerName),
		CustomerPhone:   strings.TrimSpace(d.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(d.CustomerEmail),
		CustomerAddress: strings.TrimSpace(d.CustomerAddress),
		PaymentMethod:   d.PaymentMethod,
		Notes:           strings.TrimSpace(d.Notes),
	}
	for _, l := range f.Cart.Lines() {
		req.Items = append(req.Items, models.TransactionItemRequest{
			ItemID:   l.ItemID,
			PackType: l.PackType,
			Quantity: l.Quantity,
		})
	}
	if d.DiscountPercentage.IsPositive() {
		pct := d.DiscountPercentage
		req.DiscountPercentage = &pct
	}
	return req
}

// Reset empties the cart and restores the default draft.
func (f *Form) Reset() {
	f.Cart.Clear()
	f.Draft = NewDraft()
}
