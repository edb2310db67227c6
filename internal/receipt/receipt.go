package receipt

import (
	"strings"
	"time"

	"pos-agent/internal/cart"
	"pos-agent/internal/models"

	"github.com/shopspring/decimal"
)

// Business is the header printed on every receipt.
type Business struct {
	Name    string
	Address string
	Phone   string
}

type Line struct {
	Name      string
	PackType  string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Receipt is everything printed for one committed transaction.
type Receipt struct {
	Reference          string
	Timestamp          time.Time
	CustomerName       string
	CustomerPhone      string
	CustomerEmail      string
	CustomerAddress    string
	PaymentMethod      string
	Notes              string
	Lines              []Line
	Subtotal           decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	Total              decimal.Decimal
}

// FromOrder builds the receipt for an order just placed from the form, using
// the server's reference and timestamp.
func FromOrder(draft cart.OrderDraft, lines []cart.CartItem, totals cart.Totals, tx *models.Transaction) *Receipt {
	r := &Receipt{
		Reference:          tx.TransactionReference,
		Timestamp:          tx.CreatedOn.Time,
		CustomerName:       strings.TrimSpace(draft.CustomerName),
		CustomerPhone:      strings.TrimSpace(draft.CustomerPhone),
		CustomerEmail:      strings.TrimSpace(draft.CustomerEmail),
		CustomerAddress:    strings.TrimSpace(draft.CustomerAddress),
		PaymentMethod:      draft.PaymentMethod,
		Notes:              strings.TrimSpace(draft.Notes),
		Subtotal:           totals.Subtotal,
		DiscountPercentage: draft.DiscountPercentage,
		DiscountAmount:     totals.DiscountAmount,
		Total:              totals.Total,
	}
	for _, l := range lines {
		r.Lines = append(r.Lines, Line{
			Name:      l.ItemName,
			PackType:  l.PackType,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	return r
}

// FromTransaction builds a reprint from a listed transaction.
func FromTransaction(tx *models.Transaction) *Receipt {
	r := &Receipt{
		Reference:       tx.TransactionReference,
		Timestamp:       tx.CreatedOn.Time,
		CustomerName:    tx.CustomerName,
		CustomerPhone:   tx.CustomerPhone,
		CustomerEmail:   tx.CustomerEmail,
		CustomerAddress: tx.CustomerAddress,
		PaymentMethod:   tx.PaymentMethod,
		Notes:           tx.Notes,
		Subtotal:        tx.Subtotal,
		DiscountAmount:  tx.DiscountAmount,
		Total:           tx.TotalAmount,
	}
	if tx.Subtotal.IsPositive() && tx.DiscountAmount.IsPositive() {
		r.DiscountPercentage = tx.DiscountAmount.Mul(decimal.NewFromInt(100)).Div(tx.Subtotal).Round(1)
	}
	for _, it := range tx.Items {
		r.Lines = append(r.Lines, Line{
			Name:      it.ItemName,
			PackType:  it.PackType,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return r
}

// Filename is the name the rendered image is saved under.
func (r *Receipt) Filename() string {
	return "receipt-" + sanitize(r.Reference) + ".png"
}

func sanitize(ref string) string {
	if ref == "" {
		return "unknown"
	}
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		default:
			return '_'
		}
	}, ref)
}
