package receipt

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Columns is the character width of a receipt line.
const Columns = 50

type align int

const (
	alignLeft align = iota
	alignCenter
	alignSplit
	alignRule
)

type row struct {
	left  string
	right string
	align align
	bold  bool
}

// Formatter lays a receipt out as fixed-width rows.
type Formatter struct {
	Business Business
	Currency string
	Location *time.Location
}

// NewFormatter loads the display time zone, falling back to a fixed offset
// when the zone database is unavailable.
func NewFormatter(b Business, currency, tz string) *Formatter {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.FixedZone("WAT", 60*60)
	}
	return &Formatter{Business: b, Currency: currency, Location: loc}
}

func (f *Formatter) Money(d decimal.Decimal) string {
	return FormatMoney(f.Currency, d)
}

// FormatMoney renders d with two decimals and thousands separators.
func FormatMoney(currency string, d decimal.Decimal) string {
	d = d.Round(2)
	s := d.Abs().StringFixed(2)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	if currency != "" {
		b.WriteString(currency)
		b.WriteByte(' ')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

func (f *Formatter) Time(t time.Time) string {
	return t.In(f.Location).Format("02/01/2006, 3:04:05 pm")
}

func (f *Formatter) rows(r *Receipt) []row {
	rows := []row{
		{left: f.Business.Name, align: alignCenter, bold: true},
		{left: f.Business.Address, align: alignCenter},
		{left: "Tel: " + f.Business.Phone, align: alignCenter},
		{left: "OFFICIAL RECEIPT", align: alignCenter},
		{left: "Ref: " + r.Reference, align: alignCenter, bold: true},
		{left: f.Time(r.Timestamp), align: alignCenter},
		{align: alignRule},
		{left: "Customer:", bold: true},
		{left: r.CustomerName},
	}
	for _, opt := range []string{r.CustomerPhone, r.CustomerEmail, r.CustomerAddress} {
		if opt != "" {
			rows = append(rows, row{left: opt})
		}
	}
	rows = append(rows, row{align: alignRule})

	for _, l := range r.Lines {
		rows = append(rows,
			row{left: l.Name, right: f.Money(l.LineTotal), align: alignSplit},
			row{left: "  " + l.PackType + " x " + strconv.Itoa(l.Quantity), right: "@" + l.UnitPrice.StringFixed(2), align: alignSplit},
		)
	}
	rows = append(rows, row{align: alignRule},
		row{left: "Subtotal", right: f.Money(r.Subtotal), align: alignSplit})
	if r.DiscountPercentage.IsPositive() {
		rows = append(rows, row{
			left:  "Discount (" + r.DiscountPercentage.StringFixed(1) + "%)",
			right: "-" + f.Money(r.DiscountAmount),
			align: alignSplit,
		})
	}
	rows = append(rows,
		row{left: "TOTAL", right: f.Money(r.Total), align: alignSplit, bold: true},
		row{},
		row{left: "Payment Method", bold: true},
		row{left: strings.ReplaceAll(r.PaymentMethod, "_", " ")},
	)
	if r.Notes != "" {
		rows = append(rows, row{}, row{left: "Notes", bold: true}, row{left: r.Notes})
	}
	rows = append(rows,
		row{align: alignRule},
		row{left: "Thank you for your patronage!", align: alignCenter},
	)
	return rows
}

// Text renders the receipt as plain fixed-width lines.
func (f *Formatter) Text(r *Receipt) string {
	var b strings.Builder
	for _, rw := range f.rows(r) {
		b.WriteString(strings.TrimRight(layout(rw), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func layout(rw row) string {
	switch rw.align {
	case alignRule:
		return strings.Repeat("-", Columns)
	case alignCenter:
		pad := (Columns - len(rw.left)) / 2
		if pad < 0 {
			pad = 0
		}
		return strings.Repeat(" ", pad) + rw.left
	case alignSplit:
		gap := Columns - len(rw.left) - len(rw.right)
		if gap < 1 {
			gap = 1
		}
		return rw.left + strings.Repeat(" ", gap) + rw.right
	default:
		return rw.left
	}
}
