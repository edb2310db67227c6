package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced    = "ORDER_PLACED"
	EventTypeReceiptFailed  = "RECEIPT_FAILED"
	EventTypeSessionExpired = "SESSION_EXPIRED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published once the remote API has committed an order
type OrderPlacedEvent struct {
	BaseEvent
	TransactionID        int64           `json:"transaction_id"`
	TransactionReference string          `json:"transaction_reference"`
	PaymentMethod        string          `json:"payment_method"`
	SalesPersonEmail     string          `json:"sales_person_email"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Items                []OrderItemData `json:"items"`
}

// ReceiptFailedEvent published when the best-effort receipt step fails
type ReceiptFailedEvent struct {
	BaseEvent
	TransactionReference string `json:"transaction_reference"`
	Reason               string `json:"reason"`
}

// SessionExpiredEvent published when repeated auth failures force a login redirect
type SessionExpiredEvent struct {
	BaseEvent
	Failures int    `json:"failures"`
	Redirect string `json:"redirect"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ItemID    int64           `json:"item_id"`
	PackType  string          `json:"pack_type"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
