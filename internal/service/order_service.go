package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/broker"
	"pos-agent/internal/cart"
	"pos-agent/internal/models"
	"pos-agent/internal/notify"
	"pos-agent/internal/receipt"
	"pos-agent/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgOrderPlaced        = "Order placed successfully!"
	msgOrderFailed        = "Order placement failed"
	msgReceiptAfterCommit = "Order saved, but receipt download failed. You can reprint later."
)

// OrderAPI is what order placement needs from the remote API.
type OrderAPI interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	PlaceOrder(ctx context.Context, body models.PlaceOrderRequest) (*models.Transaction, error)
}

// ReceiptRenderer produces a receipt image and returns where it was stored.
type ReceiptRenderer interface {
	Render(ctx context.Context, r *receipt.Receipt) (string, error)
}

// FormView is a snapshot of the order form with freshly computed totals.
type FormView struct {
	Lines  []cart.CartItem `json:"lines"`
	Draft  cart.OrderDraft `json:"draft"`
	Totals cart.Totals     `json:"totals"`
}

// SubmitResult describes a committed order. ReceiptError is set when only the
// receipt step failed.
type SubmitResult struct {
	Transaction  *models.Transaction `json:"transaction"`
	ReceiptPath  string              `json:"receiptPath,omitempty"`
	ReceiptError string              `json:"receiptError,omitempty"`
}

// OrderService owns the order form. All form operations, including
// submission, are serialized.
type OrderService struct {
	api            OrderAPI
	renderer       ReceiptRenderer
	notifier       notify.Notifier
	eventPublisher broker.Publisher
	logger         *zap.Logger

	mu   sync.Mutex
	form *cart.Form
}

// NewOrderService creates a new order service
func NewOrderService(
	api OrderAPI,
	renderer ReceiptRenderer,
	notifier notify.Notifier,
	eventPublisher broker.Publisher,
) *OrderService {
	if eventPublisher == nil {
		eventPublisher = broker.NopPublisher{}
	}
	return &OrderService{
		api:            api,
		renderer:       renderer,
		notifier:       notifier,
		eventPublisher: eventPublisher,
		logger:         util.Named("orders"),
		form:           cart.NewForm(),
	}
}

func (s *OrderService) View() FormView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *OrderService) view() FormView {
	return FormView{
		Lines:  s.form.Cart.Lines(),
		Draft:  s.form.Draft,
		Totals: s.form.Totals(),
	}
}

// AddLine adds a selection priced at its current selling price.
func (s *OrderService) AddLine(ctx context.Context, itemID int64, packType string, qty int) (FormView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "OrderService.AddLine", attribute.Int64("pos.item_id", itemID))
	defer span.End()

	if _, err := s.form.Cart.AddLine(ctx, s.api, itemID, packType, qty); err != nil {
		util.RecordError(span, err)
		if _, remote := apiclient.AsError(err); remote {
			s.notifier.Notify(notify.LevelError, apiclient.MessageOf(err, "Failed to load item price"))
		} else {
			s.notifier.Notify(notify.LevelError, sentence(err))
		}
		return s.view(), err
	}
	return s.view(), nil
}

func (s *OrderService) RemoveLine(index int) (FormView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.form.Cart.RemoveLine(index); err != nil {
		return s.view(), err
	}
	return s.view(), nil
}

// UpdateDraft replaces the customer and payment details of the form.
func (s *OrderService) UpdateDraft(draft cart.OrderDraft) (FormView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.PaymentMethod == "" {
		draft.PaymentMethod = models.PaymentMethodCash
	}
	if !models.ValidPaymentMethod(draft.PaymentMethod) {
		return s.view(), cart.ErrInvalidPaymentMethod
	}
	if !cart.ValidDiscount(draft.DiscountPercentage) {
		return s.view(), cart.ErrInvalidDiscount
	}
	s.form.Draft = draft
	return s.view(), nil
}

func (s *OrderService) Reset() FormView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Reset()
	return s.view()
}

// Submit places the order. Once the server commits it the order counts as
// placed; the receipt is a best-effort step whose failure only produces a
// warning. A failed placement leaves the form untouched.
func (s *OrderService) Submit(ctx context.Context) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "OrderService.Submit")
	defer span.End()

	if err := s.form.Validate(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		s.notifier.Notify(notify.LevelError, sentence(err))
		return nil, err
	}

	tx, err := s.api.PlaceOrder(ctx, s.form.Request())
	if err != nil {
		util.RecordError(span, err)
		util.OrdersFailedTotal.WithLabelValues("rejected").Inc()
		s.logger.Error("Order placement failed", zap.Error(err))
		s.notifier.Notify(notify.LevelError, apiclient.MessageOf(err, msgOrderFailed))
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	span.SetAttributes(attribute.String("pos.reference", tx.TransactionReference))
	s.logger.Info("Order placed",
		zap.Int64("transaction_id", tx.ID),
		zap.String("reference", tx.TransactionReference))
	s.notifier.Notify(notify.LevelSuccess, msgOrderPlaced)

	lines := s.form.Cart.Lines()
	result := &SubmitResult{Transaction: tx}
	rcpt := receipt.FromOrder(s.form.Draft, lines, s.form.Totals(), tx)

	path, err := s.renderReceipt(ctx, rcpt)
	if err != nil {
		util.ReceiptsFailedTotal.Inc()
		s.logger.Warn("Receipt generation failed",
			zap.String("reference", tx.TransactionReference),
			zap.Error(err))
		s.notifier.Notify(notify.LevelWarning, msgReceiptAfterCommit)
		result.ReceiptError = err.Error()
		s.publishReceiptFailed(ctx, tx.TransactionReference, err)
	} else {
		result.ReceiptPath = path
	}

	s.publishOrderPlaced(ctx, tx, lines)
	s.form.Reset()
	return result, nil
}

// renderReceipt runs the renderer, turning a panic into an error.
func (s *OrderService) renderReceipt(ctx context.Context, r *receipt.Receipt) (path string, err error) {
	if s.renderer == nil {
		return "", fmt.Errorf("no receipt renderer configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("receipt renderer panicked: %v", rec)
		}
	}()
	return s.renderer.Render(ctx, r)
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, tx *models.Transaction, lines []cart.CartItem) {
	items := make([]models.OrderItemData, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItemData{
			ItemID:    l.ItemID,
			PackType:  l.PackType,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		TransactionID:        tx.ID,
		TransactionReference: tx.TransactionReference,
		PaymentMethod:        tx.PaymentMethod,
		SalesPersonEmail:     tx.SalesPersonEmail,
		TotalAmount:          tx.TotalAmount,
		Items:                items,
	}

	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func (s *OrderService) publishReceiptFailed(ctx context.Context, reference string, cause error) {
	event := &models.ReceiptFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReceiptFailed,
			Timestamp: time.Now(),
		},
		TransactionReference: reference,
		Reason:               cause.Error(),
	}

	if err := s.eventPublisher.PublishReceiptFailed(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReceiptFailed event", zap.Error(err))
	}
}
