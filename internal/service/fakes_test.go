package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/models"
	"pos-agent/internal/notify"
	"pos-agent/internal/receipt"

	"github.com/shopspring/decimal"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Notify(level notify.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notify.Notification{Level: level, Message: message})
}

func (r *recordingNotifier) levels() []notify.Level {
	var out []notify.Level
	for _, n := range r.sent {
		out = append(out, n.Level)
	}
	return out
}

func (r *recordingNotifier) last() notify.Notification {
	if len(r.sent) == 0 {
		return notify.Notification{}
	}
	return r.sent[len(r.sent)-1]
}

type fakeRenderer struct {
	err     error
	panics  bool
	renders []*receipt.Receipt
}

func (f *fakeRenderer) Render(_ context.Context, r *receipt.Receipt) (string, error) {
	if f.panics {
		panic("canvas exploded")
	}
	f.renders = append(f.renders, r)
	if f.err != nil {
		return "", f.err
	}
	return "/tmp/" + r.Filename(), nil
}

type recordingPublisher struct {
	placed  []*models.OrderPlacedEvent
	failed  []*models.ReceiptFailedEvent
	expired []*models.SessionExpiredEvent
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	p.placed = append(p.placed, e)
	return nil
}

func (p *recordingPublisher) PublishReceiptFailed(_ context.Context, e *models.ReceiptFailedEvent) error {
	p.failed = append(p.failed, e)
	return nil
}

func (p *recordingPublisher) PublishSessionExpired(_ context.Context, e *models.SessionExpiredEvent) error {
	p.expired = append(p.expired, e)
	return errors.New("broker down")
}

// fakeAPI implements OrderAPI, InventoryAPI and ReportAPI.
type fakeAPI struct {
	items       map[int64]*models.Item
	placeErr    error
	placed      []models.PlaceOrderRequest
	mutationErr error
	calls       []string
	page        *models.TransactionPage
	listErr     error
	uploadedURL string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: map[int64]*models.Item{
		1: {ID: 1, Name: "Widget", Active: true, TotalQuantity: 48, Packs: []models.Pack{
			{ID: 10, Type: "CARTON", ItemQuantityInPack: 24, CostPrice: decimal.NewFromInt(80), SellingPrice: decimal.NewFromInt(100)},
		}},
	}}
}

func serverError(status int, message string) error {
	return &apiclient.Error{Method: http.MethodPost, Path: "/x", StatusCode: status, Message: message}
}

func (f *fakeAPI) GetItem(_ context.Context, id int64) (*models.Item, error) {
	f.calls = append(f.calls, "get-item")
	item, ok := f.items[id]
	if !ok {
		return nil, serverError(http.StatusNotFound, "Item not found")
	}
	cp := *item
	return &cp, nil
}

func (f *fakeAPI) PlaceOrder(_ context.Context, body models.PlaceOrderRequest) (*models.Transaction, error) {
	f.calls = append(f.calls, "place-order")
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.placed = append(f.placed, body)
	return &models.Transaction{
		ID:                   77,
		TransactionReference: "TX-77",
		PaymentMethod:        body.PaymentMethod,
		SalesPersonEmail:     "ada@shop.ng",
		TotalAmount:          decimal.NewFromInt(180),
	}, nil
}

func (f *fakeAPI) ListItems(context.Context) ([]models.Item, error) {
	f.calls = append(f.calls, "list-items")
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Item
	for _, it := range f.items {
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeAPI) CreateItem(_ context.Context, body models.ItemCreateRequest, _ *apiclient.File) (*models.Item, error) {
	f.calls = append(f.calls, "create-item")
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &models.Item{ID: 2, Name: body.Name, Active: true}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, id int64, body models.UpdateItemRequest) (*models.Item, error) {
	f.calls = append(f.calls, "update-item")
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &models.Item{ID: id, Name: body.Name}, nil
}

func (f *fakeAPI) DeleteItem(context.Context, int64) error {
	f.calls = append(f.calls, "delete-item")
	return f.mutationErr
}

func (f *fakeAPI) UploadItemImage(context.Context, int64, *apiclient.File) (string, error) {
	f.calls = append(f.calls, "upload-image")
	return f.uploadedURL, nil
}

func (f *fakeAPI) AddStock(context.Context, int64, models.AddStockRequest) (*models.MessageResponse, error) {
	f.calls = append(f.calls, "add-stock")
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &models.MessageResponse{Message: "Stock added"}, nil
}

func (f *fakeAPI) UpdateStock(context.Context, int64, models.UpdateStockRequest) (*models.MessageResponse, error) {
	f.calls = append(f.calls, "update-stock")
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &models.MessageResponse{Message: "Updated"}, nil
}

func (f *fakeAPI) ListStock(context.Context) ([]models.StockRecord, error) {
	f.calls = append(f.calls, "list-stock")
	return []models.StockRecord{{ID: 1, ItemID: 1, PackType: "CARTON", PacksAdded: 2}}, nil
}

func (f *fakeAPI) StockHistory(context.Context, int64) (*models.StockHistory, error) {
	f.calls = append(f.calls, "stock-history")
	return &models.StockHistory{TotalStockAdded: 48}, nil
}

func (f *fakeAPI) ListTransactions(context.Context, models.TransactionFilter) (*models.TransactionPage, error) {
	f.calls = append(f.calls, "list-transactions")
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.page == nil {
		return &models.TransactionPage{}, nil
	}
	return f.page, nil
}

func (f *fakeAPI) IncomeByPaymentMethod(context.Context, string, string) (*models.IncomeByPaymentMethod, error) {
	f.calls = append(f.calls, "income")
	return &models.IncomeByPaymentMethod{GrandTotal: decimal.NewFromInt(500), Currency: "NGN"}, nil
}

func (f *fakeAPI) TopItems(context.Context, string, string) ([]models.ItemSales, error) {
	f.calls = append(f.calls, "top-items")
	return []models.ItemSales{{ItemID: 1, ItemName: "Widget", TotalQuantitySold: 10}}, nil
}

func (f *fakeAPI) BottomItems(context.Context, string, string) ([]models.ItemSales, error) {
	f.calls = append(f.calls, "bottom-items")
	return nil, serverError(http.StatusInternalServerError, "")
}
