package service

import (
	"context"
	"strings"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/models"
	"pos-agent/internal/notify"
	"pos-agent/internal/util"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InventoryAPI is the item and stock surface of the remote API.
type InventoryAPI interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, body models.ItemCreateRequest, image *apiclient.File) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, body models.UpdateItemRequest) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	UploadItemImage(ctx context.Context, id int64, image *apiclient.File) (string, error)
	AddStock(ctx context.Context, itemID int64, body models.AddStockRequest) (*models.MessageResponse, error)
	UpdateStock(ctx context.Context, stockID int64, body models.UpdateStockRequest) (*models.MessageResponse, error)
	ListStock(ctx context.Context) ([]models.StockRecord, error)
	StockHistory(ctx context.Context, itemID int64) (*models.StockHistory, error)
}

// InventoryService validates item and stock changes before they reach the
// remote API and reports every outcome as a notification.
type InventoryService struct {
	api      InventoryAPI
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(api InventoryAPI, notifier notify.Notifier) *InventoryService {
	return &InventoryService{
		api:      api,
		notifier: notifier,
		logger:   util.Named("inventory"),
	}
}

func (s *InventoryService) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.api.ListItems(ctx)
	if err != nil {
		return nil, s.failed(err, "Failed to load items")
	}
	return items, nil
}

func (s *InventoryService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.api.GetItem(ctx, id)
	if err != nil {
		return nil, s.failed(err, "Load failed")
	}
	return item, nil
}

// AvailableStock returns the item's current total quantity.
func (s *InventoryService) AvailableStock(ctx context.Context, id int64) (int, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return 0, err
	}
	return item.TotalQuantity, nil
}

func (s *InventoryService) CreateItem(ctx context.Context, req models.ItemCreateRequest, image *apiclient.File) (*models.Item, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.CreateItem")
	defer span.End()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, s.rejected(ErrItemNameRequired)
	}
	for _, p := range req.Packs {
		if !packComplete(p.Type, p.CostPrice, p.SellingPrice) {
			return nil, s.rejected(ErrIncompletePack)
		}
	}

	item, err := s.api.CreateItem(ctx, req, image)
	if err != nil {
		util.RecordError(span, err)
		return nil, s.failed(err, "Save failed")
	}

	s.notifier.Notify(notify.LevelSuccess, "Item created")
	s.logger.Info("Item created", zap.Int64("item_id", item.ID), zap.String("name", item.Name))
	return item, nil
}

// UpdateItem saves the item and, when image is set, uploads it afterwards.
func (s *InventoryService) UpdateItem(ctx context.Context, id int64, req models.UpdateItemRequest, image *apiclient.File) (*models.Item, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.UpdateItem", attribute.Int64("pos.item_id", id))
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, s.rejected(ErrItemNameRequired)
	}
	for _, p := range req.Packs {
		if !p.Deleted && !packComplete(p.Type, p.CostPrice, p.SellingPrice) {
			return nil, s.rejected(ErrIncompletePack)
		}
	}

	item, err := s.api.UpdateItem(ctx, id, req)
	if err != nil {
		util.RecordError(span, err)
		return nil, s.failed(err, "Update failed")
	}

	if image != nil {
		url, err := s.api.UploadItemImage(ctx, id, image)
		if err != nil {
			util.RecordError(span, err)
			return nil, s.failed(err, "Update failed")
		}
		if item != nil {
			item.ImageURL = &url
		}
	}

	s.notifier.Notify(notify.LevelSuccess, "Item updated")
	return item, nil
}

func (s *InventoryService) UploadImage(ctx context.Context, id int64, image *apiclient.File) (string, error) {
	url, err := s.api.UploadItemImage(ctx, id, image)
	if err != nil {
		return "", s.failed(err, "Upload failed")
	}
	s.notifier.Notify(notify.LevelSuccess, "Image uploaded")
	return url, nil
}

// DeleteItem removes an item. The server keeps the record for history.
func (s *InventoryService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.api.DeleteItem(ctx, id); err != nil {
		return s.failed(err, "Delete failed")
	}
	s.notifier.Notify(notify.LevelSuccess, "Item deleted")
	s.logger.Info("Item deleted", zap.Int64("item_id", id))
	return nil
}

func (s *InventoryService) AddStock(ctx context.Context, itemID int64, req models.AddStockRequest) (*models.MessageResponse, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.AddStock", attribute.Int64("pos.item_id", itemID))
	defer span.End()

	if itemID == 0 || strings.TrimSpace(req.PackType) == "" {
		return nil, s.rejected(ErrStockSelectionNeeded)
	}
	if req.PacksToAdd < 1 {
		return nil, s.rejected(ErrInvalidStockQuantity)
	}

	resp, err := s.api.AddStock(ctx, itemID, req)
	if err != nil {
		util.RecordError(span, err)
		return nil, s.failed(err, "Add failed")
	}
	s.notifier.Notify(notify.LevelSuccess, "Stock added")
	return resp, nil
}

func (s *InventoryService) UpdateStock(ctx context.Context, stockID int64, req models.UpdateStockRequest) (*models.MessageResponse, error) {
	if strings.TrimSpace(req.PackType) == "" {
		return nil, s.rejected(ErrStockSelectionNeeded)
	}
	if req.PacksToAdd < 1 {
		return nil, s.rejected(ErrInvalidStockQuantity)
	}

	resp, err := s.api.UpdateStock(ctx, stockID, req)
	if err != nil {
		return nil, s.failed(err, "Update failed")
	}
	s.notifier.Notify(notify.LevelSuccess, "Stock record updated")
	return resp, nil
}

func (s *InventoryService) ListStock(ctx context.Context) ([]models.StockRecord, error) {
	records, err := s.api.ListStock(ctx)
	if err != nil {
		return nil, s.failed(err, "Failed to load stock")
	}
	return records, nil
}

func (s *InventoryService) StockHistory(ctx context.Context, itemID int64) (*models.StockHistory, error) {
	history, err := s.api.StockHistory(ctx, itemID)
	if err != nil {
		return nil, s.failed(err, "Failed to load stock history")
	}
	return history, nil
}

func packComplete(packType string, cost, selling decimal.Decimal) bool {
	return strings.TrimSpace(packType) != "" && !cost.IsZero() && !selling.IsZero()
}

func (s *InventoryService) rejected(err error) error {
	s.notifier.Notify(notify.LevelError, sentence(err))
	return err
}

// failed reports a remote failure with the server's message when it sent one.
func (s *InventoryService) failed(err error, fallback string) error {
	s.logger.Warn(fallback, zap.Error(err))
	s.notifier.Notify(notify.LevelError, apiclient.MessageOf(err, fallback))
	return err
}
