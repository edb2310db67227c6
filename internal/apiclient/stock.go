package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"pos-agent/internal/models"
)

// AddStock records a stock receipt for an item.
func (c *Client) AddStock(ctx context.Context, itemID int64, body models.AddStockRequest) (*models.MessageResponse, error) {
	req, err := JSONRequest(http.MethodPost, fmt.Sprintf("/stock/items/%d", itemID), body)
	if err != nil {
		return nil, err
	}
	var resp models.MessageResponse
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateStock(ctx context.Context, stockID int64, body models.UpdateStockRequest) (*models.MessageResponse, error) {
	req, err := JSONRequest(http.MethodPut, fmt.Sprintf("/stock/%d", stockID), body)
	if err != nil {
		return nil, err
	}
	var resp models.MessageResponse
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListStock(ctx context.Context) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := c.Do(ctx, &Request{Method: http.MethodGet, Path: "/stock"}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) StockHistory(ctx context.Context, itemID int64) (*models.StockHistory, error) {
	var history models.StockHistory
	path := fmt.Sprintf("/stock/items/%d/history", itemID)
	if err := c.Do(ctx, &Request{Method: http.MethodGet, Path: path}, &history); err != nil {
		return nil, err
	}
	return &history, nil
}
