package apiclient

import (
	"context"
	"net/http"

	"pos-agent/internal/models"
)

// TopItems returns the best sellers between start and end (ISO 8601).
func (c *Client) TopItems(ctx context.Context, start, end string) ([]models.ItemSales, error) {
	return c.itemSales(ctx, "/dashboard/top-items", start, end)
}

// BottomItems returns the worst sellers between start and end (ISO 8601).
func (c *Client) BottomItems(ctx context.Context, start, end string) ([]models.ItemSales, error) {
	return c.itemSales(ctx, "/dashboard/bottom-items", start, end)
}

func (c *Client) itemSales(ctx context.Context, path, start, end string) ([]models.ItemSales, error) {
	var sales []models.ItemSales
	if err := c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: rangeQuery(start, end)}, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}
