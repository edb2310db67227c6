package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pos-agent/internal/models"
)

func (c *Client) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := c.Do(ctx, &Request{Method: http.MethodGet, Path: "/items"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := c.Do(ctx, &Request{Method: http.MethodGet, Path: fmt.Sprintf("/items/%d", id)}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem sends the item as an itemData JSON part, with an optional image part.
func (c *Client) CreateItem(ctx context.Context, body models.ItemCreateRequest, image *File) (*models.Item, error) {
	itemData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}
	req, err := multipartRequest(http.MethodPost, "/items",
		[]formField{{"itemData", string(itemData)}},
		map[string]*File{"image": image})
	if err != nil {
		return nil, err
	}
	var item models.Item
	if err := c.Do(ctx, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateItem(ctx context.Context, id int64, body models.UpdateItemRequest) (*models.Item, error) {
	req, err := JSONRequest(http.MethodPut, fmt.Sprintf("/items/%d", id), body)
	if err != nil {
		return nil, err
	}
	var item models.Item
	if err := c.Do(ctx, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: fmt.Sprintf("/items/%d", id)}, nil)
}

// UploadItemImage replaces the item image and returns its new URL.
func (c *Client) UploadItemImage(ctx context.Context, id int64, image *File) (string, error) {
	req, err := multipartRequest(http.MethodPost, fmt.Sprintf("/items/%d/image", id), nil,
		map[string]*File{"image": image})
	if err != nil {
		return "", err
	}
	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}
