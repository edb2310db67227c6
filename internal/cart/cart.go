package cart

import (
	"context"
	"errors"
	"fmt"

	"pos-agent/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrSelectionIncomplete = errors.New("select an item and a pack type")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrDuplicateLine       = errors.New("this item and pack type is already in the cart")
	ErrPackNotFound        = errors.New("pack type not found for item")
	ErrLineIndex           = errors.New("no cart line at that position")
)

// PriceSource returns the authoritative current state of an item.
type PriceSource interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
}

// CartItem is one priced line. LineTotal is always Quantity x UnitPrice.
type CartItem struct {
	ItemID    int64           `json:"itemId"`
	ItemName  string          `json:"itemName"`
	PackType  string          `json:"packType"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

func newCartItem(item *models.Item, pack models.Pack, qty int) CartItem {
	return CartItem{
		ItemID:    item.ID,
		ItemName:  item.Name,
		PackType:  pack.Type,
		Quantity:  qty,
		UnitPrice: pack.SellingPrice,
		LineTotal: pack.SellingPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// Cart holds at most one line per (item, pack type). It is not safe for
// concurrent use; its owner serializes access.
type Cart struct {
	lines []CartItem
}

func New() *Cart {
	return &Cart{}
}

// AddLine prices a selection against a fresh fetch of the item and appends
// it. Nothing is fetched when the selection is rejected locally.
func (c *Cart) AddLine(ctx context.Context, prices PriceSource, itemID int64, packType string, qty int) (CartItem, error) {
	if itemID == 0 || packType == "" {
		return CartItem{}, ErrSelectionIncomplete
	}
	if qty < 1 {
		return CartItem{}, ErrInvalidQuantity
	}
	if c.Contains(itemID, packType) {
		return CartItem{}, ErrDuplicateLine
	}

	item, err := prices.GetItem(ctx, itemID)
	if err != nil {
		return CartItem{}, fmt.Errorf("failed to fetch price for item %d: %w", itemID, err)
	}
	pack, ok := item.PackByType(packType)
	if !ok {
		return CartItem{}, fmt.Errorf("%w: %s / %s", ErrPackNotFound, item.Name, packType)
	}

	// The fetch may have yielded to another add of the same selection.
	if c.Contains(itemID, packType) {
		return CartItem{}, ErrDuplicateLine
	}

	line := newCartItem(item, pack, qty)
	c.lines = append(c.lines, line)
	return line, nil
}

func (c *Cart) Contains(itemID int64, packType string) bool {
	for _, l := range c.lines {
		if l.ItemID == itemID && l.PackType == packType {
			return true
		}
	}
	return false
}

// RemoveLine drops the line at index.
func (c *Cart) RemoveLine(index int) (CartItem, error) {
	if index < 0 || index >= len(c.lines) {
		return CartItem{}, ErrLineIndex
	}
	removed := c.lines[index]
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return removed, nil
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartItem {
	return append([]CartItem(nil), c.lines...)
}

func (c *Cart) Len() int {
	return len(c.lines)
}
