package api

import (
	"net/http"
	"strconv"

	"pos-agent/internal/cart"

	"github.com/gin-gonic/gin"
)

type addLineRequest struct {
	ItemID   int64  `json:"itemId" binding:"required"`
	PackType string `json:"packType" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.View())
}

func (h *Handler) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	view, err := h.orders.AddLine(c.Request.Context(), req.ItemID, req.PackType, req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to add item")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) removeCartLine(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "Invalid index", err)
		return
	}

	view, err := h.orders.RemoveLine(index)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) updateDraft(c *gin.Context) {
	var draft cart.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	view, err := h.orders.UpdateDraft(draft)
	if err != nil {
		respondError(c, err, "Invalid order details")
		return
	}
	c.JSON(http.StatusOK, view)
}

// submitOrder answers 201 whenever the order was committed, including when
// only the receipt failed.
func (h *Handler) submitOrder(c *gin.Context) {
	result, err := h.orders.Submit(c.Request.Context())
	if err != nil {
		respondError(c, err, "Order placement failed")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) resetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.Reset())
}
