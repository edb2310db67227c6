package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"pos-agent/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.inventory.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load items")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.inventory.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Load failed")
		return
	}
	c.JSON(http.StatusOK, item)
}

// availableStock backs the quantity hint next to the order form's pack picker.
func (h *Handler) availableStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qty, err := h.inventory.AvailableStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Load failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"itemId": id, "totalQuantity": qty})
}

// createItem accepts JSON, or multipart with an itemData JSON field and an
// optional image file.
func (h *Handler) createItem(c *gin.Context) {
	var req models.ItemCreateRequest

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := json.Unmarshal([]byte(c.PostForm("itemData")), &req); err != nil {
			badRequest(c, "Invalid itemData", err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	image, err := formFile(c, "image")
	if err != nil {
		badRequest(c, "Invalid image", err)
		return
	}

	item, err := h.inventory.CreateItem(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, err, "Save failed")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	item, err := h.inventory.UpdateItem(c.Request.Context(), id, req, nil)
	if err != nil {
		respondError(c, err, "Update failed")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.inventory.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err, "Delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadItemImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	image, err := formFile(c, "image")
	if err != nil || image == nil {
		badRequest(c, "Image file required", err)
		return
	}

	url, err := h.inventory.UploadImage(c.Request.Context(), id, image)
	if err != nil {
		respondError(c, err, "Upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

func (h *Handler) listStock(c *gin.Context) {
	records, err := h.inventory.ListStock(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load stock")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) addStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp, err := h.inventory.AddStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Add failed")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) updateStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp, err := h.inventory.UpdateStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Update failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) stockHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	history, err := h.inventory.StockHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load stock history")
		return
	}
	c.JSON(http.StatusOK, history)
}
