package api

import (
	"bytes"
	"net/http"
	"time"

	"pos-agent/internal/models"
	"pos-agent/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listTransactions(c *gin.Context) {
	var filter models.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid filter", err)
		return
	}

	page, err := h.reports.Transactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to load transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) exportTransactions(c *gin.Context) {
	var filter models.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid filter", err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.ExportCSV(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err, "Export failed")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+service.ExportFilename(time.Now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) reprintReceipt(c *gin.Context) {
	var tx models.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		badRequest(c, "Invalid transaction", err)
		return
	}
	if tx.TransactionReference == "" {
		badRequest(c, "transactionReference is required", nil)
		return
	}

	path, err := h.reports.Reprint(c.Request.Context(), &tx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to generate receipt. Please try again.",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receiptPath": path})
}

func (h *Handler) incomeByPaymentMethod(c *gin.Context) {
	income, err := h.reports.IncomeByPaymentMethod(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err, "Failed to load income")
		return
	}
	c.JSON(http.StatusOK, income)
}

func (h *Handler) topItems(c *gin.Context) {
	items, err := h.reports.TopItems(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err, "Failed to load top items")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) bottomItems(c *gin.Context) {
	items, err := h.reports.BottomItems(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err, "Failed to load bottom items")
		return
	}
	c.JSON(http.StatusOK, items)
}
