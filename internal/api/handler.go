package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/auth"
	"pos-agent/internal/cart"
	"pos-agent/internal/notify"
	"pos-agent/internal/service"
	"pos-agent/internal/session"
	"pos-agent/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxUploadBytes = 8 << 20

// Deps are the components the terminal API serves.
type Deps struct {
	Provider      *auth.Provider
	Inventory     *service.InventoryService
	Orders        *service.OrderService
	Reports       *service.ReportService
	Notifications *notify.Center
	Navigator     *session.PendingNavigator
	LoginPath     string
}

// Handler contains HTTP handlers
type Handler struct {
	provider      *auth.Provider
	inventory     *service.InventoryService
	orders        *service.OrderService
	reports       *service.ReportService
	notifications *notify.Center
	navigator     *session.PendingNavigator
	loginPath     string
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(d Deps) *Handler {
	loginPath := d.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handler{
		provider:      d.Provider,
		inventory:     d.Inventory,
		orders:        d.Orders,
		reports:       d.Reports,
		notifications: d.Notifications,
		navigator:     d.Navigator,
		loginPath:     loginPath,
		logger:        util.Named("api"),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/session", h.getSession)
		v1.POST("/session/login", h.login)
		v1.POST("/session/logout", h.logout)
		v1.POST("/session/signup", h.signup)
		v1.GET("/notifications", h.drainNotifications)
	}

	protected := v1.Group("")
	protected.Use(h.requireSession())
	{
		protected.GET("/items", h.listItems)
		protected.POST("/items", h.createItem)
		protected.GET("/items/:id", h.getItem)
		protected.PUT("/items/:id", h.updateItem)
		protected.DELETE("/items/:id", h.deleteItem)
		protected.POST("/items/:id/image", h.uploadItemImage)
		protected.GET("/items/:id/stock", h.availableStock)

		protected.GET("/stock", h.listStock)
		protected.POST("/stock/items/:id", h.addStock)
		protected.PUT("/stock/:id", h.updateStock)
		protected.GET("/stock/items/:id/history", h.stockHistory)

		protected.GET("/cart", h.getCart)
		protected.POST("/cart/lines", h.addCartLine)
		protected.DELETE("/cart/lines/:index", h.removeCartLine)
		protected.PUT("/cart/draft", h.updateDraft)
		protected.POST("/cart/submit", h.submitOrder)
		protected.DELETE("/cart", h.resetCart)

		protected.GET("/transactions", h.listTransactions)
		protected.GET("/transactions/export", h.exportTransactions)
		protected.POST("/transactions/receipt", h.reprintReceipt)
		protected.GET("/transactions/income-by-payment-method", h.incomeByPaymentMethod)
		protected.GET("/dashboard/top-items", h.topItems)
		protected.GET("/dashboard/bottom-items", h.bottomItems)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the session has been initialized
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.provider.Loading() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "initializing",
			"time":   time.Now().Unix(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) drainNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.notifications.Drain()})
}

// requireSession rejects requests without an authenticated session, and any
// request made while a forced login redirect is pending.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if pending := h.navigator.Pending(); pending != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Session expired",
				"redirect": pending,
			})
			return
		}
		if !h.provider.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Not authenticated",
				"redirect": h.loginPath,
			})
			return
		}
		c.Next()
	}
}

var validationErrors = []error{
	cart.ErrSelectionIncomplete,
	cart.ErrInvalidQuantity,
	cart.ErrDuplicateLine,
	cart.ErrPackNotFound,
	cart.ErrLineIndex,
	cart.ErrCustomerNameRequired,
	cart.ErrEmptyCart,
	cart.ErrInvalidPaymentMethod,
	cart.ErrInvalidDiscount,
	service.ErrItemNameRequired,
	service.ErrIncompletePack,
	service.ErrStockSelectionNeeded,
	service.ErrInvalidStockQuantity,
	service.ErrNothingToExport,
}

func isValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// respondError maps a service error onto a response. Remote API statuses pass
// through; transport failures become 502.
func respondError(c *gin.Context, err error, fallback string) {
	if isValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := apiclient.StatusOf(err)
	if status == 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"error":   apiclient.MessageOf(err, fallback),
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

// formFile reads an optional multipart file; a missing field yields nil.
func formFile(c *gin.Context, field string) (*apiclient.File, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, err
	}
	return &apiclient.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
