package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/checkout"
	"cart-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	store    *cart.Store
	catalog  *catalog.Catalog
	checkout *checkout.Service
}

// NewHandler creates a new HTTP handler. store is injected into every request
// context; handlers reach it only through that context.
func NewHandler(store *cart.Store, products *catalog.Catalog, checkoutService *checkout.Service) *Handler {
	return &Handler{
		store:    store,
		catalog:  products,
		checkout: checkoutService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(storeMiddleware(h.store))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.GET("/cart", h.getCart)
		v1.DELETE("/cart", h.clearCart)
		v1.POST("/cart/items", h.addItem)
		v1.PATCH("/cart/items/:id", h.updateQuantity)
		v1.DELETE("/cart/items/:id", h.removeItem)

		v1.GET("/checkout", h.getCheckoutSummary)
		v1.POST("/checkout", h.placeOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the cart has been rehydrated
func (h *Handler) readinessCheck(c *gin.Context) {
	store := cart.MustFromContext(c.Request.Context())
	if !store.Hydrated() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "rehydrating",
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.catalog.List()})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalog.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) getCart(c *gin.Context) {
	store := cart.MustFromContext(c.Request.Context())
	c.JSON(http.StatusOK, cartResponse(store.Snapshot()))
}

// AddItemRequest selects a product variant to put in the cart
type AddItemRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

func (h *Handler) addItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}

	item, err := catalog.NewLineItem(product, req.Size, req.Color, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid product variant",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	store := cart.MustFromContext(ctx)
	if err := store.AddItem(ctx, item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to add item",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, cartResponse(store.Snapshot()))
}

// UpdateQuantityRequest sets the absolute quantity of a line item
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Handler) updateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	store := cart.MustFromContext(ctx)
	_ = store.UpdateQuantity(ctx, c.Param("id"), *req.Quantity)

	c.JSON(http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *Handler) removeItem(c *gin.Context) {
	ctx := c.Request.Context()
	store := cart.MustFromContext(ctx)
	_ = store.RemoveItem(ctx, c.Param("id"))

	c.JSON(http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *Handler) clearCart(c *gin.Context) {
	ctx := c.Request.Context()
	store := cart.MustFromContext(ctx)
	_ = store.ClearCart(ctx)

	c.JSON(http.StatusOK, cartResponse(store.Snapshot()))
}

func (h *Handler) getCheckoutSummary(c *gin.Context) {
	store := cart.MustFromContext(c.Request.Context())
	snap := store.Snapshot()

	resp := cartResponse(snap)
	resp["summary"] = summaryResponse(checkout.Summarize(snap))
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) placeOrder(c *gin.Context) {
	ctx := c.Request.Context()
	store := cart.MustFromContext(ctx)

	conf, err := h.checkout.PlaceOrder(ctx, store)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Checkout already in progress"})
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Checkout cancelled"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to place order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderRef": conf.OrderRef,
		"items":    conf.Items,
		"summary":  summaryResponse(conf.Summary),
		"placedAt": conf.PlacedAt,
	})
}

func cartResponse(snap cart.Snapshot) gin.H {
	return gin.H{
		"items": snap.Items,
		"total": snap.Total.Round(2).InexactFloat64(),
		"count": snap.Count,
	}
}

func summaryResponse(s checkout.Summary) gin.H {
	return gin.H{
		"subtotal":     s.Subtotal.Round(2).InexactFloat64(),
		"shipping":     s.Shipping.InexactFloat64(),
		"tax":          s.Tax.InexactFloat64(),
		"total":        s.Total.Round(2).InexactFloat64(),
		"freeShipping": s.FreeShipping(),
	}
}

// storeMiddleware makes the cart store available to handlers
func storeMiddleware(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(cart.WithStore(c.Request.Context(), store))
		c.Next()
	}
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
