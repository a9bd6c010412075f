package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"order-service/internal/domain"
	"order-service/internal/infra"
	"order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const listCacheTTL = 10 * time.Second

type Handler struct {
	service services.OrderServiceInterface
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(s services.OrderServiceInterface, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{service: s, rdb: rdb, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, auth infra.AuthClientInterface) {
	g := r.Group("")
	g.Use(AuthRequired(auth))
	g.GET("/orders", h.ListOrders)
	g.GET("/order/:id", h.GetOrder)
	g.POST("/order", h.CreateOrder)
	g.PUT("/order/:id", h.UpdateOrder)
	g.DELETE("/order/:id", h.DeleteOrder)
}

func (h *Handler) ListOrders(c *gin.Context) {
	ident, ok := IdentityFrom(c)
	if !ok {
		abortAuth(c, "invalid_token", "Invalid Token")
		return
	}

	ctx := c.Request.Context()
	cacheKey := listCacheKey(ident.Username)

	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var orders []domain.Order
			if json.Unmarshal([]byte(b), &orders) == nil {
				c.JSON(http.StatusOK, gin.H{"data": orders})
				return
			}
		}
	}

	orders, err := h.service.ListOrders(ctx, ident.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.rdb != nil {
		if data, err := json.Marshal(orders); err == nil {
			h.rdb.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, summary, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderWithSummary{Order: *order, Summary: summary}})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	ident, ok := IdentityFrom(c)
	if !ok {
		abortAuth(c, "invalid_token", "Invalid Token")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
		return
	}

	// Recipient details come from the authenticated identity; the body only
	// fills the gaps when introspection returned a partial profile.
	if ident.Nama == "" {
		ident.Nama = req.Nama
	}
	if ident.Alamat == "" {
		ident.Alamat = req.Alamat
	}

	ctx := c.Request.Context()
	order, summary, err := h.service.CreateOrder(ctx, services.CreateOrderParams{
		Identity:        ident,
		Token:           TokenFrom(c),
		DeliveryService: req.DeliveryService,
		Items:           toDomainItems(req.OrderItems),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateListCache(c, ident.Username)

	c.JSON(http.StatusCreated, gin.H{"data": orderWithSummary{Order: *order, Summary: summary}})
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
		return
	}

	order, err := h.service.UpdateOrderItems(c.Request.Context(), c.Param("id"), toDomainItems(req.OrderItems))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateListCache(c, order.Username)

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	order, err := h.service.DeleteOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateListCache(c, order.Username)

	c.JSON(http.StatusOK, gin.H{
		"message": "order Deleted",
		"item":    order,
	})
}

func (h *Handler) invalidateListCache(c *gin.Context, username string) {
	if h.rdb == nil {
		return
	}
	h.rdb.Del(c.Request.Context(), listCacheKey(username))
}

func listCacheKey(username string) string {
	return "orders:user:" + username
}

// writeError maps service and integration failures onto the API's error
// envelope. Not-found, declined payment, and unreachable collaborators are
// distinguished instead of collapsing into one 400.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "order_not_found",
			"error_description": "Order Tidak Ditemukan",
		})
	case errors.Is(err, services.ErrEmptyOrderItems), errors.Is(err, services.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
	case errors.Is(err, infra.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":             "payment_failed",
			"error_description": "Tidak cukup saldo",
		})
	case errors.Is(err, infra.ErrRemoteUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":             "service_unavailable",
			"error_description": "layanan sedang tidak tersedia",
		})
	default:
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "internal_error",
			"error_description": "terjadi kesalahan pada server",
		})
	}
}
