// internal/interfaces/http/handlers/purchase_order.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"github.com/your-org/inventory-backend/internal/pkg/pdf"
)

// PurchaseOrderRenderer turns an order into a printable document
type PurchaseOrderRenderer interface {
	GeneratePurchaseOrder(o *purchaseorder.PurchaseOrder) (*bytes.Buffer, error)
}

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	orderService *purchaseorder.Service
	renderer     PurchaseOrderRenderer
	logger       logrus.FieldLogger
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(orderService *purchaseorder.Service, renderer PurchaseOrderRenderer, logger logrus.FieldLogger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService: orderService,
		renderer:     renderer,
		logger:       logger,
	}
}

// CreatePurchaseOrder handles POST /purchase-orders
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req purchaseorder.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order created successfully",
		"data":    created,
	})
}

// GetPurchaseOrders handles GET /purchase-orders
func (h *PurchaseOrderHandler) GetPurchaseOrders(c *gin.Context) {
	filter, err := orderFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	orders, err := h.orderService.GetOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase orders retrieved successfully",
		"data":    orders,
	})
}

// GetPurchaseOrder handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "purchase order")
	if !ok {
		return
	}

	found, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order retrieved successfully",
		"data":    found,
	})
}

// UpdatePurchaseOrder handles PATCH /purchase-orders/:id
func (h *PurchaseOrderHandler) UpdatePurchaseOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "purchase order")
	if !ok {
		return
	}

	var req purchaseorder.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.orderService.UpdateOrder(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order updated successfully",
		"data":    updated,
	})
}

// DownloadPurchaseOrder handles GET /purchase-orders/:id/pdf
func (h *PurchaseOrderHandler) DownloadPurchaseOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "purchase order")
	if !ok {
		return
	}

	found, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	buf, err := h.renderer.GeneratePurchaseOrder(found)
	if err != nil {
		respondError(c, h.logger, apperror.Internal("failed to generate purchase order document", err))
		return
	}

	filename := fmt.Sprintf("%s.pdf", pdf.DocumentNumber(found))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func orderFilter(c *gin.Context) (purchaseorder.Filter, error) {
	var filter purchaseorder.Filter
	var err error

	if raw := c.Query("state"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			state, err := purchaseorder.ParseState(strings.TrimSpace(name))
			if err != nil {
				return filter, apperror.Validation("%v", err)
			}
			filter.States = append(filter.States, state)
		}
	}
	if filter.ArticleID, err = queryID(c, "article_id"); err != nil {
		return filter, err
	}
	if filter.SupplierID, err = queryID(c, "supplier_id"); err != nil {
		return filter, err
	}
	switch source := purchaseorder.Source(c.Query("source")); source {
	case "":
	case purchaseorder.SourceManual, purchaseorder.SourceReorderPoint, purchaseorder.SourcePeriodicReview:
		filter.Source = source
	default:
		return filter, apperror.Validation("unknown order source %q", source)
	}
	return filter, nil
}
