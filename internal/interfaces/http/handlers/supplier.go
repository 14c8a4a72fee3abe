// internal/interfaces/http/handlers/supplier.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	supplierService    *supplier.Service
	associationService *supplierarticle.Service
	logger             logrus.FieldLogger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(supplierService *supplier.Service, associationService *supplierarticle.Service, logger logrus.FieldLogger) *SupplierHandler {
	return &SupplierHandler{
		supplierService:    supplierService,
		associationService: associationService,
		logger:             logger,
	}
}

// CreateSupplier handles POST /suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req supplier.CreateSupplierRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.supplierService.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Supplier created successfully",
		"data":    created,
	})
}

// GetSuppliers handles GET /suppliers
func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.supplierService.GetSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Suppliers retrieved successfully",
		"data":    suppliers,
	})
}

// GetSupplier handles GET /suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, ok := parseID(c, "id", "supplier")
	if !ok {
		return
	}

	found, err := h.supplierService.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier retrieved successfully",
		"data":    found,
	})
}

// UpdateSupplier handles PUT /suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseID(c, "id", "supplier")
	if !ok {
		return
	}

	var req supplier.UpdateSupplierRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.supplierService.UpdateSupplier(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier updated successfully",
		"data":    updated,
	})
}

// DeleteSupplier handles DELETE /suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c, "id", "supplier")
	if !ok {
		return
	}

	if err := h.supplierService.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier deleted successfully",
	})
}

// GetSupplierArticles handles GET /suppliers/:id/articles
func (h *SupplierHandler) GetSupplierArticles(c *gin.Context) {
	id, ok := parseID(c, "id", "supplier")
	if !ok {
		return
	}

	if _, err := h.supplierService.GetSupplier(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.associationService.List(c.Request.Context(), supplierarticle.Filter{SupplierID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier articles retrieved successfully",
		"data":    list,
	})
}
