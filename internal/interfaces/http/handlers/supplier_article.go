// internal/interfaces/http/handlers/supplier_article.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
)

// SupplierArticleHandler handles supplier-article association endpoints
type SupplierArticleHandler struct {
	associationService *supplierarticle.Service
	logger             logrus.FieldLogger
}

// NewSupplierArticleHandler creates a new supplier-article handler
func NewSupplierArticleHandler(associationService *supplierarticle.Service, logger logrus.FieldLogger) *SupplierArticleHandler {
	return &SupplierArticleHandler{
		associationService: associationService,
		logger:             logger,
	}
}

// CreateSupplierArticle handles POST /supplier-articles
func (h *SupplierArticleHandler) CreateSupplierArticle(c *gin.Context) {
	var req supplierarticle.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.associationService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Supplier article created successfully"
	if result.DefaultForced {
		message = "Supplier article created successfully and set as default because the article had no default supplier"
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"data":    result,
	})
}

// GetSupplierArticles handles GET /supplier-articles
func (h *SupplierArticleHandler) GetSupplierArticles(c *gin.Context) {
	filter, err := associationFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.associationService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier articles retrieved successfully",
		"data":    list,
	})
}

// GetSupplierArticle handles GET /supplier-articles/:id
func (h *SupplierArticleHandler) GetSupplierArticle(c *gin.Context) {
	id, ok := parseID(c, "id", "supplier article")
	if !ok {
		return
	}

	found, err := h.associationService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier article retrieved successfully",
		"data":    found,
	})
}

// UpdateSupplierArticle handles PUT /supplier-articles/:id
func (h *SupplierArticleHandler) UpdateSupplierArticle(c *gin.Context) {
	id, ok := parseID(c, "id", "supplier article")
	if !ok {
		return
	}

	var req supplierarticle.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.associationService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier article updated successfully",
		"data":    updated,
	})
}

// DeleteSupplierArticle handles DELETE /supplier-articles/:id
func (h *SupplierArticleHandler) DeleteSupplierArticle(c *gin.Context) {
	id, ok := parseID(c, "id", "supplier article")
	if !ok {
		return
	}

	if err := h.associationService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier article deleted successfully",
	})
}

// GetReorderCandidates handles GET /supplier-articles/reorder-candidates
func (h *SupplierArticleHandler) GetReorderCandidates(c *gin.Context) {
	candidates, err := h.associationService.ReorderCandidates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder candidates retrieved successfully",
		"data":    candidates,
	})
}

func associationFilter(c *gin.Context) (supplierarticle.Filter, error) {
	var filter supplierarticle.Filter
	var err error

	if filter.ArticleID, err = queryID(c, "article_id"); err != nil {
		return filter, err
	}
	if filter.SupplierID, err = queryID(c, "supplier_id"); err != nil {
		return filter, err
	}
	if raw := c.Query("policy"); raw != "" {
		filter.Policy = supplierarticle.Policy(raw)
		if !filter.Policy.IsValid() {
			return filter, apperror.Validation("unknown policy %q", raw)
		}
	}
	if raw := c.Query("default"); raw != "" {
		if filter.DefaultOnly, err = strconv.ParseBool(raw); err != nil {
			return filter, apperror.Validation("default must be true or false")
		}
	}
	return filter, nil
}
