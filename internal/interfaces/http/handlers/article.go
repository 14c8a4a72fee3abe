// internal/interfaces/http/handlers/article.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	articleService     *article.Service
	associationService *supplierarticle.Service
	logger             logrus.FieldLogger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService *article.Service, associationService *supplierarticle.Service, logger logrus.FieldLogger) *ArticleHandler {
	return &ArticleHandler{
		articleService:     articleService,
		associationService: associationService,
		logger:             logger,
	}
}

// CreateArticle handles POST /articles
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req article.CreateArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.articleService.CreateArticle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Article created successfully",
		"data":    created,
	})
}

// GetArticles handles GET /articles
func (h *ArticleHandler) GetArticles(c *gin.Context) {
	articles, err := h.articleService.GetArticles(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Articles retrieved successfully",
		"data":    articles,
	})
}

// GetArticle handles GET /articles/:id
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := parseID(c, "id", "article")
	if !ok {
		return
	}

	found, err := h.articleService.GetArticle(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article retrieved successfully",
		"data":    found,
	})
}

// UpdateArticle handles PUT /articles/:id
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseID(c, "id", "article")
	if !ok {
		return
	}

	var req article.UpdateArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.articleService.UpdateArticle(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article updated successfully",
		"data":    updated,
	})
}

// DeleteArticle handles DELETE /articles/:id
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, ok := parseID(c, "id", "article")
	if !ok {
		return
	}

	if err := h.articleService.DeleteArticle(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article deleted successfully",
	})
}

// GetArticleSuppliers handles GET /articles/:id/suppliers
func (h *ArticleHandler) GetArticleSuppliers(c *gin.Context) {
	id, ok := parseID(c, "id", "article")
	if !ok {
		return
	}

	if _, err := h.articleService.GetArticle(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.associationService.List(c.Request.Context(), supplierarticle.Filter{ArticleID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article suppliers retrieved successfully",
		"data":    list,
	})
}

// GetArticleCosts handles GET /articles/:id/costs
func (h *ArticleHandler) GetArticleCosts(c *gin.Context) {
	id, ok := parseID(c, "id", "article")
	if !ok {
		return
	}

	costs, err := h.associationService.CostReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory costs calculated successfully",
		"data":    costs,
	})
}

// GetBelowSafetyStock handles GET /articles/below-safety-stock
func (h *ArticleHandler) GetBelowSafetyStock(c *gin.Context) {
	alerts, err := h.associationService.BelowSafetyStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Articles below safety stock retrieved successfully",
		"data":    alerts,
	})
}
