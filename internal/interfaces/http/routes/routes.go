// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-backend/internal/interfaces/http/handlers"
)

// Handlers groups every handler the API exposes
type Handlers struct {
	Articles         *handlers.ArticleHandler
	Suppliers        *handlers.SupplierHandler
	SupplierArticles *handlers.SupplierArticleHandler
	PurchaseOrders   *handlers.PurchaseOrderHandler
	Sales            *handlers.SaleHandler
	Reports          *handlers.ReportHandler
	Replenishment    *handlers.ReplenishmentHandler
}

// SetupArticleRoutes sets up article related routes
func SetupArticleRoutes(rg *gin.RouterGroup, h *handlers.ArticleHandler) {
	articles := rg.Group("/articles")
	{
		articles.POST("", h.CreateArticle)
		articles.GET("", h.GetArticles)
		articles.GET("/below-safety-stock", h.GetBelowSafetyStock)
		articles.GET("/:id", h.GetArticle)
		articles.PUT("/:id", h.UpdateArticle)
		articles.DELETE("/:id", h.DeleteArticle)
		articles.GET("/:id/suppliers", h.GetArticleSuppliers)
		articles.GET("/:id/costs", h.GetArticleCosts)
	}
}

// SetupSupplierRoutes sets up supplier related routes
func SetupSupplierRoutes(rg *gin.RouterGroup, h *handlers.SupplierHandler) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.POST("", h.CreateSupplier)
		suppliers.GET("", h.GetSuppliers)
		suppliers.GET("/:id", h.GetSupplier)
		suppliers.PUT("/:id", h.UpdateSupplier)
		suppliers.DELETE("/:id", h.DeleteSupplier)
		suppliers.GET("/:id/articles", h.GetSupplierArticles)
	}
}

// SetupSupplierArticleRoutes sets up supplier-article association routes
func SetupSupplierArticleRoutes(rg *gin.RouterGroup, h *handlers.SupplierArticleHandler) {
	associations := rg.Group("/supplier-articles")
	{
		associations.POST("", h.CreateSupplierArticle)
		associations.GET("", h.GetSupplierArticles)
		associations.GET("/reorder-candidates", h.GetReorderCandidates)
		associations.GET("/:id", h.GetSupplierArticle)
		associations.PUT("/:id", h.UpdateSupplierArticle)
		associations.DELETE("/:id", h.DeleteSupplierArticle)
	}
}

// SetupPurchaseOrderRoutes sets up purchase order routes
func SetupPurchaseOrderRoutes(rg *gin.RouterGroup, h *handlers.PurchaseOrderHandler) {
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.CreatePurchaseOrder)
		orders.GET("", h.GetPurchaseOrders)
		orders.GET("/:id", h.GetPurchaseOrder)
		orders.PATCH("/:id", h.UpdatePurchaseOrder)
		orders.GET("/:id/pdf", h.DownloadPurchaseOrder)
	}
}

// SetupSaleRoutes sets up sale routes
func SetupSaleRoutes(rg *gin.RouterGroup, h *handlers.SaleHandler) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.CreateSale)
		sales.GET("", h.GetSales)
		sales.GET("/:id", h.GetSale)
	}
}

// SetupReportRoutes sets up spreadsheet export routes
func SetupReportRoutes(rg *gin.RouterGroup, h *handlers.ReportHandler) {
	reports := rg.Group("/reports")
	{
		reports.GET("/reorder-candidates.xlsx", h.ExportReorderCandidates)
		reports.GET("/below-safety-stock.xlsx", h.ExportBelowSafetyStock)
		reports.GET("/articles/:id/costs.xlsx", h.ExportArticleCosts)
	}
}

// SetupReplenishmentRoutes sets up the on-demand replenishment trigger
func SetupReplenishmentRoutes(rg *gin.RouterGroup, h *handlers.ReplenishmentHandler) {
	rg.POST("/replenishment/run", h.RunReplenishment)
}

// SetupRoutes registers every route group under rg. Routes are registered
// even when the binding validators fail to install; the error is returned.
func SetupRoutes(rg *gin.RouterGroup, h *Handlers) error {
	SetupArticleRoutes(rg, h.Articles)
	SetupSupplierRoutes(rg, h.Suppliers)
	SetupSupplierArticleRoutes(rg, h.SupplierArticles)
	SetupPurchaseOrderRoutes(rg, h.PurchaseOrders)
	SetupSaleRoutes(rg, h.Sales)
	SetupReportRoutes(rg, h.Reports)
	SetupReplenishmentRoutes(rg, h.Replenishment)
	return handlers.RegisterValidators()
}
