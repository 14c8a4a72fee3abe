package postgres

import (
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/replenishment"
	"github.com/your-org/inventory-backend/internal/domain/sale"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

var (
	_ article.Repository         = (*Store)(nil)
	_ supplier.Repository        = (*Store)(nil)
	_ supplierarticle.Repository = (*Store)(nil)
	_ purchaseorder.Repository   = (*Store)(nil)
	_ sale.Repository            = (*Store)(nil)
	_ replenishment.Repository   = (*Store)(nil)
)
