// Package memory is an in-process implementation of the domain repositories.
// Transactions work on a snapshot that replaces the committed data only when
// the callback succeeds, and they run one at a time.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/replenishment"
	"github.com/your-org/inventory-backend/internal/domain/sale"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a guarded decrement would go negative
var ErrInsufficientStock = errors.New("insufficient stock")

var (
	_ article.Repository         = (*Store)(nil)
	_ supplier.Repository        = (*Store)(nil)
	_ supplierarticle.Repository = (*Store)(nil)
	_ purchaseorder.Repository   = (*Store)(nil)
	_ sale.Repository            = (*Store)(nil)
	_ replenishment.Repository   = (*Store)(nil)
)

type txKey struct{}

type dataset struct {
	seq          map[string]uint
	articles     map[uint]article.Article
	suppliers    map[uint]supplier.Supplier
	associations map[uint]supplierarticle.SupplierArticle
	models       map[uint]supplierarticle.InventoryModel
	orders       map[uint]purchaseorder.PurchaseOrder
	sales        map[uint]sale.Sale
}

func newDataset() *dataset {
	return &dataset{
		seq:          make(map[string]uint),
		articles:     make(map[uint]article.Article),
		suppliers:    make(map[uint]supplier.Supplier),
		associations: make(map[uint]supplierarticle.SupplierArticle),
		models:       make(map[uint]supplierarticle.InventoryModel),
		orders:       make(map[uint]purchaseorder.PurchaseOrder),
		sales:        make(map[uint]sale.Sale),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.articles {
		c.articles[k] = v
	}
	for k, v := range d.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range d.associations {
		c.associations[k] = v
	}
	for k, v := range d.models {
		c.models[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.sales {
		v.Lines = append([]sale.SaleLine(nil), v.Lines...)
		c.sales[k] = v
	}
	return c
}

func (d *dataset) next(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

// Store keeps every table in maps guarded by a single mutex
type Store struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		data: newDataset(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// do runs fn against the transaction snapshot in ctx, or against the
// committed data under the store lock
func (s *Store) do(ctx context.Context, fn func(d *dataset) error) error {
	if d, ok := ctx.Value(txKey{}).(*dataset); ok {
		return fn(d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// WithinTransaction runs fn on a snapshot and commits it when fn succeeds.
// Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*dataset); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, snapshot)); err != nil {
		return err
	}
	s.data = snapshot
	return nil
}

func softDeleted(at gorm.DeletedAt) bool {
	return at.Valid
}

// ARTICLES

func (s *Store) CreateArticle(ctx context.Context, a *article.Article) error {
	return s.do(ctx, func(d *dataset) error {
		now := s.now()
		a.ID = d.next("articles")
		a.CreatedAt, a.UpdatedAt = now, now
		d.articles[a.ID] = *a
		return nil
	})
}

func (s *Store) ListArticles(ctx context.Context) ([]article.Article, error) {
	var list []article.Article
	err := s.do(ctx, func(d *dataset) error {
		for _, a := range d.articles {
			if !softDeleted(a.DeletedAt) {
				list = append(list, a)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}

func (s *Store) GetArticle(ctx context.Context, id uint) (*article.Article, error) {
	var found *article.Article
	err := s.do(ctx, func(d *dataset) error {
		a, ok := d.articles[id]
		if !ok || softDeleted(a.DeletedAt) {
			return gorm.ErrRecordNotFound
		}
		found = &a
		return nil
	})
	return found, err
}

// LockArticle is GetArticle; transactions are already serialized
func (s *Store) LockArticle(ctx context.Context, id uint) (*article.Article, error) {
	return s.GetArticle(ctx, id)
}

func (s *Store) UpdateArticle(ctx context.Context, a *article.Article) error {
	return s.do(ctx, func(d *dataset) error {
		stored, ok := d.articles[a.ID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		stored.Description = a.Description
		stored.AnnualDemand = a.AnnualDemand
		stored.DemandStdDev = a.DemandStdDev
		stored.HoldingCost = a.HoldingCost
		stored.Stock = a.Stock
		stored.SalePrice = a.SalePrice
		stored.UpdatedAt = s.now()
		d.articles[a.ID] = stored
		return nil
	})
}

func (s *Store) SoftDeleteArticle(ctx context.Context, id uint) error {
	return s.do(ctx, func(d *dataset) error {
		a, ok := d.articles[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		a.DeletedAt = gorm.DeletedAt{Time: s.now(), Valid: true}
		d.articles[id] = a
		return nil
	})
}

func (s *Store) DecrementStock(ctx context.Context, articleID uint, quantity int) error {
	return s.do(ctx, func(d *dataset) error {
		a, ok := d.articles[articleID]
		if !ok || softDeleted(a.DeletedAt) {
			return gorm.ErrRecordNotFound
		}
		if a.Stock < quantity {
			return ErrInsufficientStock
		}
		a.Stock -= quantity
		d.articles[articleID] = a
		return nil
	})
}

func (s *Store) IncrementStock(ctx context.Context, articleID uint, quantity int) error {
	return s.do(ctx, func(d *dataset) error {
		a, ok := d.articles[articleID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		a.Stock += quantity
		d.articles[articleID] = a
		return nil
	})
}

// SUPPLIERS

func (s *Store) CreateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	return s.do(ctx, func(d *dataset) error {
		for _, existing := range d.suppliers {
			if strings.EqualFold(existing.Email, sup.Email) {
				return gorm.ErrDuplicatedKey
			}
		}
		now := s.now()
		sup.ID = d.next("suppliers")
		sup.CreatedAt, sup.UpdatedAt = now, now
		d.suppliers[sup.ID] = *sup
		return nil
	})
}

func (s *Store) ListSuppliers(ctx context.Context) ([]supplier.Supplier, error) {
	var list []supplier.Supplier
	err := s.do(ctx, func(d *dataset) error {
		for _, sup := range d.suppliers {
			if !softDeleted(sup.DeletedAt) {
				list = append(list, sup)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}

func (s *Store) GetSupplier(ctx context.Context, id uint) (*supplier.Supplier, error) {
	var found *supplier.Supplier
	err := s.do(ctx, func(d *dataset) error {
		sup, ok := d.suppliers[id]
		if !ok || softDeleted(sup.DeletedAt) {
			return gorm.ErrRecordNotFound
		}
		found = &sup
		return nil
	})
	return found, err
}

func (s *Store) UpdateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	return s.do(ctx, func(d *dataset) error {
		stored, ok := d.suppliers[sup.ID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		stored.FirstName = sup.FirstName
		stored.LastName = sup.LastName
		stored.Email = sup.Email
		stored.Phone = sup.Phone
		stored.UpdatedAt = s.now()
		d.suppliers[sup.ID] = stored
		return nil
	})
}

func (s *Store) SoftDeleteSupplier(ctx context.Context, id uint) error {
	return s.do(ctx, func(d *dataset) error {
		sup, ok := d.suppliers[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		sup.DeletedAt = gorm.DeletedAt{Time: s.now(), Valid: true}
		d.suppliers[id] = sup
		return nil
	})
}

func (s *Store) SupplierEmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	taken := false
	err := s.do(ctx, func(d *dataset) error {
		for id, sup := range d.suppliers {
			if id != excludeID && strings.EqualFold(sup.Email, email) {
				taken = true
			}
		}
		return nil
	})
	return taken, err
}

func (s *Store) CountDefaultAssociationsForSupplier(ctx context.Context, supplierID uint) (int64, error) {
	var count int64
	err := s.do(ctx, func(d *dataset) error {
		for _, sa := range d.associations {
			if sa.SupplierID == supplierID && sa.IsDefault {
				count++
			}
		}
		return nil
	})
	return count, err
}

// SUPPLIER ARTICLES

// hydrate attaches relations the way the gorm preloads do: soft-deleted
// articles and suppliers come back as nil
func (d *dataset) hydrate(sa supplierarticle.SupplierArticle) supplierarticle.SupplierArticle {
	sa.Article, sa.Supplier, sa.InventoryModel = nil, nil, nil
	if a, ok := d.articles[sa.ArticleID]; ok && !softDeleted(a.DeletedAt) {
		sa.Article = &a
	}
	if sup, ok := d.suppliers[sa.SupplierID]; ok && !softDeleted(sup.DeletedAt) {
		sa.Supplier = &sup
	}
	for _, m := range d.models {
		if m.SupplierArticleID == sa.ID {
			model := m
			sa.InventoryModel = &model
			break
		}
	}
	return sa
}

func (d *dataset) findAssociation(match func(sa supplierarticle.SupplierArticle) bool) (*supplierarticle.SupplierArticle, error) {
	ids := make([]uint, 0, len(d.associations))
	for id := range d.associations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if sa := d.associations[id]; match(sa) {
			hydrated := d.hydrate(sa)
			return &hydrated, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *Store) GetAssociation(ctx context.Context, id uint) (*supplierarticle.SupplierArticle, error) {
	var found *supplierarticle.SupplierArticle
	err := s.do(ctx, func(d *dataset) error {
		var err error
		found, err = d.findAssociation(func(sa supplierarticle.SupplierArticle) bool { return sa.ID == id })
		return err
	})
	return found, err
}

func (s *Store) FindAssociation(ctx context.Context, supplierID, articleID uint) (*supplierarticle.SupplierArticle, error) {
	var found *supplierarticle.SupplierArticle
	err := s.do(ctx, func(d *dataset) error {
		var err error
		found, err = d.findAssociation(func(sa supplierarticle.SupplierArticle) bool {
			return sa.SupplierID == supplierID && sa.ArticleID == articleID
		})
		return err
	})
	return found, err
}

func (s *Store) DefaultAssociation(ctx context.Context, articleID uint) (*supplierarticle.SupplierArticle, error) {
	var found *supplierarticle.SupplierArticle
	err := s.do(ctx, func(d *dataset) error {
		var err error
		found, err = d.findAssociation(func(sa supplierarticle.SupplierArticle) bool {
			return sa.ArticleID == articleID && sa.IsDefault
		})
		return err
	})
	return found, err
}

func (s *Store) ListAssociations(ctx context.Context, filter supplierarticle.Filter) ([]supplierarticle.SupplierArticle, error) {
	list := make([]supplierarticle.SupplierArticle, 0)
	err := s.do(ctx, func(d *dataset) error {
		for _, sa := range d.associations {
			if filter.ArticleID != 0 && sa.ArticleID != filter.ArticleID {
				continue
			}
			if filter.SupplierID != 0 && sa.SupplierID != filter.SupplierID {
				continue
			}
			if filter.Policy != "" && sa.Policy != filter.Policy {
				continue
			}
			if filter.DefaultOnly && !sa.IsDefault {
				continue
			}
			hydrated := d.hydrate(sa)
			if !filter.IncludeInactive && (hydrated.Article == nil || hydrated.Supplier == nil) {
				continue
			}
			list = append(list, hydrated)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}

func (s *Store) CreateAssociation(ctx context.Context, sa *supplierarticle.SupplierArticle) error {
	return s.do(ctx, func(d *dataset) error {
		for _, existing := range d.associations {
			if existing.SupplierID == sa.SupplierID && existing.ArticleID == sa.ArticleID {
				return gorm.ErrDuplicatedKey
			}
			if sa.IsDefault && existing.IsDefault && existing.ArticleID == sa.ArticleID {
				return gorm.ErrDuplicatedKey
			}
		}

		now := s.now()
		sa.ID = d.next("supplier_articles")
		sa.CreatedAt, sa.UpdatedAt = now, now

		row := *sa
		row.Article, row.Supplier, row.InventoryModel = nil, nil, nil
		d.associations[sa.ID] = row

		if sa.InventoryModel == nil {
			sa.InventoryModel = &supplierarticle.InventoryModel{}
		}
		m := sa.InventoryModel
		m.ID = d.next("inventory_models")
		m.SupplierArticleID = sa.ID
		m.CreatedAt, m.UpdatedAt = now, now
		d.models[m.ID] = *m
		return nil
	})
}

func (s *Store) SaveAssociation(ctx context.Context, sa *supplierarticle.SupplierArticle) error {
	return s.do(ctx, func(d *dataset) error {
		stored, ok := d.associations[sa.ID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if sa.IsDefault {
			for id, other := range d.associations {
				if id != sa.ID && other.ArticleID == sa.ArticleID && other.IsDefault {
					return gorm.ErrDuplicatedKey
				}
			}
		}

		now := s.now()
		stored.UnitPrice = sa.UnitPrice
		stored.OrderCost = sa.OrderCost
		stored.PurchaseCost = sa.PurchaseCost
		stored.LeadTimeDays = sa.LeadTimeDays
		stored.ServiceLevel = sa.ServiceLevel
		stored.Policy = sa.Policy
		stored.IsDefault = sa.IsDefault
		stored.TotalInventoryCost = sa.TotalInventoryCost
		stored.UpdatedAt = now
		d.associations[sa.ID] = stored

		m := sa.InventoryModel
		if m == nil {
			return nil
		}
		if m.ID == 0 {
			m.ID = d.next("inventory_models")
			m.SupplierArticleID = sa.ID
			m.CreatedAt = now
		}
		m.UpdatedAt = now
		d.models[m.ID] = *m
		return nil
	})
}

func (s *Store) DemoteDefaults(ctx context.Context, articleID, keepID uint) error {
	return s.do(ctx, func(d *dataset) error {
		for id, sa := range d.associations {
			if id != keepID && sa.ArticleID == articleID && sa.IsDefault {
				sa.IsDefault = false
				d.associations[id] = sa
			}
		}
		return nil
	})
}

func (s *Store) DeleteAssociation(ctx context.Context, id uint) error {
	return s.do(ctx, func(d *dataset) error {
		if _, ok := d.associations[id]; !ok {
			return gorm.ErrRecordNotFound
		}
		for mid, m := range d.models {
			if m.SupplierArticleID == id {
				delete(d.models, mid)
			}
		}
		delete(d.associations, id)
		return nil
	})
}

func (s *Store) CountAssociationsForSupplier(ctx context.Context, supplierID uint) (int64, error) {
	var count int64
	err := s.do(ctx, func(d *dataset) error {
		for _, sa := range d.associations {
			if sa.SupplierID == supplierID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (s *Store) LockInventoryModel(ctx context.Context, id uint) (*supplierarticle.InventoryModel, error) {
	var found *supplierarticle.InventoryModel
	err := s.do(ctx, func(d *dataset) error {
		m, ok := d.models[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		found = &m
		return nil
	})
	return found, err
}

func (s *Store) MarkReviewed(ctx context.Context, inventoryModelID uint, at time.Time) error {
	return s.do(ctx, func(d *dataset) error {
		m, ok := d.models[inventoryModelID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		m.LastReviewAt = &at
		m.UpdatedAt = s.now()
		d.models[inventoryModelID] = m
		return nil
	})
}

// PURCHASE ORDERS

func (d *dataset) countOpen(match func(o purchaseorder.PurchaseOrder) bool) int64 {
	var count int64
	for _, o := range d.orders {
		if o.StateID.IsOpen() && match(o) {
			count++
		}
	}
	return count
}

func (s *Store) CountOpenOrdersForArticle(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := s.do(ctx, func(d *dataset) error {
		count = d.countOpen(func(o purchaseorder.PurchaseOrder) bool { return o.ArticleID == articleID })
		return nil
	})
	return count, err
}

func (s *Store) CountOpenOrdersForSupplier(ctx context.Context, supplierID uint) (int64, error) {
	var count int64
	err := s.do(ctx, func(d *dataset) error {
		count = d.countOpen(func(o purchaseorder.PurchaseOrder) bool { return o.SupplierID == supplierID })
		return nil
	})
	return count, err
}

func (s *Store) CountOpenOrdersForAssociation(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := s.do(ctx, func(d *dataset) error {
		count = d.countOpen(func(o purchaseorder.PurchaseOrder) bool { return o.SupplierArticleID == id })
		return nil
	})
	return count, err
}

func (s *Store) SumOpenOrderQuantity(ctx context.Context, articleID uint) (int, error) {
	total := 0
	err := s.do(ctx, func(d *dataset) error {
		for _, o := range d.orders {
			if o.StateID.IsOpen() && o.ArticleID == articleID {
				total += o.Quantity
			}
		}
		return nil
	})
	return total, err
}

func (s *Store) CreateOrder(ctx context.Context, o *purchaseorder.PurchaseOrder) error {
	return s.do(ctx, func(d *dataset) error {
		now := s.now()
		o.ID = d.next("purchase_orders")
		o.CreatedAt, o.UpdatedAt = now, now
		row := *o
		row.SupplierArticle = nil
		d.orders[o.ID] = row
		return nil
	})
}

// withAssociation attaches the association including inactive parties, as
// the unscoped gorm preload does
func (d *dataset) withAssociation(o purchaseorder.PurchaseOrder) purchaseorder.PurchaseOrder {
	o.SupplierArticle = nil
	sa, ok := d.associations[o.SupplierArticleID]
	if !ok {
		return o
	}
	if a, ok := d.articles[sa.ArticleID]; ok {
		sa.Article = &a
	}
	if sup, ok := d.suppliers[sa.SupplierID]; ok {
		sa.Supplier = &sup
	}
	o.SupplierArticle = &sa
	return o
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*purchaseorder.PurchaseOrder, error) {
	var found *purchaseorder.PurchaseOrder
	err := s.do(ctx, func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		o = d.withAssociation(o)
		found = &o
		return nil
	})
	return found, err
}

func (s *Store) LockOrder(ctx context.Context, id uint) (*purchaseorder.PurchaseOrder, error) {
	var found *purchaseorder.PurchaseOrder
	err := s.do(ctx, func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		found = &o
		return nil
	})
	return found, err
}

func (s *Store) ListOrders(ctx context.Context, filter purchaseorder.Filter) ([]purchaseorder.PurchaseOrder, error) {
	list := make([]purchaseorder.PurchaseOrder, 0)
	err := s.do(ctx, func(d *dataset) error {
		for _, o := range d.orders {
			if len(filter.States) > 0 && !containsState(filter.States, o.StateID) {
				continue
			}
			if filter.ArticleID != 0 && o.ArticleID != filter.ArticleID {
				continue
			}
			if filter.SupplierID != 0 && o.SupplierID != filter.SupplierID {
				continue
			}
			if filter.Source != "" && o.Source != filter.Source {
				continue
			}
			list = append(list, d.withAssociation(o))
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, err
}

func containsState(states []purchaseorder.StateID, state purchaseorder.StateID) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func (s *Store) SaveOrder(ctx context.Context, o *purchaseorder.PurchaseOrder) error {
	return s.do(ctx, func(d *dataset) error {
		stored, ok := d.orders[o.ID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		stored.Quantity = o.Quantity
		stored.TotalAmount = o.TotalAmount
		stored.StateID = o.StateID
		stored.ReceivedAt = o.ReceivedAt
		stored.UpdatedAt = s.now()
		d.orders[o.ID] = stored
		return nil
	})
}

// SALES

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	return s.do(ctx, func(d *dataset) error {
		sl.ID = d.next("sales")
		sl.CreatedAt = s.now()
		for i := range sl.Lines {
			sl.Lines[i].ID = d.next("sale_lines")
			sl.Lines[i].SaleID = sl.ID
		}
		row := *sl
		row.Lines = make([]sale.SaleLine, len(sl.Lines))
		for i, line := range sl.Lines {
			line.Article = nil
			row.Lines[i] = line
		}
		d.sales[sl.ID] = row
		return nil
	})
}

func (s *Store) ListSales(ctx context.Context) ([]sale.Sale, error) {
	list := make([]sale.Sale, 0)
	err := s.do(ctx, func(d *dataset) error {
		for _, sl := range d.sales {
			sl.Lines = append([]sale.SaleLine(nil), sl.Lines...)
			list = append(list, sl)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, err
}

func (s *Store) GetSale(ctx context.Context, id uint) (*sale.Sale, error) {
	var found *sale.Sale
	err := s.do(ctx, func(d *dataset) error {
		sl, ok := d.sales[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		lines := make([]sale.SaleLine, len(sl.Lines))
		for i, line := range sl.Lines {
			if a, ok := d.articles[line.ArticleID]; ok {
				line.Article = &a
			}
			lines[i] = line
		}
		sl.Lines = lines
		found = &sl
		return nil
	})
	return found, err
}
