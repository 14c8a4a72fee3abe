package supplier_test

import (
	"context"
	"testing"

	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/memory"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"github.com/your-org/inventory-backend/internal/testutil"
)

func setup(t *testing.T) (*memory.Store, *supplier.Service, *supplierarticle.Service) {
	t.Helper()
	store := memory.NewStore()
	associations := supplierarticle.NewService(store).WithClock(testutil.Clock(testutil.Now))
	return store, supplier.NewService(store, associations), associations
}

func lotInput(articleID uint) supplier.AssociationInput {
	return supplier.AssociationInput{
		ArticleID:    articleID,
		UnitPrice:    10,
		OrderCost:    50,
		LeadTimeDays: 5,
		ServiceLevel: 95,
		Policy:       string(supplierarticle.PolicyFixedLot),
	}
}

func TestCreateSupplierWithArticles(t *testing.T) {
	ctx := context.Background()
	store, svc, associations := setup(t)
	bolt := testutil.SeedArticle(t, store, testutil.StandardArticle(100))
	nut := testutil.SeedArticle(t, store, testutil.StandardArticle(100))

	sup, err := svc.CreateSupplier(ctx, &supplier.CreateSupplierRequest{
		FirstName: "Ana",
		LastName:  "Ruiz",
		Email:     " Ana@Example.com ",
		Articles:  []supplier.AssociationInput{lotInput(bolt.ID), lotInput(nut.ID)},
	})
	if err != nil {
		t.Fatalf("CreateSupplier() error = %v", err)
	}
	if sup.Email != "ana@example.com" {
		t.Errorf("Email = %q, want normalized address", sup.Email)
	}

	list, err := associations.List(ctx, supplierarticle.Filter{SupplierID: sup.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d associations, want 2", len(list))
	}
	for _, sa := range list {
		if !sa.IsDefault || sa.InventoryModel == nil || *sa.InventoryModel.OptimalLot != 224 {
			t.Errorf("association %d not initialized as default fixed-lot: %+v", sa.ID, sa)
		}
	}
}

func TestCreateSupplierRollsBackOnBadArticle(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := setup(t)
	bolt := testutil.SeedArticle(t, store, testutil.StandardArticle(100))

	_, err := svc.CreateSupplier(ctx, &supplier.CreateSupplierRequest{
		FirstName: "Ana",
		Email:     "ana@example.com",
		Articles:  []supplier.AssociationInput{lotInput(bolt.ID), lotInput(999)},
	})
	if !apperror.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}

	suppliers, err := svc.GetSuppliers(ctx)
	if err != nil {
		t.Fatalf("GetSuppliers() error = %v", err)
	}
	if len(suppliers) != 0 {
		t.Errorf("supplier persisted despite failed association: %+v", suppliers)
	}
	if list, _ := store.ListAssociations(ctx, supplierarticle.Filter{IncludeInactive: true}); len(list) != 0 {
		t.Errorf("associations persisted: %+v", list)
	}
}

func TestSupplierEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := setup(t)

	ana, err := svc.CreateSupplier(ctx, &supplier.CreateSupplierRequest{FirstName: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("CreateSupplier() error = %v", err)
	}
	bea, err := svc.CreateSupplier(ctx, &supplier.CreateSupplierRequest{FirstName: "Bea", Email: "bea@example.com"})
	if err != nil {
		t.Fatalf("CreateSupplier() error = %v", err)
	}

	if _, err := svc.CreateSupplier(ctx, &supplier.CreateSupplierRequest{FirstName: "Dup", Email: "ANA@example.com"}); !apperror.IsConflict(err) {
		t.Errorf("duplicate create: err = %v, want conflict", err)
	}

	email := "ana@example.com"
	if _, err := svc.UpdateSupplier(ctx, bea.ID, &supplier.UpdateSupplierRequest{Email: &email}); !apperror.IsConflict(err) {
		t.Errorf("update to taken email: err = %v, want conflict", err)
	}

	phone := "555-0100"
	updated, err := svc.UpdateSupplier(ctx, ana.ID, &supplier.UpdateSupplierRequest{Email: &email, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateSupplier() keeping own email error = %v", err)
	}
	if updated.Phone != phone {
		t.Errorf("Phone = %q, want %q", updated.Phone, phone)
	}
}

func TestDeleteSupplier(t *testing.T) {
	ctx := context.Background()
	store, svc, associations := setup(t)
	bolt := testutil.SeedArticle(t, store, testutil.StandardArticle(100))
	primary := testutil.SeedSupplier(t, store, "main@example.com")
	backup := testutil.SeedSupplier(t, store, "backup@example.com")
	idle := testutil.SeedSupplier(t, store, "idle@example.com")

	if err := associations.CreateForSupplier(ctx, primary.ID, []supplier.AssociationInput{lotInput(bolt.ID)}); err != nil {
		t.Fatalf("CreateForSupplier() error = %v", err)
	}
	backupAssoc, err := associations.Create(ctx, &supplierarticle.CreateRequest{
		SupplierID:   backup.ID,
		ArticleID:    bolt.ID,
		UnitPrice:    11,
		OrderCost:    50,
		LeadTimeDays: 5,
		ServiceLevel: 95,
		Policy:       supplierarticle.PolicyFixedLot,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := purchaseorder.NewService(store).CreateOrder(ctx, &purchaseorder.CreateOrderRequest{
		SupplierArticleID: backupAssoc.Association.ID,
		Quantity:          3,
	}); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	tests := []struct {
		name string
		id   uint
		want apperror.Kind
	}{
		{"default supplier", primary.ID, apperror.KindConflict},
		{"open purchase order", backup.ID, apperror.KindConflict},
		{"unknown", 999, apperror.KindNotFound},
		{"deletable", idle.ID, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.DeleteSupplier(ctx, tt.id)
			if got := apperror.KindOf(err); got != tt.want {
				t.Errorf("KindOf(%v) = %q, want %q", err, got, tt.want)
			}
		})
	}

	if _, err := svc.GetSupplier(ctx, idle.ID); !apperror.IsNotFound(err) {
		t.Errorf("GetSupplier() after delete: err = %v, want not found", err)
	}
}
