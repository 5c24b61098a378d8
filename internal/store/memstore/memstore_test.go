package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/dialog"
	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/customers"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
)

var ctx = context.Background()

func mustProduct(t *testing.T, db *DB, user uuid.UUID, name string, stock int) products.Product {
	t.Helper()
	p, err := db.Products().Create(ctx, user, products.Input{Name: name, Price: decimal.NewFromInt(5), StockQuantity: stock})
	if err != nil {
		t.Fatal(err)
	}
	return *p
}

func sale(invoice string, lines ...sales.NewItem) sales.NewSale {
	return sales.NewSale{InvoiceNumber: invoice, PaymentMethod: sales.PayCash, Items: lines}
}

func line(id uuid.UUID, qty int) sales.NewItem {
	return sales.NewItem{ProductID: id, Quantity: qty, UnitPrice: decimal.NewFromInt(5), TotalPrice: decimal.NewFromInt(int64(5 * qty))}
}

func TestSaleIsAllOrNothing(t *testing.T) {
	db := New(false)
	user := uuid.New()
	a := mustProduct(t, db, user, "A", 5)
	b := mustProduct(t, db, user, "B", 1)

	_, _, err := db.Sales().Create(ctx, user, sale("INV-1", line(a.ID, 2), line(b.ID, 3)))
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}

	got, _ := db.Products().Get(ctx, user, a.ID)
	if got.StockQuantity != 5 {
		t.Errorf("A stock = %d, the first line must be rolled back", got.StockQuantity)
	}
	if list, _ := db.Sales().List(ctx, user); len(list) != 0 {
		t.Errorf("sales = %d, want none", len(list))
	}
	if trail, _ := db.StockTransactions().List(ctx, user, nil); len(trail) != 0 {
		t.Errorf("audit rows = %d, want none", len(trail))
	}
}

func TestDuplicateInvoice(t *testing.T) {
	db := New(true)
	user := uuid.New()
	p := mustProduct(t, db, user, "A", 5)

	if _, _, err := db.Sales().Create(ctx, user, sale("INV-1", line(p.ID, 1))); err != nil {
		t.Fatal(err)
	}
	if _, _, err := db.Sales().Create(ctx, user, sale("INV-1", line(p.ID, 1))); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("err = %v, want duplicate", err)
	}
	// Invoice numbers are unique per user only.
	other := uuid.New()
	q := mustProduct(t, db, other, "A", 5)
	if _, _, err := db.Sales().Create(ctx, other, sale("INV-1", line(q.ID, 1))); err != nil {
		t.Errorf("other user: %v", err)
	}
}

func TestDeleteReferencedProduct(t *testing.T) {
	db := New(true)
	user := uuid.New()
	p := mustProduct(t, db, user, "A", 5)
	free := mustProduct(t, db, user, "B", 5)
	if _, _, err := db.Sales().Create(ctx, user, sale("INV-1", line(p.ID, 1))); err != nil {
		t.Fatal(err)
	}

	if err := db.Products().Delete(ctx, user, p.ID); !errors.Is(err, domain.ErrInUse) {
		t.Errorf("err = %v, want in use", err)
	}
	if err := db.Products().Delete(ctx, user, free.ID); err != nil {
		t.Errorf("delete unreferenced: %v", err)
	}
	if err := db.Products().Delete(ctx, uuid.New(), p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign delete: %v", err)
	}
}

func TestDeleteCustomerKeepsSales(t *testing.T) {
	db := New(true)
	user := uuid.New()
	p := mustProduct(t, db, user, "A", 5)
	c, err := db.Customers().Create(ctx, user, customers.Input{Name: "Ann"})
	if err != nil {
		t.Fatal(err)
	}
	ns := sale("INV-1", line(p.ID, 1))
	ns.CustomerID = &c.ID
	s, _, err := db.Sales().Create(ctx, user, ns)
	if err != nil {
		t.Fatal(err)
	}
	if s.CustomerName != "Ann" {
		t.Errorf("customer name = %q", s.CustomerName)
	}

	if err := db.Customers().Delete(ctx, user, c.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := db.Sales().Get(ctx, user, s.ID)
	if got == nil || got.CustomerID != nil {
		t.Errorf("sale after customer delete = %+v", got)
	}
}

func TestStockEditIsAudited(t *testing.T) {
	db := New(true)
	user := uuid.New()
	p := mustProduct(t, db, user, "A", 5)

	if _, err := db.Products().Update(ctx, user, p.ID, products.Input{Name: "A", Price: decimal.NewFromInt(5), StockQuantity: 9}); err != nil {
		t.Fatal(err)
	}
	trail, _ := db.StockTransactions().List(ctx, user, &p.ID)
	if len(trail) != 1 || trail[0].Type != inventory.TxAdjustment || trail[0].QuantityChange != 4 {
		t.Errorf("trail = %+v", trail)
	}
}

func TestDraftsAreCopied(t *testing.T) {
	db := New(true)
	user := uuid.New()

	d, err := db.Drafts().Get(ctx, user, dialog.ScreenSale)
	if err != nil || d.State != dialog.StateIdle {
		t.Fatalf("initial = %+v, %v", d, err)
	}

	payload := dialog.Payload{"notes": "first"}
	if err := db.Drafts().Set(ctx, dialog.Draft{UserID: user, Screen: dialog.ScreenSale, State: dialog.StateComposing, Payload: payload}); err != nil {
		t.Fatal(err)
	}
	payload["notes"] = "mutated"

	got, _ := db.Drafts().Get(ctx, user, dialog.ScreenSale)
	if s := got.Payload["notes"]; s != "first" {
		t.Errorf("notes = %v, stored payload must not alias the caller's map", s)
	}

	if err := db.Drafts().Reset(ctx, user, dialog.ScreenSale); err != nil {
		t.Fatal(err)
	}
	got, _ = db.Drafts().Get(ctx, user, dialog.ScreenSale)
	if got.State != dialog.StateIdle || len(got.Payload) != 0 {
		t.Errorf("after reset = %+v", got)
	}
}

func TestServiceTurnedProductIsAudited(t *testing.T) {
	db := New(true)
	user := uuid.New()
	svc, err := db.Products().Create(ctx, user, products.Input{Name: "Kit", ProductType: products.TypeService, Price: decimal.NewFromInt(5)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Products().Update(ctx, user, svc.ID, products.Input{Name: "Kit", Price: decimal.NewFromInt(5), StockQuantity: 20}); err != nil {
		t.Fatal(err)
	}
	trail, _ := db.StockTransactions().List(ctx, user, &svc.ID)
	if len(trail) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(trail))
	}
	if tx := trail[0]; tx.QuantityBefore != 0 || tx.QuantityAfter != 20 || tx.QuantityChange != 20 || tx.Type != inventory.TxAdjustment {
		t.Errorf("audit row = %+v", tx)
	}

	// Back to a service: the stock drops to zero and that is audited too.
	if _, err := db.Products().Update(ctx, user, svc.ID, products.Input{Name: "Kit", ProductType: products.TypeService, Price: decimal.NewFromInt(5)}); err != nil {
		t.Fatal(err)
	}
	trail, _ = db.StockTransactions().List(ctx, user, &svc.ID)
	if len(trail) != 2 {
		t.Fatalf("audit rows = %d, want 2", len(trail))
	}
}

func TestRestockRejectsForeignProduct(t *testing.T) {
	db := New(true)
	owner, other := uuid.New(), uuid.New()
	p := mustProduct(t, db, owner, "A", 1)

	_, err := db.Restocks().Create(ctx, other, restock.NewOrder{
		OrderNumber:  "RO-1",
		SupplierName: "Acme",
		Items:        []restock.NewItem{{ProductID: p.ID, Quantity: 1, UnitCost: decimal.NewFromInt(1), TotalCost: decimal.NewFromInt(1)}},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if list, _ := db.Restocks().List(ctx, other); len(list) != 0 {
		t.Errorf("orders = %d, want none", len(list))
	}
}
