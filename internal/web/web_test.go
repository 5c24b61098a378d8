package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/auth"
	"github.com/Spok95/shopdesk/internal/dialog"
	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/profiles"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
	"github.com/Spok95/shopdesk/internal/infra/logger"
	"github.com/Spok95/shopdesk/internal/recorder"
	"github.com/Spok95/shopdesk/internal/report"
	"github.com/Spok95/shopdesk/internal/store/memstore"
)

const testSecret = "test-secret"

type fakeResetter struct {
	emails []string
	err    error
}

func (f *fakeResetter) RequestReset(_ context.Context, email string) error {
	f.emails = append(f.emails, email)
	return f.err
}

type apiFixture struct {
	app   *fiber.App
	db    *memstore.DB
	v     *auth.Verifier
	token string
	user  uuid.UUID
	reset *fakeResetter
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	db := memstore.New(true)
	log := logger.Discard()
	rec := recorder.New(db.Products(), db.Customers(), db.Sales(), db.Restocks(), log)
	v := auth.NewVerifier(testSecret)
	reset := &fakeResetter{}

	h := New(Deps{
		Products:  db.Products(),
		Customers: db.Customers(),
		Sales:     db.Sales(),
		Restocks:  db.Restocks(),
		Stock:     db.StockTransactions(),
		Profiles:  db.Profiles(),
		Drafts:    db.Drafts(),
		Recorder:  rec,
		Reset:     reset,
		Verifier:  v,
		Log:       log,
	})
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	h.Register(app)

	user := uuid.New()
	token, err := v.Sign(auth.Identity{UserID: user, Email: "owner@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return &apiFixture{app: app, db: db, v: v, token: token, user: user, reset: reset}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	return f.doAs(t, f.token, method, path, body)
}

func (f *apiFixture) doAs(t *testing.T, token, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func (f *apiFixture) createProduct(t *testing.T, in products.Input) products.Product {
	t.Helper()
	code, body := f.do(t, http.MethodPost, "/api/products", in)
	if code != fiber.StatusCreated {
		t.Fatalf("create product: %d %s", code, body)
	}
	return decode[products.Product](t, body)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAuthRequired(t *testing.T) {
	f := newAPI(t)

	if code, _ := f.doAs(t, "", http.MethodGet, "/api/products", nil); code != fiber.StatusUnauthorized {
		t.Errorf("no token: %d", code)
	}

	other := auth.NewVerifier("another-secret")
	forged, _ := other.Sign(auth.Identity{UserID: f.user}, time.Hour)
	if code, _ := f.doAs(t, forged, http.MethodGet, "/api/products", nil); code != fiber.StatusUnauthorized {
		t.Errorf("forged token: %d", code)
	}
}

func TestSaleFlow(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, products.Input{Name: "Shampoo", SKU: "SH-1", Price: dec("12.50"), Cost: dec("5"), StockQuantity: 10, LowStockThreshold: 8})

	code, body := f.do(t, http.MethodPost, "/api/sales", recorder.SaleInput{
		Items:          []recorder.SaleLine{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod:  sales.PayCard,
		TaxRate:        dec("10"),
		DiscountAmount: dec("2"),
	})
	if code != fiber.StatusCreated {
		t.Fatalf("record sale: %d %s", code, body)
	}
	sale := decode[sales.Sale](t, body)
	if !sale.TotalAmount.Equal(dec("25.5")) {
		t.Errorf("total = %s, want 25.5", sale.TotalAmount)
	}
	if !strings.HasPrefix(sale.InvoiceNumber, "INV-") {
		t.Errorf("invoice = %q", sale.InvoiceNumber)
	}

	_, body = f.do(t, http.MethodGet, "/api/products/"+p.ID.String(), nil)
	if got := decode[products.Product](t, body); got.StockQuantity != 8 {
		t.Errorf("stock = %d, want 8", got.StockQuantity)
	}

	_, body = f.do(t, http.MethodGet, "/api/sales/"+sale.ID.String()+"/items", nil)
	if items := decode[[]sales.Item](t, body); len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("items = %+v", items)
	}

	_, body = f.do(t, http.MethodGet, "/api/stock-transactions?product_id="+p.ID.String(), nil)
	trail := decode[[]inventory.Transaction](t, body)
	if len(trail) != 1 || trail[0].Type != inventory.TxSale || trail[0].QuantityAfter != 8 {
		t.Errorf("audit trail = %+v", trail)
	}

	_, body = f.do(t, http.MethodGet, "/api/products/low-stock", nil)
	if low := decode[[]products.Product](t, body); len(low) != 1 {
		t.Errorf("low stock = %d products, want 1", len(low))
	}

	code, body = f.do(t, http.MethodPut, "/api/sales/"+sale.ID.String(), map[string]any{"status": "refunded"})
	if code != fiber.StatusOK {
		t.Fatalf("update sale: %d %s", code, body)
	}
	if got := decode[sales.Sale](t, body); got.Status != sales.StatusRefunded || !got.TotalAmount.Equal(dec("25.5")) {
		t.Errorf("updated = %s %s", got.Status, got.TotalAmount)
	}

	code, body = f.do(t, http.MethodGet, "/api/reports?days=7", nil)
	if code != fiber.StatusOK {
		t.Fatalf("report: %d %s", code, body)
	}
	rep := decode[report.Report](t, body)
	if rep.Summary.TotalSales != 1 || !rep.Summary.TotalRevenue.Equal(dec("25.5")) || rep.Summary.TopSellingProduct != "Shampoo" {
		t.Errorf("summary = %+v", rep.Summary)
	}

	_, body = f.do(t, http.MethodGet, "/api/dashboard", nil)
	if dash := decode[report.Dashboard](t, body); dash.TotalProducts != 1 || dash.TotalSales != 1 {
		t.Errorf("dashboard = %+v", dash)
	}
}

func TestRestockFlow(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, products.Input{Name: "Conditioner", Price: dec("9"), Cost: dec("4"), StockQuantity: 3, LowStockThreshold: 1})

	code, body := f.do(t, http.MethodPost, "/api/restocks", recorder.RestockInput{
		SupplierName: "Acme",
		Items:        []recorder.RestockLine{{ProductID: p.ID, Quantity: 5, UnitCost: decimal.NewNullDecimal(dec("3"))}},
	})
	if code != fiber.StatusCreated {
		t.Fatalf("create restock: %d %s", code, body)
	}
	order := decode[restock.Order](t, body)
	if order.Status != restock.StatusPending || !order.TotalCost.Equal(dec("15")) {
		t.Errorf("order = %s %s", order.Status, order.TotalCost)
	}

	code, body = f.do(t, http.MethodPost, "/api/restocks/"+order.ID.String()+"/receive", nil)
	if code != fiber.StatusOK {
		t.Fatalf("receive: %d %s", code, body)
	}
	if got := decode[restock.Order](t, body); got.Status != restock.StatusReceived || got.ReceivedDate == nil {
		t.Errorf("received order = %+v", got)
	}

	_, body = f.do(t, http.MethodGet, "/api/products/"+p.ID.String(), nil)
	if got := decode[products.Product](t, body); got.StockQuantity != 8 {
		t.Errorf("stock = %d, want 8", got.StockQuantity)
	}

	if code, _ := f.do(t, http.MethodPost, "/api/restocks/"+order.ID.String()+"/cancel", nil); code != fiber.StatusConflict {
		t.Errorf("cancel received order: %d, want 409", code)
	}
}

func TestErrorStatuses(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, products.Input{Name: "Brush", Price: dec("4"), StockQuantity: 1})
	svc := f.createProduct(t, products.Input{Name: "Styling", ProductType: products.TypeService, Price: dec("20")})

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty sale", http.MethodPost, "/api/sales", recorder.SaleInput{}, fiber.StatusBadRequest},
		{"unknown product", http.MethodPost, "/api/sales", recorder.SaleInput{Items: []recorder.SaleLine{{ProductID: uuid.New(), Quantity: 1}}}, fiber.StatusBadRequest},
		{"restock a service", http.MethodPost, "/api/restocks", recorder.RestockInput{SupplierName: "Acme", Items: []recorder.RestockLine{{ProductID: svc.ID, Quantity: 1}}}, fiber.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/sales/not-a-uuid", nil, fiber.StatusBadRequest},
		{"missing sale", http.MethodGet, "/api/sales/" + uuid.NewString(), nil, fiber.StatusNotFound},
		{"items of missing sale", http.MethodGet, "/api/sales/" + uuid.NewString() + "/items", nil, fiber.StatusNotFound},
		{"items of missing restock", http.MethodGet, "/api/restocks/" + uuid.NewString() + "/items", nil, fiber.StatusNotFound},
		{"missing customer update", http.MethodPut, "/api/customers/" + uuid.NewString(), map[string]string{"name": "Ann"}, fiber.StatusNotFound},
		{"nameless product", http.MethodPost, "/api/products", products.Input{}, fiber.StatusBadRequest},
		{"bad lookback", http.MethodGet, "/api/reports?days=14", nil, fiber.StatusBadRequest},
		{"bad export kind", http.MethodGet, "/api/exports/invoices", nil, fiber.StatusBadRequest},
		{"bad export format", http.MethodGet, "/api/exports/sales?format=pdf", nil, fiber.StatusBadRequest},
		{"bad draft screen", http.MethodGet, "/api/drafts/customer", nil, fiber.StatusBadRequest},
		{"draft submit from idle", http.MethodPost, "/api/drafts/sale/submit", nil, fiber.StatusConflict},
		{"unknown route", http.MethodGet, "/api/nothing", nil, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := f.do(t, tc.method, tc.path, tc.body)
			if code != tc.want {
				t.Errorf("status = %d, want %d (%s)", code, tc.want, body)
			}
		})
	}

	// A referenced product cannot be deleted.
	if code, body := f.do(t, http.MethodPost, "/api/sales", recorder.SaleInput{Items: []recorder.SaleLine{{ProductID: p.ID, Quantity: 1}}}); code != fiber.StatusCreated {
		t.Fatalf("record sale: %d %s", code, body)
	}
	if code, _ := f.do(t, http.MethodDelete, "/api/products/"+p.ID.String(), nil); code != fiber.StatusConflict {
		t.Errorf("delete referenced product: %d, want 409", code)
	}
}

func TestStatusOf(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation":  {&recorder.ValidationError{Err: recorder.ErrNoItems}, fiber.StatusBadRequest},
		"not found":   {domain.ErrNotFound, fiber.StatusNotFound},
		"stock":       {inventory.ErrInsufficientStock, fiber.StatusConflict},
		"not pending": {restock.ErrNotPending, fiber.StatusConflict},
		"transition":  {dialog.ErrInvalidTransition, fiber.StatusConflict},
		"other":       {errors.New("boom"), fiber.StatusInternalServerError},
	}
	for name, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("%s: %d, want %d", name, got, tc.want)
		}
	}
}

func TestExportCSV(t *testing.T) {
	f := newAPI(t)
	f.createProduct(t, products.Input{Name: "Comb", SKU: "CB-1", Price: dec("3"), StockQuantity: 4})

	req := httptest.NewRequest(http.MethodGet, "/api/exports/products", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+f.token)
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); !strings.Contains(cd, "products-export-") {
		t.Errorf("disposition = %q", cd)
	}
	raw, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "Comb") {
		t.Errorf("csv = %q", raw)
	}
}

func TestExportXLSX(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/exports/sales?format=xlsx", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+f.token)
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get(fiber.HeaderContentType) != xlsxContentType {
		t.Fatalf("status = %d, type = %q", resp.StatusCode, resp.Header.Get(fiber.HeaderContentType))
	}
	raw, _ := io.ReadAll(resp.Body)
	// XLSX is a zip archive.
	if !bytes.HasPrefix(raw, []byte("PK")) {
		t.Errorf("body is not a zip archive")
	}
}

func TestProfileDefaultsAndUpdate(t *testing.T) {
	f := newAPI(t)

	_, body := f.do(t, http.MethodGet, "/api/profile", nil)
	p := decode[profiles.Profile](t, body)
	if p.CurrencyCode != "USD" || !p.ExchangeRate.Equal(dec("1")) || p.Email != "owner@example.com" {
		t.Errorf("default profile = %+v", p)
	}

	code, body := f.do(t, http.MethodPut, "/api/profile", profiles.Input{BusinessName: "Salon", CurrencyCode: "eur", ExchangeRate: dec("0.92")})
	if code != fiber.StatusOK {
		t.Fatalf("update: %d %s", code, body)
	}
	if p := decode[profiles.Profile](t, body); p.CurrencyCode != "EUR" || p.BusinessName != "Salon" {
		t.Errorf("profile = %+v", p)
	}

	if code, _ := f.do(t, http.MethodPut, "/api/profile", profiles.Input{CurrencyCode: "EURO"}); code != fiber.StatusBadRequest {
		t.Errorf("bad currency: %d", code)
	}
}

func TestPasswordResetIsPublic(t *testing.T) {
	f := newAPI(t)
	code, _ := f.doAs(t, "", http.MethodPost, "/api/auth/password-reset", map[string]string{"email": "owner@example.com"})
	if code != fiber.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if len(f.reset.emails) != 1 || f.reset.emails[0] != "owner@example.com" {
		t.Errorf("emails = %v", f.reset.emails)
	}

	f.reset.err = auth.ErrInvalidEmail
	if code, _ := f.doAs(t, "", http.MethodPost, "/api/auth/password-reset", map[string]string{"email": ""}); code != fiber.StatusBadRequest {
		t.Errorf("invalid email: %d", code)
	}
}

func TestDraftLifecycle(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, products.Input{Name: "Gel", Price: dec("6"), StockQuantity: 5})

	_, body := f.do(t, http.MethodGet, "/api/drafts/sale", nil)
	if d := decode[dialog.Draft](t, body); d.State != dialog.StateIdle {
		t.Fatalf("initial state = %s", d.State)
	}

	if code, body := f.do(t, http.MethodPut, "/api/drafts/sale", map[string]any{"intent": "open"}); code != fiber.StatusOK {
		t.Fatalf("open: %d %s", code, body)
	}

	// A payload without items fails validation and keeps the draft.
	code, body := f.do(t, http.MethodPut, "/api/drafts/sale", map[string]any{
		"intent":  "edit",
		"payload": map[string]any{"payment_method": "cash"},
	})
	if code != fiber.StatusOK {
		t.Fatalf("edit: %d %s", code, body)
	}
	code, body = f.do(t, http.MethodPost, "/api/drafts/sale/submit", nil)
	if code != fiber.StatusBadRequest {
		t.Fatalf("submit empty: %d %s", code, body)
	}
	failed := decode[struct {
		Error string       `json:"error"`
		Draft dialog.Draft `json:"draft"`
	}](t, body)
	if failed.Draft.State != dialog.StateError || failed.Draft.Message == "" {
		t.Errorf("failed draft = %+v", failed.Draft)
	}

	code, body = f.do(t, http.MethodPut, "/api/drafts/sale", map[string]any{
		"intent": "edit",
		"payload": map[string]any{
			"payment_method": "cash",
			"items":          []map[string]any{{"product_id": p.ID.String(), "quantity": 2}},
		},
	})
	if code != fiber.StatusOK {
		t.Fatalf("edit again: %d %s", code, body)
	}
	code, body = f.do(t, http.MethodPost, "/api/drafts/sale/submit", nil)
	if code != fiber.StatusCreated {
		t.Fatalf("submit: %d %s", code, body)
	}
	if s := decode[sales.Sale](t, body); !s.TotalAmount.Equal(dec("12")) {
		t.Errorf("total = %s", s.TotalAmount)
	}

	_, body = f.do(t, http.MethodGet, "/api/drafts/sale", nil)
	if d := decode[dialog.Draft](t, body); d.State != dialog.StateIdle || len(d.Payload) != 0 {
		t.Errorf("draft after submit = %+v", d)
	}

	if code, _ := f.do(t, http.MethodPut, "/api/drafts/sale", map[string]any{"intent": "succeed"}); code != fiber.StatusBadRequest {
		t.Errorf("outcome intent: %d", code)
	}
}

func TestItemsOfForeignDocuments(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, products.Input{Name: "Wax", Price: dec("7"), Cost: dec("2"), StockQuantity: 5})

	code, body := f.do(t, http.MethodPost, "/api/sales", recorder.SaleInput{Items: []recorder.SaleLine{{ProductID: p.ID, Quantity: 1}}})
	if code != fiber.StatusCreated {
		t.Fatalf("record sale: %d %s", code, body)
	}
	sale := decode[sales.Sale](t, body)
	code, body = f.do(t, http.MethodPost, "/api/restocks", recorder.RestockInput{SupplierName: "Acme", Items: []recorder.RestockLine{{ProductID: p.ID, Quantity: 1}}})
	if code != fiber.StatusCreated {
		t.Fatalf("create restock: %d %s", code, body)
	}
	order := decode[restock.Order](t, body)

	stranger, err := f.v.Sign(auth.Identity{UserID: uuid.New()}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{
		"/api/sales/" + sale.ID.String() + "/items",
		"/api/restocks/" + order.ID.String() + "/items",
	} {
		if code, _ := f.doAs(t, stranger, http.MethodGet, path, nil); code != fiber.StatusNotFound {
			t.Errorf("%s as another user: %d, want 404", path, code)
		}
		if code, _ := f.do(t, http.MethodGet, path, nil); code != fiber.StatusOK {
			t.Errorf("%s as owner: %d, want 200", path, code)
		}
	}
}

func TestDiscardStuckDraft(t *testing.T) {
	f := newAPI(t)
	// A request that died mid-submit leaves the draft in submitting.
	stuck := dialog.Draft{UserID: f.user, Screen: dialog.ScreenRestock, State: dialog.StateSubmitting, Payload: dialog.Payload{"supplier_name": "Acme"}}
	if err := f.db.Drafts().Set(context.Background(), stuck); err != nil {
		t.Fatal(err)
	}

	for _, intent := range []string{"cancel", "edit", "dismiss", "open"} {
		if code, _ := f.do(t, http.MethodPut, "/api/drafts/restock", map[string]any{"intent": intent}); code != fiber.StatusConflict {
			t.Errorf("%s from submitting: %d, want 409", intent, code)
		}
	}

	if code, body := f.do(t, http.MethodDelete, "/api/drafts/restock", nil); code != fiber.StatusNoContent {
		t.Fatalf("discard: %d %s", code, body)
	}
	_, body := f.do(t, http.MethodGet, "/api/drafts/restock", nil)
	if d := decode[dialog.Draft](t, body); d.State != dialog.StateIdle || len(d.Payload) != 0 {
		t.Errorf("draft after discard = %+v", d)
	}
	if code, _ := f.do(t, http.MethodPut, "/api/drafts/restock", map[string]any{"intent": "open"}); code != fiber.StatusOK {
		t.Errorf("reopen after discard: %d", code)
	}
	if code, _ := f.do(t, http.MethodDelete, "/api/drafts/order", nil); code != fiber.StatusBadRequest {
		t.Errorf("discard unknown screen: %d", code)
	}
}
