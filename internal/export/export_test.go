package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
)

var day = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestProductsCSV(t *testing.T) {
	tbl := Products([]products.Product{
		{Name: "Shampoo", Category: "Hair", SKU: "SH-1", Price: decimal.RequireFromString("12.5"), Cost: decimal.NewFromInt(5), StockQuantity: 8, LowStockThreshold: 2},
		{Name: "Haircut, short", SKU: "SV-1", Price: decimal.NewFromInt(30), IsService: true},
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	want := "Product Name,Type,Category,SKU,Barcode,Price,Cost,Stock Quantity,Low Stock Alert,Description\n" +
		"Shampoo,Product,Hair,SH-1,,12.50,5.00,8,2,\n" +
		"\"Haircut, short\",Service,,SV-1,,30.00,0.00,N/A,N/A,\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestSalesTable(t *testing.T) {
	cust := uuid.New()
	tbl := Sales([]sales.Sale{
		{InvoiceNumber: "INV-1", SaleDate: day, Subtotal: decimal.NewFromInt(25), TaxAmount: decimal.RequireFromString("2.5"),
			DiscountAmount: decimal.NewFromInt(2), TotalAmount: decimal.RequireFromString("25.5"), PaymentMethod: sales.PayCash, Status: sales.StatusCompleted},
		{InvoiceNumber: "INV-2", CustomerID: &cust, CustomerName: "Ann", SaleDate: day, PaymentMethod: sales.PayCard, Status: sales.StatusRefunded},
	}, time.UTC)

	if got := strings.Join(tbl.Rows[0], "|"); got != "INV-1|Walk-in Customer|2025-03-14|25.00|2.50|2.00|25.50|cash|completed" {
		t.Errorf("row 1 = %s", got)
	}
	if tbl.Rows[1][1] != "Ann" {
		t.Errorf("customer = %q", tbl.Rows[1][1])
	}
}

func TestRestocksTable(t *testing.T) {
	received := day.Add(48 * time.Hour)
	tbl := Restocks([]restock.Order{
		{OrderNumber: "RO-1", SupplierName: "Acme", OrderDate: day, Status: restock.StatusPending, TotalCost: decimal.NewFromInt(15)},
		{OrderNumber: "RO-2", SupplierName: "Acme", SupplierContact: "acme@example.com", OrderDate: day, ReceivedDate: &received,
			Status: restock.StatusReceived, TotalCost: decimal.NewFromInt(3), Notes: "boxed"},
	}, time.UTC)

	if len(tbl.Header) != 8 || tbl.Header[4] != "Received Date" {
		t.Fatalf("header = %v", tbl.Header)
	}
	if tbl.Rows[0][4] != "" || tbl.Rows[1][4] != "2025-03-16" {
		t.Errorf("received dates = %q, %q", tbl.Rows[0][4], tbl.Rows[1][4])
	}
	if tbl.Rows[1][6] != "3.00" || tbl.Rows[1][7] != "boxed" {
		t.Errorf("row 2 = %v", tbl.Rows[1])
	}
}

func TestEmptyExportHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Sales(nil, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) != 1 {
		t.Errorf("lines = %d, want header only", len(lines))
	}
}

func TestWriteXLSX(t *testing.T) {
	tbl := Products([]products.Product{{Name: "Gel", Price: decimal.NewFromInt(4), StockQuantity: 3}})

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, "Products", tbl); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Products")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "Product Name" || rows[1][0] != "Gel" || rows[1][5] != "4.00" {
		t.Errorf("rows = %v", rows)
	}
}

func TestParseAndFilename(t *testing.T) {
	if k, err := ParseKind("restock"); err != nil || k != KindRestock {
		t.Errorf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("users"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v", err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Errorf("default format = %v, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
	if got := Filename(KindSales, FormatCSV, day); got != "sales-export-2025-03-14.csv" {
		t.Errorf("Filename = %q", got)
	}
}
