// Package export renders products, sales and restock orders as downloadable
// CSV or XLSX tables.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
)

type Kind string

const (
	KindProducts Kind = "products"
	KindSales    Kind = "sales"
	KindRestock  Kind = "restock"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindProducts, KindSales, KindRestock:
		return k, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

var (
	ErrUnknownKind   = errors.New("export: unknown kind")
	ErrUnknownFormat = errors.New("export: format must be csv or xlsx")
)

// Table is a header plus rows of already formatted cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Filename follows the <kind>-export-YYYY-MM-DD.<ext> pattern.
func Filename(kind Kind, f Format, now time.Time) string {
	return fmt.Sprintf("%s-export-%s.%s", kind, now.Format("2006-01-02"), f)
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func date(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

func Products(ps []products.Product) Table {
	t := Table{Header: []string{
		"Product Name", "Type", "Category", "SKU", "Barcode", "Price", "Cost",
		"Stock Quantity", "Low Stock Alert", "Description",
	}}
	for _, p := range ps {
		typ, stock, alert := "Product", fmt.Sprint(p.StockQuantity), fmt.Sprint(p.LowStockThreshold)
		if p.IsService {
			typ, stock, alert = "Service", "N/A", "N/A"
		}
		t.Rows = append(t.Rows, []string{
			p.Name, typ, p.Category, p.SKU, p.Barcode, money(p.Price), money(p.Cost),
			stock, alert, p.Description,
		})
	}
	return t
}

func Sales(ss []sales.Sale, loc *time.Location) Table {
	t := Table{Header: []string{
		"Invoice Number", "Customer", "Date", "Subtotal", "Tax", "Discount", "Total",
		"Payment Method", "Status",
	}}
	for _, s := range ss {
		customer := s.CustomerName
		if s.CustomerID == nil || customer == "" {
			customer = "Walk-in Customer"
		}
		t.Rows = append(t.Rows, []string{
			s.InvoiceNumber, customer, date(s.SaleDate, loc), money(s.Subtotal), money(s.TaxAmount),
			money(s.DiscountAmount), money(s.TotalAmount), string(s.PaymentMethod), string(s.Status),
		})
	}
	return t
}

func Restocks(orders []restock.Order, loc *time.Location) Table {
	t := Table{Header: []string{
		"Order Number", "Supplier", "Contact", "Order Date", "Received Date", "Status",
		"Total Cost", "Notes",
	}}
	for _, o := range orders {
		received := ""
		if o.ReceivedDate != nil {
			received = date(*o.ReceivedDate, loc)
		}
		t.Rows = append(t.Rows, []string{
			o.OrderNumber, o.SupplierName, o.SupplierContact, date(o.OrderDate, loc), received,
			string(o.Status), money(o.TotalCost), o.Notes,
		})
	}
	return t
}
