package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/sales"
)

type Dashboard struct {
	TotalProducts    int             `json:"total_products"`
	TotalCustomers   int             `json:"total_customers"`
	TotalSales       int             `json:"total_sales"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	LowStockProducts int             `json:"low_stock_products"`
	TodaySales       decimal.Decimal `json:"today_sales"`
	WeekSales        decimal.Decimal `json:"week_sales"`
	MonthSales       decimal.Decimal `json:"month_sales"`
}

// BuildDashboard summarises the whole account. Week and month are the
// trailing 7 and 30 days; today starts at local midnight.
func BuildDashboard(now time.Time, loc *time.Location, ps []products.Product, customerCount int, ss []sales.Sale) Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := startOfDay(now)
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, 0, -30)

	d := Dashboard{
		TotalProducts:  len(ps),
		TotalCustomers: customerCount,
		TotalSales:     len(ss),
		TotalRevenue:   decimal.Zero,
		TodaySales:     decimal.Zero,
		WeekSales:      decimal.Zero,
		MonthSales:     decimal.Zero,
	}
	for _, p := range ps {
		if p.IsLowStock() {
			d.LowStockProducts++
		}
	}
	for _, s := range ss {
		d.TotalRevenue = d.TotalRevenue.Add(s.TotalAmount)
		at := s.SaleDate.In(loc)
		if !at.Before(today) {
			d.TodaySales = d.TodaySales.Add(s.TotalAmount)
		}
		if !at.Before(week) {
			d.WeekSales = d.WeekSales.Add(s.TotalAmount)
		}
		if !at.Before(month) {
			d.MonthSales = d.MonthSales.Add(s.TotalAmount)
		}
	}
	return d
}
