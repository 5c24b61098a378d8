// Package report aggregates stored sales into the figures shown on the reports
// and dashboard screens. Everything here is pure: the same rows and the same
// "now" always give the same result.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain/sales"
)

type Granularity string

const (
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// Lookbacks lists the supported report windows in days.
var Lookbacks = []int{7, 30, 90, 365}

var ErrUnsupportedLookback = errors.New("report: lookback must be one of 7, 30, 90, 365 days")

const topLimit = 5

type Bucket struct {
	Label   string          `json:"label"`
	Start   time.Time       `json:"start"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Summary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalSales        int             `json:"total_sales"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopSellingProduct string          `json:"top_selling_product"`
}

type Report struct {
	Days        int          `json:"days"`
	Since       time.Time    `json:"since"`
	Granularity Granularity  `json:"granularity"`
	Buckets     []Bucket     `json:"buckets"`
	TopProducts []TopProduct `json:"top_products"`
	Summary     Summary      `json:"summary"`
}

func supported(days int) bool {
	for _, d := range Lookbacks {
		if d == days {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// layout returns the buckets for the window ending at now. Windows up to 30
// days get one bucket per calendar day, longer ones one per calendar month
// (ceil(days/30) of them). The window starts where the first bucket starts.
func layout(days int, now time.Time) (Granularity, []Bucket) {
	if days <= 30 {
		first := startOfDay(now).AddDate(0, 0, -(days - 1))
		out := make([]Bucket, days)
		for i := range out {
			start := first.AddDate(0, 0, i)
			out[i] = Bucket{Label: start.Format("2006-01-02"), Start: start, Revenue: decimal.Zero}
		}
		return Daily, out
	}
	months := (days + 29) / 30
	first := startOfMonth(now).AddDate(0, -(months - 1), 0)
	out := make([]Bucket, months)
	for i := range out {
		start := first.AddDate(0, i, 0)
		out[i] = Bucket{Label: start.Format("Jan 2006"), Start: start, Revenue: decimal.Zero}
	}
	return Monthly, out
}

// WindowStart is the earliest sale date a report over days includes.
func WindowStart(days int, now time.Time, loc *time.Location) (time.Time, error) {
	if !supported(days) {
		return time.Time{}, fmt.Errorf("%d: %w", days, ErrUnsupportedLookback)
	}
	_, buckets := layout(days, now.In(loc))
	return buckets[0].Start, nil
}

// Build aggregates ss and their items over the window ending at now. Rows
// outside the window are ignored, so callers may pass a superset.
func Build(days int, now time.Time, loc *time.Location, ss []sales.Sale, items []sales.Item) (Report, error) {
	if !supported(days) {
		return Report{}, fmt.Errorf("%d: %w", days, ErrUnsupportedLookback)
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	gran, buckets := layout(days, now)
	since := buckets[0].Start

	rep := Report{
		Days:        days,
		Since:       since,
		Granularity: gran,
		Buckets:     buckets,
		TopProducts: []TopProduct{},
		Summary:     Summary{TotalRevenue: decimal.Zero, AverageOrderValue: decimal.Zero, TopSellingProduct: "N/A"},
	}

	inWindow := map[uuid.UUID]bool{}
	for _, s := range ss {
		at := s.SaleDate.In(loc)
		if at.Before(since) || at.After(now) {
			continue
		}
		inWindow[s.ID] = true
		i := bucketIndex(gran, buckets, at)
		rep.Buckets[i].Sales++
		rep.Buckets[i].Revenue = rep.Buckets[i].Revenue.Add(s.TotalAmount)
		rep.Summary.TotalSales++
		rep.Summary.TotalRevenue = rep.Summary.TotalRevenue.Add(s.TotalAmount)
	}
	if rep.Summary.TotalSales > 0 {
		rep.Summary.AverageOrderValue = rep.Summary.TotalRevenue.Div(decimal.NewFromInt(int64(rep.Summary.TotalSales)))
	}

	rep.TopProducts = topProducts(items, inWindow)
	if len(rep.TopProducts) > 0 {
		rep.Summary.TopSellingProduct = rep.TopProducts[0].Name
	}
	return rep, nil
}

func bucketIndex(gran Granularity, buckets []Bucket, at time.Time) int {
	var key time.Time
	if gran == Daily {
		key = startOfDay(at)
	} else {
		key = startOfMonth(at)
	}
	// Buckets are ascending; find the last one starting at or before key.
	i := sort.Search(len(buckets), func(i int) bool { return buckets[i].Start.After(key) }) - 1
	if i < 0 {
		i = 0
	}
	return i
}

func topProducts(items []sales.Item, inWindow map[uuid.UUID]bool) []TopProduct {
	byProduct := map[uuid.UUID]*TopProduct{}
	for _, it := range items {
		if !inWindow[it.SaleID] {
			continue
		}
		tp, ok := byProduct[it.ProductID]
		if !ok {
			tp = &TopProduct{ProductID: it.ProductID, Name: it.ProductName, Revenue: decimal.Zero}
			byProduct[it.ProductID] = tp
		}
		tp.Quantity += it.Quantity
		tp.Revenue = tp.Revenue.Add(it.TotalPrice)
	}

	out := make([]TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topLimit {
		out = out[:topLimit]
	}
	return out
}
