package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Recorder holds the business counters. All methods are nil-safe so callers
// that run without metrics can pass a nil *Recorder.
type Recorder struct {
	salesRecorded     prometheus.Counter
	saleRevenue       prometheus.Counter
	restocksCreated   prometheus.Counter
	restocksReceived  prometheus.Counter
	stockMovements    *prometheus.CounterVec
	validationRejects *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		salesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopdesk",
			Name:      "sales_recorded_total",
			Help:      "Sales committed by the recorder.",
		}),
		saleRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopdesk",
			Name:      "sales_revenue_total",
			Help:      "Sum of total_amount of committed sales.",
		}),
		restocksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopdesk",
			Name:      "restock_orders_created_total",
			Help:      "Restock orders placed.",
		}),
		restocksReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopdesk",
			Name:      "restock_orders_received_total",
			Help:      "Restock orders marked as received.",
		}),
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopdesk",
			Name:      "stock_movements_total",
			Help:      "Stock transactions appended, by type.",
		}, []string{"type"}),
		validationRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopdesk",
			Name:      "validation_rejects_total",
			Help:      "Recording requests rejected by validation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(
		r.salesRecorded,
		r.saleRevenue,
		r.restocksCreated,
		r.restocksReceived,
		r.stockMovements,
		r.validationRejects,
	)
	return r
}

func (r *Recorder) SaleRecorded(total decimal.Decimal) {
	if r == nil {
		return
	}
	r.salesRecorded.Inc()
	f, _ := total.Float64()
	if f > 0 {
		r.saleRevenue.Add(f)
	}
}

func (r *Recorder) RestockCreated() {
	if r == nil {
		return
	}
	r.restocksCreated.Inc()
}

func (r *Recorder) RestockReceived() {
	if r == nil {
		return
	}
	r.restocksReceived.Inc()
}

func (r *Recorder) StockMoved(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.stockMovements.WithLabelValues(kind).Add(float64(n))
}

func (r *Recorder) Rejected(operation string) {
	if r == nil {
		return
	}
	r.validationRejects.WithLabelValues(operation).Inc()
}
