// Package recorder turns sale and restock requests into stored documents:
// it validates input, prices lines, computes totals, numbers the document and
// hands everything to the store as one atomic write.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/domain/customers"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
	"github.com/Spok95/shopdesk/internal/infra/metrics"
	"github.com/Spok95/shopdesk/internal/infra/notify"
)

type ProductReader interface {
	GetMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]products.Product, error)
}

type CustomerReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*customers.Customer, error)
}

type Recorder struct {
	products  ProductReader
	customers CustomerReader
	sales     sales.Store
	restocks  restock.Store

	notifier notify.Notifier
	metrics  *metrics.Recorder
	log      *slog.Logger
	now      func() time.Time
	suffix   func() string
}

type Option func(*Recorder)

func WithNotifier(n notify.Notifier) Option { return func(r *Recorder) { r.notifier = n } }

func WithMetrics(m *metrics.Recorder) Option { return func(r *Recorder) { r.metrics = m } }

// WithClock sets the time source for sale/order dates and document numbers.
func WithClock(now func() time.Time) Option { return func(r *Recorder) { r.now = now } }

// WithSuffix replaces the random part of document numbers.
func WithSuffix(fn func() string) Option { return func(r *Recorder) { r.suffix = fn } }

func New(p ProductReader, c CustomerReader, s sales.Store, rs restock.Store, log *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		products:  p,
		customers: c,
		sales:     s,
		restocks:  rs,
		notifier:  notify.Noop{},
		log:       log,
		now:       time.Now,
		suffix:    randomSuffix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// loadProducts fetches every referenced product once, keyed by id.
func (r *Recorder) loadProducts(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]products.Product, error) {
	uniq := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	list, err := r.products.GetMany(ctx, userID, uniq)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]products.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	for _, id := range uniq {
		if _, ok := out[id]; !ok {
			return nil, invalid(ErrUnknownProduct, "%s", id)
		}
	}
	return out, nil
}

func (r *Recorder) alertLowStock(ctx context.Context, adjusted []inventory.Adjusted) {
	var low []notify.LowStock
	for _, a := range adjusted {
		if a.IsLow() {
			low = append(low, notify.LowStock{Name: a.Name, SKU: a.SKU, Quantity: a.After, Threshold: a.Threshold})
		}
	}
	if len(low) == 0 {
		return
	}
	if err := r.notifier.LowStock(ctx, low); err != nil {
		r.log.Warn("low stock notification failed", "err", err, "items", len(low))
	}
}

func (r *Recorder) reject(op string, err error) error {
	r.metrics.Rejected(op)
	r.log.Debug("request rejected", "op", op, "err", err)
	return err
}
