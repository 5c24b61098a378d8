// Package memstore keeps every aggregate in process memory. It honours the
// same contracts as the Postgres repositories, including all-or-nothing
// recording, and backs tests and storage.driver=memory.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/dialog"
	"github.com/Spok95/shopdesk/internal/domain/customers"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/profiles"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
)

type draftKey struct {
	userID uuid.UUID
	screen dialog.Screen
}

type DB struct {
	mu         sync.RWMutex
	last       time.Time
	guardStock bool

	products   map[uuid.UUID]products.Product
	customers  map[uuid.UUID]customers.Customer
	sales      map[uuid.UUID]sales.Sale
	saleItems  map[uuid.UUID][]sales.Item
	orders     map[uuid.UUID]restock.Order
	orderItems map[uuid.UUID][]restock.Item
	stock      []inventory.Transaction
	profiles   map[uuid.UUID]profiles.Profile
	drafts     map[draftKey]dialog.Draft
}

func New(allowNegativeStock bool) *DB {
	return &DB{
		guardStock: !allowNegativeStock,
		products:   map[uuid.UUID]products.Product{},
		customers:  map[uuid.UUID]customers.Customer{},
		sales:      map[uuid.UUID]sales.Sale{},
		saleItems:  map[uuid.UUID][]sales.Item{},
		orders:     map[uuid.UUID]restock.Order{},
		orderItems: map[uuid.UUID][]restock.Item{},
		profiles:   map[uuid.UUID]profiles.Profile{},
		drafts:     map[draftKey]dialog.Draft{},
	}
}

func (db *DB) Products() *Products                   { return &Products{db: db} }
func (db *DB) Customers() *Customers                 { return &Customers{db: db} }
func (db *DB) Sales() *Sales                         { return &Sales{db: db} }
func (db *DB) Restocks() *Restocks                   { return &Restocks{db: db} }
func (db *DB) StockTransactions() *StockTransactions { return &StockTransactions{db: db} }
func (db *DB) Profiles() *Profiles                   { return &Profiles{db: db} }
func (db *DB) Drafts() *Drafts                       { return &Drafts{db: db} }

// now returns a strictly increasing timestamp so newest-first ordering is stable.
// Callers hold db.mu.
func (db *DB) now() time.Time {
	t := time.Now().UTC()
	if !t.After(db.last) {
		t = db.last.Add(time.Microsecond)
	}
	db.last = t
	return t
}

var (
	_ products.Store  = (*Products)(nil)
	_ customers.Store = (*Customers)(nil)
	_ sales.Store     = (*Sales)(nil)
	_ restock.Store   = (*Restocks)(nil)
	_ inventory.Store = (*StockTransactions)(nil)
	_ profiles.Store  = (*Profiles)(nil)
	_ dialog.Store    = (*Drafts)(nil)
)
