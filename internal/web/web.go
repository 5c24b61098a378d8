// Package web exposes the application as a JSON API on fiber.
package web

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/auth"
	"github.com/Spok95/shopdesk/internal/dialog"
	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/customers"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/profiles"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
	"github.com/Spok95/shopdesk/internal/export"
	"github.com/Spok95/shopdesk/internal/recorder"
	"github.com/Spok95/shopdesk/internal/report"
)

type PasswordResetter interface {
	RequestReset(ctx context.Context, email string) error
}

type Deps struct {
	Products  products.Store
	Customers customers.Store
	Sales     sales.Store
	Restocks  restock.Store
	Stock     inventory.Store
	Profiles  profiles.Store
	Drafts    dialog.Store
	Recorder  *recorder.Recorder
	Reset     PasswordResetter
	Verifier  *auth.Verifier
	Location  *time.Location
	Now       func() time.Time
	Log       *slog.Logger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handler{Deps: d}
}

func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/auth/password-reset", h.requestPasswordReset)

	api.Use(auth.Middleware(h.Verifier))

	api.Get("/products", h.listProducts)
	api.Post("/products", h.createProduct)
	api.Get("/products/categories", h.productCategories)
	api.Get("/products/low-stock", h.lowStockProducts)
	api.Get("/products/:id", h.getProduct)
	api.Put("/products/:id", h.updateProduct)
	api.Delete("/products/:id", h.deleteProduct)

	api.Get("/customers", h.listCustomers)
	api.Post("/customers", h.createCustomer)
	api.Get("/customers/:id", h.getCustomer)
	api.Put("/customers/:id", h.updateCustomer)
	api.Delete("/customers/:id", h.deleteCustomer)

	api.Get("/sales", h.listSales)
	api.Post("/sales", h.recordSale)
	api.Get("/sales/:id", h.getSale)
	api.Get("/sales/:id/items", h.saleItems)
	api.Put("/sales/:id", h.updateSale)
	api.Delete("/sales/:id", h.deleteSale)

	api.Get("/restocks", h.listRestocks)
	api.Post("/restocks", h.createRestock)
	api.Get("/restocks/:id", h.getRestock)
	api.Get("/restocks/:id/items", h.restockItems)
	api.Post("/restocks/:id/receive", h.receiveRestock)
	api.Post("/restocks/:id/cancel", h.cancelRestock)
	api.Delete("/restocks/:id", h.deleteRestock)

	api.Get("/stock-transactions", h.listStockTransactions)
	api.Get("/reports", h.getReport)
	api.Get("/dashboard", h.getDashboard)
	api.Get("/exports/:kind", h.exportTable)

	api.Get("/profile", h.getProfile)
	api.Put("/profile", h.updateProfile)

	api.Get("/drafts/:screen", h.getDraft)
	api.Put("/drafts/:screen", h.updateDraft)
	api.Post("/drafts/:screen/submit", h.submitDraft)
	api.Delete("/drafts/:screen", h.discardDraft)
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return &recorder.ValidationError{Err: errBadRequest, Details: msg}
}

// StatusOf maps an error to the HTTP status it is reported with.
func StatusOf(err error) int {
	var ve *recorder.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, products.ErrInvalid),
		errors.Is(err, customers.ErrInvalid),
		errors.Is(err, profiles.ErrInvalid),
		errors.Is(err, report.ErrUnsupportedLookback),
		errors.Is(err, export.ErrUnknownKind),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, auth.ErrInvalidEmail):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, restock.ErrNotPending),
		errors.Is(err, dialog.ErrInvalidTransition),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrService),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrInUse):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	code := StatusOf(err)
	if code == fiber.StatusInternalServerError {
		h.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// ErrorHandler renders errors that escape handlers (fiber's own 404/405
// included) in the same JSON shape.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Error("unhandled error", "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func identity(c *fiber.Ctx) auth.Identity {
	id, _ := auth.FromCtx(c)
	return id
}

func userID(c *fiber.Ctx) uuid.UUID { return identity(c).UserID }

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, badRequest("invalid id")
	}
	return id, nil
}

func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return badRequest("malformed body: " + err.Error())
	}
	return nil
}

// found answers 404 for a nil row.
func found[T any](c *fiber.Ctx, h *Handler, v *T, err error) error {
	if err != nil {
		return h.fail(c, err)
	}
	if v == nil {
		return h.fail(c, domain.ErrNotFound)
	}
	return c.JSON(v)
}

// list keeps empty collections as [] in JSON.
func list[T any](c *fiber.Ctx, h *Handler, v []T, err error) error {
	if err != nil {
		return h.fail(c, err)
	}
	if v == nil {
		v = []T{}
	}
	return c.JSON(v)
}
