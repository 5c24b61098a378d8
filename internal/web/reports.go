package web

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/export"
	"github.com/Spok95/shopdesk/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) listStockTransactions(c *fiber.Ctx) error {
	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return h.fail(c, badRequest("invalid product_id"))
		}
		productID = &id
	}
	txs, err := h.Stock.List(c.UserContext(), userID(c), productID)
	return list(c, h, txs, err)
}

func (h *Handler) getReport(c *fiber.Ctx) error {
	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return h.fail(c, badRequest("days must be a number"))
		}
		days = n
	}
	now := h.Now()
	since, err := report.WindowStart(days, now, h.Location)
	if err != nil {
		return h.fail(c, err)
	}

	ctx := c.UserContext()
	uid := userID(c)
	ss, err := h.Sales.ListSince(ctx, uid, since)
	if err != nil {
		return h.fail(c, err)
	}
	items, err := h.Sales.ItemsSince(ctx, uid, since)
	if err != nil {
		return h.fail(c, err)
	}
	rep, err := report.Build(days, now, h.Location, ss, items)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rep)
}

func (h *Handler) getDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid := userID(c)
	ps, err := h.Products.List(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	cs, err := h.Customers.List(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	ss, err := h.Sales.List(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report.BuildDashboard(h.Now(), h.Location, ps, len(cs), ss))
}

func (h *Handler) exportTable(c *fiber.Ctx) error {
	kind, err := export.ParseKind(c.Params("kind"))
	if err != nil {
		return h.fail(c, err)
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return h.fail(c, err)
	}

	table, err := h.table(c, kind)
	if err != nil {
		return h.fail(c, err)
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatXLSX:
		err = export.WriteXLSX(&buf, string(kind), table)
		c.Set(fiber.HeaderContentType, xlsxContentType)
	default:
		err = export.WriteCSV(&buf, table)
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	}
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename(kind, format, h.Now().In(h.Location))+`"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) table(c *fiber.Ctx, kind export.Kind) (export.Table, error) {
	ctx := c.UserContext()
	uid := userID(c)
	switch kind {
	case export.KindProducts:
		ps, err := h.Products.List(ctx, uid)
		if err != nil {
			return export.Table{}, err
		}
		return export.Products(ps), nil
	case export.KindSales:
		ss, err := h.Sales.List(ctx, uid)
		if err != nil {
			return export.Table{}, err
		}
		return export.Sales(ss, h.Location), nil
	default:
		orders, err := h.Restocks.List(ctx, uid)
		if err != nil {
			return export.Table{}, err
		}
		return export.Restocks(orders, h.Location), nil
	}
}
