package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/recorder"
)

func (h *Handler) listSales(c *fiber.Ctx) error {
	ss, err := h.Sales.List(c.UserContext(), userID(c))
	return list(c, h, ss, err)
}

func (h *Handler) getSale(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.Sales.Get(c.UserContext(), userID(c), id)
	return found(c, h, s, err)
}

func (h *Handler) saleItems(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.UserContext()
	sale, err := h.Sales.Get(ctx, userID(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	if sale == nil {
		return h.fail(c, domain.ErrNotFound)
	}
	items, err := h.Sales.Items(ctx, userID(c), id)
	return list(c, h, items, err)
}

func (h *Handler) recordSale(c *fiber.Ctx) error {
	var in recorder.SaleInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	s, err := h.Recorder.RecordSale(c.UserContext(), userID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (h *Handler) updateSale(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var in recorder.SaleUpdate
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	s, err := h.Recorder.UpdateSale(c.UserContext(), userID(c), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(s)
}

func (h *Handler) deleteSale(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Sales.Delete(c.UserContext(), userID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) listRestocks(c *fiber.Ctx) error {
	orders, err := h.Restocks.List(c.UserContext(), userID(c))
	return list(c, h, orders, err)
}

func (h *Handler) getRestock(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	o, err := h.Restocks.Get(c.UserContext(), userID(c), id)
	return found(c, h, o, err)
}

func (h *Handler) restockItems(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.UserContext()
	order, err := h.Restocks.Get(ctx, userID(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	if order == nil {
		return h.fail(c, domain.ErrNotFound)
	}
	items, err := h.Restocks.Items(ctx, userID(c), id)
	return list(c, h, items, err)
}

func (h *Handler) createRestock(c *fiber.Ctx) error {
	var in recorder.RestockInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	o, err := h.Recorder.CreateRestock(c.UserContext(), userID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) receiveRestock(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	o, err := h.Recorder.ReceiveRestock(c.UserContext(), userID(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) cancelRestock(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	o, err := h.Recorder.CancelRestock(c.UserContext(), userID(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) deleteRestock(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Restocks.Delete(c.UserContext(), userID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
