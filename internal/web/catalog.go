package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/shopdesk/internal/domain/customers"
	"github.com/Spok95/shopdesk/internal/domain/products"
)

func (h *Handler) listProducts(c *fiber.Ctx) error {
	ps, err := h.Products.List(c.UserContext(), userID(c))
	return list(c, h, ps, err)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	p, err := h.Products.Get(c.UserContext(), userID(c), id)
	return found(c, h, p, err)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	var in products.Input
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	p, err := h.Products.Create(c.UserContext(), userID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var in products.Input
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	p, err := h.Products.Update(c.UserContext(), userID(c), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Products.Delete(c.UserContext(), userID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) productCategories(c *fiber.Ctx) error {
	cs, err := h.Products.Categories(c.UserContext(), userID(c))
	return list(c, h, cs, err)
}

func (h *Handler) lowStockProducts(c *fiber.Ctx) error {
	ps, err := h.Products.LowStock(c.UserContext(), userID(c))
	return list(c, h, ps, err)
}

func (h *Handler) listCustomers(c *fiber.Ctx) error {
	cs, err := h.Customers.List(c.UserContext(), userID(c))
	return list(c, h, cs, err)
}

func (h *Handler) getCustomer(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	cu, err := h.Customers.Get(c.UserContext(), userID(c), id)
	return found(c, h, cu, err)
}

func (h *Handler) createCustomer(c *fiber.Ctx) error {
	var in customers.Input
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	cu, err := h.Customers.Create(c.UserContext(), userID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cu)
}

func (h *Handler) updateCustomer(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var in customers.Input
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	cu, err := h.Customers.Update(c.UserContext(), userID(c), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cu)
}

func (h *Handler) deleteCustomer(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Customers.Delete(c.UserContext(), userID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
