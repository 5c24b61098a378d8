package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/shopdesk/internal/domain/profiles"
)

func (h *Handler) getProfile(c *fiber.Ctx) error {
	id := identity(c)
	p, err := h.Profiles.Get(c.UserContext(), id.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	if p == nil {
		def := profiles.Default(id.UserID, id.Email)
		p = &def
	}
	return c.JSON(p)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	var in profiles.Input
	if err := bind(c, &in); err != nil {
		return h.fail(c, err)
	}
	p, err := h.Profiles.Upsert(c.UserContext(), userID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

// requestPasswordReset always answers 202 once the provider accepted the
// request so the response does not reveal whether the address is registered.
func (h *Handler) requestPasswordReset(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	if h.Reset == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "password reset is not configured"})
	}
	if err := h.Reset.RequestReset(c.UserContext(), body.Email); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}
