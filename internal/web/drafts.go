package web

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/shopdesk/internal/dialog"
	"github.com/Spok95/shopdesk/internal/recorder"
)

func screen(c *fiber.Ctx) (dialog.Screen, error) {
	s := dialog.Screen(c.Params("screen"))
	if !s.Valid() {
		return "", badRequest("screen must be sale or restock")
	}
	return s, nil
}

func (h *Handler) getDraft(c *fiber.Ctx) error {
	s, err := screen(c)
	if err != nil {
		return h.fail(c, err)
	}
	d, err := h.Drafts.Get(c.UserContext(), userID(c), s)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// updateDraft moves a draft along a user intent. Outcome intents are reserved
// for submitDraft.
func (h *Handler) updateDraft(c *fiber.Ctx) error {
	s, err := screen(c)
	if err != nil {
		return h.fail(c, err)
	}
	var body struct {
		Intent  dialog.Intent  `json:"intent"`
		Payload dialog.Payload `json:"payload"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	switch body.Intent {
	case dialog.IntentSubmit, dialog.IntentSucceed, dialog.IntentFail:
		return h.fail(c, badRequest("intent "+string(body.Intent)+" is not accepted here"))
	}

	ctx := c.UserContext()
	uid := userID(c)
	d, err := h.Drafts.Get(ctx, uid, s)
	if err != nil {
		return h.fail(c, err)
	}
	next, err := d.Apply(body.Intent, body.Payload, "")
	if err != nil {
		return h.fail(c, err)
	}
	if next.State == dialog.StateIdle {
		err = h.Drafts.Reset(ctx, uid, s)
	} else {
		err = h.Drafts.Set(ctx, next)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(next)
}

// submitDraft records the document held in the draft. Success clears the
// draft; failure keeps the payload and stores the error message on it.
func (h *Handler) submitDraft(c *fiber.Ctx) error {
	s, err := screen(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.UserContext()
	uid := userID(c)
	d, err := h.Drafts.Get(ctx, uid, s)
	if err != nil {
		return h.fail(c, err)
	}
	sub, err := d.Apply(dialog.IntentSubmit, nil, "")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Drafts.Set(ctx, sub); err != nil {
		return h.fail(c, err)
	}

	doc, recErr := h.submit(c, s, sub.Payload)
	if recErr == nil {
		if err := h.Drafts.Reset(ctx, uid, s); err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}

	failed, err := sub.Apply(dialog.IntentFail, nil, recErr.Error())
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Drafts.Set(ctx, failed); err != nil {
		return h.fail(c, err)
	}
	code := StatusOf(recErr)
	if code == fiber.StatusInternalServerError {
		h.Log.Error("draft submit failed", "screen", s, "err", recErr)
	}
	return c.Status(code).JSON(fiber.Map{"error": recErr.Error(), "draft": failed})
}

func (h *Handler) submit(c *fiber.Ctx, s dialog.Screen, p dialog.Payload) (any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	ctx := c.UserContext()
	switch s {
	case dialog.ScreenSale:
		var in recorder.SaleInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, badRequest("draft payload is not a sale: " + err.Error())
		}
		return h.Recorder.RecordSale(ctx, userID(c), in)
	default:
		var in recorder.RestockInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, badRequest("draft payload is not a restock order: " + err.Error())
		}
		return h.Recorder.CreateRestock(ctx, userID(c), in)
	}
}

// discardDraft drops the draft whatever its state, including one left in
// submitting by an interrupted request.
func (h *Handler) discardDraft(c *fiber.Ctx) error {
	s, err := screen(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Drafts.Reset(c.UserContext(), userID(c), s); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
