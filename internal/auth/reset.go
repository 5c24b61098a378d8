package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var ErrInvalidEmail = errors.New("auth: email is required")

// ResetClient asks the identity provider to email a password reset link.
type ResetClient struct {
	baseURL  string
	apiKey   string
	redirect string
	timeout  time.Duration
}

func NewResetClient(baseURL, apiKey, redirect string) *ResetClient {
	return &ResetClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		redirect: redirect,
		timeout:  10 * time.Second,
	}
}

func (c *ResetClient) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	a := fiber.Post(c.baseURL + "/recover")
	if c.redirect != "" {
		a.QueryString("redirect_to=" + url.QueryEscape(c.redirect))
	}
	if c.apiKey != "" {
		a.Set("apikey", c.apiKey)
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.apiKey)
	}
	a.JSON(fiber.Map{"email": email})
	a.Timeout(timeout)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("password reset: %w", errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("password reset: provider answered %d: %s", code, strings.TrimSpace(string(body)))
	}
	return nil
}
