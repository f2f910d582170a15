package web

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-admin/internal/api/dto"
)

// FlashCookie carries one toast across a redirect.
const FlashCookie = "flash"

// SetFlash stores toast for the next page the browser loads.
func SetFlash(c *fiber.Ctx, toast *dto.Toast) error {
	if toast == nil {
		return nil
	}
	raw, err := json.Marshal(toast)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// PopFlash returns and clears the pending toast. Malformed cookies are
// dropped silently.
func PopFlash(c *fiber.Ctx) *dto.Toast {
	value := c.Cookies(FlashCookie)
	if value == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(1, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	raw, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var toast dto.Toast
	if err := json.Unmarshal(raw, &toast); err != nil || toast.Title == "" {
		return nil
	}
	return &toast
}
