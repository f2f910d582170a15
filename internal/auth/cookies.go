package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-admin/internal/domain"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SetSessionCookie writes the session id cookie, expiring with the session.
func SetSessionCookie(c *fiber.Ctx, cfg CookieConfig, sess *domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session id cookie.
func ClearSessionCookie(c *fiber.Ctx, cfg CookieConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
