package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/session"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

const (
	sessionLocalsKey = "auth_session"

	// SignInPath is where unauthenticated browsers are sent.
	SignInPath = "/sign-in"
	// HomePath is the application root.
	HomePath = "/"
)

// SessionMiddleware loads the session referenced by the session cookie.
type SessionMiddleware struct {
	store   session.Store
	cookies CookieConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(store session.Store, cookies CookieConfig, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{store: store, cookies: cookies, logger: logger, now: time.Now}
}

// Handle enforces a live session for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	sess, err := m.lookup(c)
	if err != nil {
		return err
	}
	if sess == nil {
		return m.reject(c)
	}
	c.Locals(sessionLocalsKey, sess)
	return c.Next()
}

// RedirectIfAuthenticated sends signed-in browsers away from guest pages.
func (m *SessionMiddleware) RedirectIfAuthenticated(c *fiber.Ctx) error {
	sess, err := m.lookup(c)
	if err != nil {
		return err
	}
	if sess != nil {
		return c.Redirect(HomePath, http.StatusSeeOther)
	}
	return c.Next()
}

// End deletes the session and clears its cookie.
func (m *SessionMiddleware) End(c *fiber.Ctx, sess *domain.Session) error {
	ClearSessionCookie(c, m.cookies)
	if sess == nil {
		return nil
	}
	return m.store.Delete(c.UserContext(), sess.ID)
}

func (m *SessionMiddleware) lookup(c *fiber.Ctx) (*domain.Session, error) {
	sid := c.Cookies(m.cookies.Name)
	if sid == "" {
		return nil, nil
	}
	sess, err := m.store.Get(c.UserContext(), sid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			ClearSessionCookie(c, m.cookies)
			return nil, nil
		}
		m.logger.Error("session lookup failed", zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}
	if sess.Expired(m.now()) {
		_ = m.End(c, sess)
		return nil, nil
	}
	return sess, nil
}

func (m *SessionMiddleware) reject(c *fiber.Ctx) error {
	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return apperrors.NewUnauthorized("sign-in required")
	}
	return c.Redirect(SignInPath, http.StatusSeeOther)
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionLocalsKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*domain.Session)
	return sess, ok
}
