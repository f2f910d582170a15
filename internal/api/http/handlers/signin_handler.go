package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-admin/internal/api/dto"
	"github.com/spec-kit/staff-admin/internal/auth"
	"github.com/spec-kit/staff-admin/internal/forms"
	"github.com/spec-kit/staff-admin/internal/web"
)

// SignInHandler serves the sign-in screen and sign-out.
type SignInHandler struct {
	form    *forms.SignIn
	cookies auth.CookieConfig
}

// NewSignInHandler constructs handler.
func NewSignInHandler(form *forms.SignIn, cookies auth.CookieConfig) *SignInHandler {
	return &SignInHandler{form: form, cookies: cookies}
}

// Show handles GET /sign-in.
func (h *SignInHandler) Show(c *fiber.Ctx) error {
	return c.Render(web.PageSignIn, web.SignInPage{
		Layout: web.NewLayout(c, "Sign In"),
	}, web.MainLayout)
}

// Submit handles POST /sign-in.
func (h *SignInHandler) Submit(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form payload")
	}

	result, err := h.form.Submit(c.UserContext(), c.IP(), req)
	if err != nil {
		return err
	}
	if result.Session != nil {
		auth.SetSessionCookie(c, h.cookies, result.Session)
		return c.Redirect(auth.HomePath, http.StatusSeeOther)
	}

	return c.Status(result.Status).Render(web.PageSignIn, web.SignInPage{
		Layout:    web.NewLayout(c, "Sign In").WithToast(result.Toast),
		LoginName: result.Username,
		Errors:    result.Errors,
	}, web.MainLayout)
}

// SignOut handles POST /sign-out.
func (h *SignInHandler) SignOut(c *fiber.Ctx) error {
	sess, _ := auth.SessionFromContext(c)
	if err := h.form.SignOut(c.UserContext(), sess); err != nil {
		return err
	}
	auth.ClearSessionCookie(c, h.cookies)
	if err := web.SetFlash(c, &dto.Toast{Icon: dto.ToastInfo, Title: "Signed out", Timer: 2000}); err != nil {
		return err
	}
	return c.Redirect(auth.SignInPath, http.StatusSeeOther)
}
