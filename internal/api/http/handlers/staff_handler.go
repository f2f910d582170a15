package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-admin/internal/api/dto"
	"github.com/spec-kit/staff-admin/internal/auth"
	"github.com/spec-kit/staff-admin/internal/backend"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/forms"
	"github.com/spec-kit/staff-admin/internal/web"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

const defaultPageSize = 20

// StaffHandler serves the staff listing and the staff create/update form.
type StaffHandler struct {
	forms    *forms.StaffForms
	staff    backend.StaffAPI
	pageSize int
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffForms *forms.StaffForms, staff backend.StaffAPI, pageSize int) *StaffHandler {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &StaffHandler{forms: staffForms, staff: staff, pageSize: pageSize}
}

// List handles GET /.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	result, err := h.staff.ListStaff(c.UserContext(), sess.Token, page, h.pageSize)
	if err != nil {
		return err
	}

	view := web.StaffListPage{
		Layout: web.NewLayout(c, "Giảng viên"),
		Page:   result,
	}
	if page > 1 {
		view.PrevPage = page - 1
	}
	if page*h.pageSize < result.Total {
		view.NextPage = page + 1
	}
	return c.Render(web.PageStaffList, view, web.MainLayout)
}

// New handles GET /staff/new.
func (h *StaffHandler) New(c *fiber.Ctx) error {
	return h.open(c, "")
}

// Edit handles GET /staff/:id/edit.
func (h *StaffHandler) Edit(c *fiber.Ctx) error {
	return h.open(c, c.Params("id"))
}

// Create handles POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	return h.submit(c, "")
}

// Update handles POST /staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	return h.submit(c, c.Params("id"))
}

func (h *StaffHandler) open(c *fiber.Ctx, id string) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	form, err := h.forms.Open(c.UserContext(), sess, id)
	if err != nil {
		return err
	}
	return h.render(c, form)
}

func (h *StaffHandler) submit(c *fiber.Ctx, id string) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.StaffFormRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form payload")
	}

	form, err := h.forms.Submit(c.UserContext(), sess, id, req)
	if err != nil {
		return err
	}
	if form.State() != forms.StateSucceeded {
		return h.render(c, form)
	}

	var flashErr error
	if err := form.Close(func() {
		flashErr = web.SetFlash(c, form.Toast)
	}); err != nil {
		return err
	}
	if flashErr != nil {
		return flashErr
	}
	return c.Redirect(auth.HomePath, http.StatusSeeOther)
}

func (h *StaffHandler) render(c *fiber.Ctx, form *forms.StaffForm) error {
	page := web.StaffFormPage{Form: form, Action: "/staff", RetryURL: "/staff/new"}
	if form.Mode() == forms.ModeUpdate {
		page.Action = "/staff/" + url.PathEscape(form.ID)
		page.RetryURL = page.Action + "/edit"
	}
	page.Layout = web.NewLayout(c, page.Heading()).WithToast(form.Toast)
	return c.Status(form.Status).Render(web.PageStaffForm, page, web.MainLayout)
}

func requireSession(c *fiber.Ctx) (*domain.Session, error) {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("sign-in required")
	}
	return sess, nil
}
