package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-admin/internal/api/dto"
	"github.com/spec-kit/staff-admin/internal/auth"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/forms"
	"github.com/spec-kit/staff-admin/internal/observability"
)

// Page names.
const (
	PageSignIn    = "pages/sign_in"
	PageStaffForm = "pages/staff_form"
	PageStaffList = "pages/staff_list"
	PageError     = "pages/error"
)

// Layout is the data every page shares with the main layout.
type Layout struct {
	Title     string
	AppName   string
	Username  string
	RequestID string
	Toast     *dto.Toast
}

// SignInPage binds pages/sign_in.
type SignInPage struct {
	Layout
	LoginName string
	Errors    forms.FieldErrors
}

// StaffFormPage binds pages/staff_form.
type StaffFormPage struct {
	Layout
	Form   *forms.StaffForm
	Action string
	// RetryURL reloads the form when the unit list failed to load.
	RetryURL string
}

// Heading is the form title for the current mode.
func (p StaffFormPage) Heading() string {
	if p.Form != nil && p.Form.Mode() == forms.ModeUpdate {
		return "Cập nhật giảng viên"
	}
	return "Thêm giảng viên"
}

// SubmitLabel is the text of the submit button.
func (p StaffFormPage) SubmitLabel() string {
	if p.Form != nil && p.Form.Mode() == forms.ModeUpdate {
		return "Cập nhật"
	}
	return "Tạo mới"
}

// StaffListPage binds pages/staff_list.
type StaffListPage struct {
	Layout
	Page     *domain.StaffPage
	PrevPage int
	NextPage int
}

// ErrorPage binds pages/error.
type ErrorPage struct {
	Layout
	Status  int
	Code    string
	Message string
}

// NewLayout builds the shared layout data for the current request and
// consumes any pending flash toast.
func NewLayout(c *fiber.Ctx, title string) Layout {
	layout := Layout{
		Title:     title,
		AppName:   c.App().Config().AppName,
		RequestID: observability.RequestID(c.UserContext()),
		Toast:     PopFlash(c),
	}
	if layout.AppName == "" {
		layout.AppName = "Staff Admin"
	}
	if sess, ok := auth.SessionFromContext(c); ok {
		layout.Username = sess.Username
	}
	return layout
}

// WithToast replaces the flash toast with toast when one is given.
func (l Layout) WithToast(toast *dto.Toast) Layout {
	if toast != nil {
		l.Toast = toast
	}
	return l
}
