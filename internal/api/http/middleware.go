package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/api/dto"
	"github.com/spec-kit/staff-admin/internal/auth"
	"github.com/spec-kit/staff-admin/internal/observability"
	"github.com/spec-kit/staff-admin/internal/web"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

// RegisterMiddlewares attaches global middlewares. The request logger wraps
// the error handler so it observes the final status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, sessions *auth.SessionMiddleware, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, sessions))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, sessions *auth.SessionMiddleware) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = handleError(c, err, logger, metrics, sessions)
			}
		}()
		return c.Next()
	}
}

func handleError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics, sessions *auth.SessionMiddleware) error {
	domainErr := toDomainError(err)
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed",
			zap.String("request_id", observability.RequestID(c.UserContext())),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	if wantsJSON(c) {
		response := fiber.Map{"error": fiber.Map{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		}}
		if len(domainErr.Details) > 0 {
			response["error"].(fiber.Map)["details"] = domainErr.Details
		}
		return c.Status(domainErr.HTTPStatus).JSON(response)
	}

	// The staff API rejected the session token: the local session is useless.
	if domainErr.Code == apperrors.CodeUnauthorized {
		if sess, ok := auth.SessionFromContext(c); ok && sessions != nil {
			if endErr := sessions.End(c, sess); endErr != nil {
				logger.Warn("failed to end session", zap.Error(endErr))
			}
		}
		_ = web.SetFlash(c, &dto.Toast{
			Icon:            dto.ToastWarning,
			Title:           "Session expired",
			Text:            "Please sign in again.",
			ShowCloseButton: true,
		})
		return c.Redirect(auth.SignInPath, http.StatusSeeOther)
	}

	page := web.ErrorPage{
		Layout:  web.NewLayout(c, http.StatusText(domainErr.HTTPStatus)),
		Status:  domainErr.HTTPStatus,
		Code:    domainErr.Code,
		Message: domainErr.Message,
	}
	if renderErr := c.Status(domainErr.HTTPStatus).Render(web.PageError, page, web.MainLayout); renderErr != nil {
		logger.Error("failed to render error page", zap.Error(renderErr))
		return c.Status(domainErr.HTTPStatus).SendString(domainErr.Message)
	}
	return nil
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return apperrors.NewDomainError(apperrors.CodeNotFound, "page not found", fiberErr.Code, nil)
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return apperrors.NewDomainError(apperrors.CodeValidation, fiberErr.Message, fiberErr.Code, nil)
		case fiber.StatusMethodNotAllowed:
			return apperrors.NewDomainError("METHOD_NOT_ALLOWED", fiberErr.Message, fiberErr.Code, nil)
		case fiber.StatusRequestTimeout:
			return apperrors.NewDomainError(apperrors.CodeTimeout, fiberErr.Message, fiberErr.Code, nil)
		}
		if fiberErr.Code < 500 {
			return apperrors.NewDomainError("HTTP_"+strconv.Itoa(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
		}
	}
	return apperrors.ToDomainError(err)
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
