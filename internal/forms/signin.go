package forms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/api/dto"
	"github.com/spec-kit/staff-admin/internal/backend"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/events"
	"github.com/spec-kit/staff-admin/internal/observability"
	"github.com/spec-kit/staff-admin/internal/session"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

// RateLimiter throttles sign-in attempts by key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// SignInResult is the outcome of one sign-in submission. Session is set only
// on success; otherwise Status, Errors and Toast describe what to render.
type SignInResult struct {
	Session  *domain.Session
	Username string
	Errors   FieldErrors
	Toast    *dto.Toast
	Status   int
}

// SignIn authenticates operators against the staff API and opens sessions.
type SignIn struct {
	auth       backend.AuthAPI
	store      session.Store
	limiter    RateLimiter
	validator  *Validator
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
}

// SignInDependencies groups the collaborators of SignIn.
type SignInDependencies struct {
	Auth       backend.AuthAPI
	Store      session.Store
	Limiter    RateLimiter
	Validator  *Validator
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	SessionTTL time.Duration
}

// NewSignIn builds the sign-in flow.
func NewSignIn(deps SignInDependencies) *SignIn {
	v := deps.Validator
	if v == nil {
		v = NewValidator()
	}
	return &SignIn{
		auth:       deps.Auth,
		store:      deps.Store,
		limiter:    deps.Limiter,
		validator:  v,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		ttl:        deps.SessionTTL,
		now:        time.Now,
	}
}

// Submit validates the credentials, calls the login endpoint and stores the
// returned token in a new session.
func (f *SignIn) Submit(ctx context.Context, clientIP string, req dto.SignInRequest) (*SignInResult, error) {
	req.Normalize()
	result := &SignInResult{Username: req.Username}

	if f.limiter != nil {
		allowed, err := f.limiter.Allow(ctx, clientIP)
		if err != nil {
			f.logger.Warn("sign-in rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			f.metrics.RecordSignIn("rate_limited")
			result.Status = http.StatusTooManyRequests
			result.Toast = &dto.Toast{
				Icon:            dto.ToastWarning,
				Title:           "Too many attempts",
				Text:            "Please wait a minute before trying again.",
				ShowCloseButton: true,
			}
			return result, nil
		}
	}

	fieldErrs, err := f.validator.Struct(req)
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		f.metrics.RecordSignIn("invalid")
		result.Status = http.StatusUnprocessableEntity
		result.Errors = fieldErrs
		return result, nil
	}

	token, err := f.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		reason := "invalid_credentials"
		status := http.StatusUnauthorized
		if !errors.Is(err, backend.ErrInvalidCredentials) {
			reason = "backend_error"
			status = apperrors.ToDomainError(err).HTTPStatus
			f.logger.Warn("login call failed", zap.String("username", req.Username), zap.Error(err))
		}
		return f.reject(ctx, result, clientIP, reason, status), nil
	}

	now := f.now()
	sess := session.New(token, req.Username, f.ttl, now)
	if sess.Expired(now) {
		f.logger.Warn("login returned an expired token", zap.String("username", req.Username))
		return f.reject(ctx, result, clientIP, "token_expired", http.StatusUnauthorized), nil
	}
	if err := f.store.Save(ctx, sess); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	f.metrics.RecordSignIn("success")
	f.publish(ctx, events.NewEvent(events.EventSignedIn, req.Username, nil))
	result.Session = sess
	result.Status = http.StatusSeeOther
	return result, nil
}

// reject fills result with the failure toast. Details never reach the page.
func (f *SignIn) reject(ctx context.Context, result *SignInResult, clientIP, reason string, status int) *SignInResult {
	f.metrics.RecordSignIn("failure")
	f.publish(ctx, events.NewEvent(events.EventSignInFailed, result.Username, events.SignInFailedPayload{
		ClientIP: clientIP,
		Reason:   reason,
	}))
	result.Status = status
	result.Toast = &dto.Toast{Icon: dto.ToastError, Title: "Invalid credentials"}
	return result
}

// SignOut destroys sess.
func (f *SignIn) SignOut(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	if err := f.store.Delete(ctx, sess.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	f.publish(ctx, events.NewEvent(events.EventSignedOut, sess.Username, nil))
	return nil
}

func (f *SignIn) publish(ctx context.Context, event events.Event) {
	if f.dispatcher == nil {
		return
	}
	event.RequestID = observability.RequestID(ctx)
	if err := f.dispatcher.Publish(ctx, event); err != nil {
		f.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
