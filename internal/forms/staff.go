package forms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/staff-admin/internal/api/dto"
	"github.com/spec-kit/staff-admin/internal/backend"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/events"
	"github.com/spec-kit/staff-admin/internal/observability"
	"github.com/spec-kit/staff-admin/internal/session"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

// Mode tells whether a form creates a new record or updates an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

const toastTimer = 2000

// StaffForm is one instance of the staff create/update form. A form is owned
// by the request that opened or submitted it and is not safe for concurrent
// use; repeated POSTs of the same rendered form are rejected by its nonce.
type StaffForm struct {
	ID     string
	Values dto.StaffFormRequest
	Units  []domain.Unit
	// UnitsErr is set when the unit list could not be loaded; submission is
	// blocked until a reload succeeds.
	UnitsErr error
	Record   *domain.StaffRecord
	Errors   FieldErrors
	Toast    *dto.Toast
	Nonce    string
	// Status is the HTTP status the form should be rendered with.
	Status int

	state FormState
}

func newStaffForm(id string) *StaffForm {
	return &StaffForm{
		ID:     id,
		Values: dto.DefaultStaffForm(),
		Status: http.StatusOK,
		state:  StateInitializing,
	}
}

// Mode reports create when the form has no identifier.
func (f *StaffForm) Mode() Mode {
	if f.ID == "" {
		return ModeCreate
	}
	return ModeUpdate
}

// State returns the current lifecycle state.
func (f *StaffForm) State() FormState {
	return f.state
}

// UnitsAvailable reports whether the unit dropdown could be populated.
func (f *StaffForm) UnitsAvailable() bool {
	return f.UnitsErr == nil
}

func (f *StaffForm) transition(to FormState) error {
	if f.state == StateSubmitting && to == StateSubmitting {
		return ErrSubmitInFlight
	}
	if !canTransition(f.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.state, to)
	}
	f.state = to
	return nil
}

// Close moves the form to Closed and runs onClose. onClose runs at most once
// per form no matter how often Close is called.
func (f *StaffForm) Close(onClose func()) error {
	switch f.state {
	case StateClosed:
		return nil
	case StateReady, StateSucceeded:
		f.state = StateClosed
	default:
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.state, StateClosed)
	}
	if onClose != nil {
		onClose()
	}
	return nil
}

func (f *StaffForm) unitKnown(id string) bool {
	for _, u := range f.Units {
		if u.ID == id {
			return true
		}
	}
	return false
}

// StaffForms opens and submits staff forms against the staff API.
type StaffForms struct {
	units      backend.UnitAPI
	staff      backend.StaffAPI
	store      session.Store
	validator  *Validator
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	nonceTTL   time.Duration
}

// StaffFormDependencies groups the collaborators of StaffForms.
type StaffFormDependencies struct {
	Units      backend.UnitAPI
	Staff      backend.StaffAPI
	Store      session.Store
	Validator  *Validator
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	NonceTTL   time.Duration
}

// NewStaffForms builds the staff form flow.
func NewStaffForms(deps StaffFormDependencies) *StaffForms {
	v := deps.Validator
	if v == nil {
		v = NewValidator()
	}
	ttl := deps.NonceTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &StaffForms{
		units:      deps.Units,
		staff:      deps.Staff,
		store:      deps.Store,
		validator:  v,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		nonceTTL:   ttl,
	}
}

// Open loads the unit list and, in update mode, the record. Both fetches run
// concurrently and are bounded by ctx, which carries the request timeout. An
// expired token or a missing record is returned as an error; any other
// failure is reported on the form.
func (s *StaffForms) Open(ctx context.Context, sess *domain.Session, id string) (*StaffForm, error) {
	form := newStaffForm(id)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.loadUnits(gctx, sess, form)
	})
	if id != "" {
		g.Go(func() error {
			record, err := s.staff.GetStaff(gctx, sess.Token, id)
			if err != nil {
				if apperrors.HasCode(err, apperrors.CodeUnauthorized) || apperrors.HasCode(err, apperrors.CodeNotFound) {
					return err
				}
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("failed to load staff record", zap.String("staff_id", id), zap.Error(err))
				form.Toast = &dto.Toast{
					Icon:            dto.ToastError,
					Title:           "Failed to load staff record",
					Text:            apperrors.ToDomainError(err).Message,
					ShowCloseButton: true,
				}
				form.Status = apperrors.ToDomainError(err).HTTPStatus
				return nil
			}
			form.Record = record
			form.Values = dto.StaffFormFromRecord(*record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	form.Nonce = uuid.NewString()
	if err := form.transition(StateReady); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *StaffForms) loadUnits(ctx context.Context, sess *domain.Session, form *StaffForm) error {
	units, err := s.units.ListUnits(ctx, sess.Token)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Error("failed to load units", zap.Error(err))
		form.UnitsErr = err
		form.Units = []domain.Unit{}
		return nil
	}
	form.Units = units
	return nil
}

// Submit validates values and calls create or update depending on id. The
// returned form is Succeeded on success and Ready, carrying errors and a fresh
// nonce, on failure.
func (s *StaffForms) Submit(ctx context.Context, sess *domain.Session, id string, values dto.StaffFormRequest) (*StaffForm, error) {
	values.Normalize()
	form := newStaffForm(id)
	form.Values = values

	if err := s.loadUnits(ctx, sess, form); err != nil {
		return nil, err
	}
	if err := form.transition(StateReady); err != nil {
		return nil, err
	}
	if err := form.transition(StateSubmitting); err != nil {
		return nil, err
	}
	mode := form.Mode()

	if values.Nonce == "" {
		return s.fail(ctx, form, http.StatusBadRequest, &dto.Toast{
			Icon:            dto.ToastWarning,
			Title:           "Form expired",
			Text:            "Please review the form and submit again.",
			ShowCloseButton: true,
		}, false)
	}
	claimed, err := s.store.ClaimNonce(ctx, values.Nonce, s.nonceTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !claimed {
		s.metrics.RecordSubmission(string(mode), "duplicate")
		return s.fail(ctx, form, http.StatusConflict, &dto.Toast{
			Icon:            dto.ToastWarning,
			Title:           "Form already submitted",
			ShowCloseButton: true,
		}, false)
	}

	fieldErrs, err := s.validator.Struct(values)
	if err != nil {
		_ = s.store.ReleaseNonce(ctx, values.Nonce)
		return nil, err
	}
	if values.Unit != "" && form.UnitsAvailable() && !form.unitKnown(values.Unit) {
		fieldErrs = fieldErrs.Merge(FieldErrors{"unit": Message("unit", "oneof")})
	}
	if !form.UnitsAvailable() {
		s.metrics.RecordSubmission(string(mode), "units_unavailable")
		return s.fail(ctx, form, http.StatusServiceUnavailable, &dto.Toast{
			Icon:            dto.ToastError,
			Title:           failureTitle(mode),
			Text:            "Danh sách khoa không tải được, vui lòng thử lại.",
			ShowCloseButton: true,
		}, true)
	}
	if len(fieldErrs) > 0 {
		form.Errors = fieldErrs
		s.metrics.RecordSubmission(string(mode), "invalid")
		return s.fail(ctx, form, http.StatusUnprocessableEntity, nil, true)
	}

	record, err := values.ToRecord(id)
	if err != nil {
		_ = s.store.ReleaseNonce(ctx, values.Nonce)
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	if mode == ModeCreate {
		err = s.staff.CreateStaff(ctx, sess.Token, record)
	} else {
		err = s.staff.UpdateStaff(ctx, sess.Token, record)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			_ = s.store.ReleaseNonce(context.WithoutCancel(ctx), values.Nonce)
			return nil, err
		}
		if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			_ = s.store.ReleaseNonce(ctx, values.Nonce)
			return nil, err
		}
		s.metrics.RecordSubmission(string(mode), "error")
		de := apperrors.ToDomainError(err)
		s.logger.Warn("staff submission failed",
			zap.String("mode", string(mode)),
			zap.String("staff_id", id),
			zap.String("code", de.Code),
			zap.Error(err))
		return s.fail(ctx, form, de.HTTPStatus, &dto.Toast{
			Icon:  dto.ToastError,
			Title: failureTitle(mode),
			Text:  de.Message,
			Timer: toastTimer,
		}, true)
	}

	if err := form.transition(StateSucceeded); err != nil {
		return nil, err
	}
	s.metrics.RecordSubmission(string(mode), "success")
	form.Record = &record
	form.Status = http.StatusSeeOther
	form.Toast = &dto.Toast{
		Icon:            dto.ToastSuccess,
		Title:           successTitle(mode),
		Timer:           toastTimer,
		ShowCloseButton: false,
	}

	eventType := events.EventStaffCreated
	if mode == ModeUpdate {
		eventType = events.EventStaffUpdated
	}
	s.publish(ctx, events.NewEvent(eventType, sess.Username, events.StaffChangedPayload{
		StaffID: record.ID,
		MSCB:    record.MSCB,
		Name:    record.Name,
		UnitID:  record.Unit.ID,
	}))
	return form, nil
}

// fail moves a submitting form back to Ready with a fresh nonce. The claimed
// nonce is released when release is set so the same page can be resubmitted.
func (s *StaffForms) fail(ctx context.Context, form *StaffForm, status int, toast *dto.Toast, release bool) (*StaffForm, error) {
	if release {
		if err := s.store.ReleaseNonce(ctx, form.Values.Nonce); err != nil {
			s.logger.Warn("failed to release form nonce", zap.Error(err))
		}
	}
	if err := form.transition(StateFailed); err != nil {
		return nil, err
	}
	if err := form.transition(StateReady); err != nil {
		return nil, err
	}
	form.Status = status
	form.Toast = toast
	form.Nonce = uuid.NewString()
	form.Values.Nonce = form.Nonce
	return form, nil
}

func (s *StaffForms) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.RequestID = observability.RequestID(ctx)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func successTitle(mode Mode) string {
	if mode == ModeUpdate {
		return "Update User Successfully"
	}
	return "Create User Successfully"
}

func failureTitle(mode Mode) string {
	if mode == ModeUpdate {
		return "Update User Failed"
	}
	return "Create User Failed"
}
