package forms

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/api/dto"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/events"
	"github.com/spec-kit/staff-admin/internal/session"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

var testSession = &domain.Session{ID: "sid", Token: "tok-admin", Username: "admin"}

func newTestStaffForms(b *fakeBackend, d events.Dispatcher) *StaffForms {
	return NewStaffForms(StaffFormDependencies{
		Units:      b,
		Staff:      b,
		Store:      session.NewMemoryStore(),
		Dispatcher: d,
		Logger:     zap.NewNop(),
		NonceTTL:   time.Minute,
	})
}

func TestOpenCreateModeUsesDefaults(t *testing.T) {
	form, err := newTestStaffForms(newFakeBackend(), nil).Open(context.Background(), testSession, "")
	require.NoError(t, err)

	assert.Equal(t, ModeCreate, form.Mode())
	assert.Equal(t, StateReady, form.State())
	assert.Equal(t, "not_declare", form.Values.Gender)
	assert.False(t, form.Values.IsPermanent)
	assert.Equal(t, "unknown", form.Values.QualificationCode)
	assert.Len(t, form.Units, 2)
	assert.NotEmpty(t, form.Nonce)
	assert.Nil(t, form.Record)
}

func TestOpenUpdateModePrefills(t *testing.T) {
	b := newFakeBackend()
	b.records["s1"] = domain.StaffRecord{
		ID:                "s1",
		MSCB:              "CB001",
		Name:              "Nguyễn Văn A",
		Gender:            domain.GenderMale,
		DateOfBirth:       domain.NewDate(1990, 5, 17),
		Unit:              domain.UnitRef{ID: "u2", Name: "Khoa Vật lý"},
		QualificationCode: domain.QualificationMaster,
	}

	form, err := newTestStaffForms(b, nil).Open(context.Background(), testSession, "s1")
	require.NoError(t, err)
	assert.Equal(t, ModeUpdate, form.Mode())
	assert.Equal(t, "CB001", form.Values.MSCB)
	assert.Equal(t, "05/17/1990", form.Values.DateOfBirth)
	assert.Equal(t, "u2", form.Values.Unit)
	assert.Equal(t, "Thạc sĩ", form.Values.QualificationCode)
}

func TestOpenUnitFailureIsReportedNotFatal(t *testing.T) {
	b := newFakeBackend()
	b.unitsErr = apperrors.NewUpstreamError(http.StatusInternalServerError, "boom")

	form, err := newTestStaffForms(b, nil).Open(context.Background(), testSession, "")
	require.NoError(t, err)
	assert.False(t, form.UnitsAvailable())
	assert.Empty(t, form.Units)
	assert.Equal(t, StateReady, form.State())
}

func TestOpenStopsAtRequestDeadline(t *testing.T) {
	b := newFakeBackend()
	b.hang = true

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := newTestStaffForms(b, nil).Open(ctx, testSession, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestOpenRecordErrors(t *testing.T) {
	b := newFakeBackend()
	b.getErr = apperrors.NewUpstreamError(http.StatusNotFound, "Staff not found")
	_, err := newTestStaffForms(b, nil).Open(context.Background(), testSession, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	b.getErr = apperrors.NewUpstreamError(http.StatusUnauthorized, "jwt expired")
	_, err = newTestStaffForms(b, nil).Open(context.Background(), testSession, "s1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	b.getErr = apperrors.NewUpstreamError(http.StatusInternalServerError, "db down")
	form, err := newTestStaffForms(b, nil).Open(context.Background(), testSession, "s1")
	require.NoError(t, err)
	require.NotNil(t, form.Toast)
	assert.Equal(t, dto.ToastError, form.Toast.Icon)
	assert.Equal(t, "db down", form.Toast.Text)
	assert.Len(t, form.Units, 2)
}

func TestSubmitCreateSuccess(t *testing.T) {
	b := newFakeBackend()
	d := events.NewInMemoryDispatcher()
	var got events.Event
	d.Subscribe(events.EventStaffCreated, func(_ context.Context, e events.Event) error {
		got = e
		return nil
	})

	form, err := newTestStaffForms(b, d).Submit(context.Background(), testSession, "", validForm())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, form.State())
	assert.Equal(t, http.StatusSeeOther, form.Status)
	assert.Equal(t, &dto.Toast{Icon: dto.ToastSuccess, Title: "Create User Successfully", Timer: 2000}, form.Toast)

	require.Len(t, b.created, 1)
	assert.Equal(t, "CB001", b.created[0].MSCB)
	assert.Equal(t, domain.QualificationDoctor, b.created[0].QualificationCode)
	assert.Equal(t, "admin", got.Username)

	closed := 0
	require.NoError(t, form.Close(func() { closed++ }))
	require.NoError(t, form.Close(func() { closed++ }))
	assert.Equal(t, 1, closed)
	assert.Equal(t, StateClosed, form.State())
}

func TestSubmitUpdateFailureKeepsFormOpen(t *testing.T) {
	b := newFakeBackend()
	b.submitErr = apperrors.NewUpstreamError(http.StatusBadRequest, "mscb already exists")
	forms := newTestStaffForms(b, nil)

	values := validForm()
	form, err := forms.Submit(context.Background(), testSession, "s1", values)
	require.NoError(t, err)
	assert.Equal(t, StateReady, form.State())
	assert.Equal(t, http.StatusBadRequest, form.Status)
	assert.Equal(t, &dto.Toast{Icon: dto.ToastError, Title: "Update User Failed", Text: "mscb already exists", Timer: 2000}, form.Toast)
	assert.Equal(t, "CB001", form.Values.MSCB)
	assert.NotEqual(t, values.Nonce, form.Nonce)

	// the released nonce can be submitted again
	b.submitErr = nil
	form, err = forms.Submit(context.Background(), testSession, "s1", values)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, form.State())
	assert.Equal(t, "Update User Successfully", form.Toast.Title)
	require.Len(t, b.updated, 1)
	assert.Equal(t, "s1", b.updated[0].ID)
}

func TestSubmitRejectsDuplicateNonce(t *testing.T) {
	b := newFakeBackend()
	forms := newTestStaffForms(b, nil)
	ctx := context.Background()

	_, err := forms.Submit(ctx, testSession, "", validForm())
	require.NoError(t, err)

	form, err := forms.Submit(ctx, testSession, "", validForm())
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, form.Status)
	assert.Equal(t, "Form already submitted", form.Toast.Title)
	assert.Equal(t, 1, b.calls)

	values := validForm()
	values.Nonce = ""
	form, err = forms.Submit(ctx, testSession, "", values)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, form.Status)
	assert.Equal(t, 1, b.calls)
}

func TestSubmitValidationBlocksCall(t *testing.T) {
	b := newFakeBackend()
	values := validForm()
	values.MSCB = ""
	values.DateOfBirth = "02/30/1990"
	values.Unit = "u-unknown"

	form, err := newTestStaffForms(b, nil).Submit(context.Background(), testSession, "", values)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, form.Status)
	assert.Equal(t, "mscb is required", form.Errors["mscb"])
	assert.Equal(t, invalidDateMessage, form.Errors["dateOfBirth"])
	assert.Equal(t, "Khoa là bắt buộc", form.Errors["unit"])
	assert.Zero(t, b.calls)
}

func TestSubmitBlockedWithoutUnits(t *testing.T) {
	b := newFakeBackend()
	b.unitsErr = errors.New("units down")

	form, err := newTestStaffForms(b, nil).Submit(context.Background(), testSession, "", validForm())
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, form.Status)
	assert.Zero(t, b.calls)
}

func TestSubmitUnauthorizedIsReturned(t *testing.T) {
	b := newFakeBackend()
	b.submitErr = apperrors.NewUnauthorized("jwt expired")

	_, err := newTestStaffForms(b, nil).Submit(context.Background(), testSession, "", validForm())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestFormStateMachine(t *testing.T) {
	form := newStaffForm("")
	assert.ErrorIs(t, form.transition(StateSubmitting), ErrIllegalTransition)
	require.NoError(t, form.transition(StateReady))
	require.NoError(t, form.transition(StateSubmitting))
	assert.ErrorIs(t, form.transition(StateSubmitting), ErrSubmitInFlight)
	assert.ErrorIs(t, form.Close(nil), ErrIllegalTransition)
	require.NoError(t, form.transition(StateFailed))
	require.NoError(t, form.transition(StateReady))

	cancelled := false
	require.NoError(t, form.Close(func() { cancelled = true }))
	assert.True(t, cancelled)
	require.NoError(t, form.Close(func() { t.Fatal("onClose ran twice") }))
	assert.ErrorIs(t, form.transition(StateReady), ErrIllegalTransition)
	assert.Equal(t, "closed", form.State().String())
}
