package forms

import (
	"context"
	"sync"

	"github.com/spec-kit/staff-admin/internal/backend"
	"github.com/spec-kit/staff-admin/internal/domain"
)

type fakeBackend struct {
	mu sync.Mutex

	loginErr error
	// loginToken overrides the token returned for valid credentials.
	loginToken string
	units      []domain.Unit
	unitsErr   error
	records    map[string]domain.StaffRecord
	getErr     error
	submitErr  error
	// hang makes ListUnits wait for ctx to end.
	hang bool

	created []domain.StaffRecord
	updated []domain.StaffRecord
	calls   int
}

var _ backend.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		units:   []domain.Unit{{ID: "u1", Name: "Khoa CNTT"}, {ID: "u2", Name: "Khoa Vật lý"}},
		records: map[string]domain.StaffRecord{},
	}
}

func (f *fakeBackend) Login(_ context.Context, username, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	if username == "admin" && password == "secret" {
		if f.loginToken != "" {
			return f.loginToken, nil
		}
		return "tok-admin", nil
	}
	return "", backend.ErrInvalidCredentials
}

func (f *fakeBackend) ListUnits(ctx context.Context, _ string) ([]domain.Unit, error) {
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.units, f.unitsErr
}

func (f *fakeBackend) GetStaff(_ context.Context, _, id string) (*domain.StaffRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	record := f.records[id]
	return &record, nil
}

func (f *fakeBackend) CreateStaff(_ context.Context, _ string, record domain.StaffRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.submitErr != nil {
		return f.submitErr
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeBackend) UpdateStaff(_ context.Context, _ string, record domain.StaffRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.submitErr != nil {
		return f.submitErr
	}
	f.updated = append(f.updated, record)
	return nil
}

func (f *fakeBackend) ListStaff(context.Context, string, int, int) (*domain.StaffPage, error) {
	return &domain.StaffPage{}, nil
}

func (f *fakeBackend) Ping(context.Context) error { return nil }

type fakeLimiter struct {
	remaining int
}

func (l *fakeLimiter) Allow(context.Context, string) (bool, error) {
	if l.remaining <= 0 {
		return false, nil
	}
	l.remaining--
	return true, nil
}
