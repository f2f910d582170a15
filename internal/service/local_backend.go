package service

import (
	"context"

	"github.com/spec-kit/staff-admin/internal/backend"
	"github.com/spec-kit/staff-admin/internal/domain"
)

// LocalBackend serves the staff API from the embedded Postgres services.
// Tokens are verified on every call as the remote API would.
type LocalBackend struct {
	auth  *AuthService
	staff *StaffService
	ping  func(ctx context.Context) error
}

var _ backend.Backend = (*LocalBackend)(nil)

// NewLocalBackend wires the services; ping reports database health.
func NewLocalBackend(authService *AuthService, staffService *StaffService, ping func(ctx context.Context) error) *LocalBackend {
	return &LocalBackend{auth: authService, staff: staffService, ping: ping}
}

func (b *LocalBackend) Login(ctx context.Context, username, password string) (string, error) {
	token, _, err := b.auth.Login(ctx, username, password)
	return token, err
}

func (b *LocalBackend) ListUnits(ctx context.Context, token string) ([]domain.Unit, error) {
	if _, err := b.auth.Authenticate(token); err != nil {
		return nil, err
	}
	return b.staff.ListUnits(ctx)
}

func (b *LocalBackend) GetStaff(ctx context.Context, token, id string) (*domain.StaffRecord, error) {
	if _, err := b.auth.Authenticate(token); err != nil {
		return nil, err
	}
	return b.staff.GetStaff(ctx, id)
}

func (b *LocalBackend) CreateStaff(ctx context.Context, token string, record domain.StaffRecord) error {
	if _, err := b.auth.Authenticate(token); err != nil {
		return err
	}
	_, err := b.staff.CreateStaff(ctx, record)
	return err
}

func (b *LocalBackend) UpdateStaff(ctx context.Context, token string, record domain.StaffRecord) error {
	if _, err := b.auth.Authenticate(token); err != nil {
		return err
	}
	return b.staff.UpdateStaff(ctx, record)
}

func (b *LocalBackend) ListStaff(ctx context.Context, token string, page, limit int) (*domain.StaffPage, error) {
	if _, err := b.auth.Authenticate(token); err != nil {
		return nil, err
	}
	return b.staff.ListStaff(ctx, page, limit)
}

func (b *LocalBackend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}
