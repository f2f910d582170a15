// Package backend defines the staff API consumed by the admin front-end.
package backend

import (
	"context"
	"errors"

	"github.com/spec-kit/staff-admin/internal/domain"
)

// ErrInvalidCredentials is returned by Login when the credentials are rejected.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthAPI authenticates operators.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// UnitAPI reads unit lookup data.
type UnitAPI interface {
	ListUnits(ctx context.Context, token string) ([]domain.Unit, error)
}

// StaffAPI reads and writes staff records.
type StaffAPI interface {
	GetStaff(ctx context.Context, token, id string) (*domain.StaffRecord, error)
	CreateStaff(ctx context.Context, token string, record domain.StaffRecord) error
	UpdateStaff(ctx context.Context, token string, record domain.StaffRecord) error
	ListStaff(ctx context.Context, token string, page, limit int) (*domain.StaffPage, error)
}

// Backend is everything the front-end needs from the staff API.
type Backend interface {
	AuthAPI
	UnitAPI
	StaffAPI
	Ping(ctx context.Context) error
}
