package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/repository"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

const maxPageSize = 100

// StaffService manages units and staff records of the embedded backend.
type StaffService struct {
	units repository.UnitRepository
	staff repository.StaffRepository
}

// StaffDependencies encapsulates repositories required for staff management.
type StaffDependencies struct {
	UnitRepo  repository.UnitRepository
	StaffRepo repository.StaffRepository
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	return &StaffService{
		units: deps.UnitRepo,
		staff: deps.StaffRepo,
	}
}

// ListUnits returns every unit.
func (s *StaffService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return units, nil
}

// GetStaff loads a staff record.
func (s *StaffService) GetStaff(ctx context.Context, id string) (*domain.StaffRecord, error) {
	record, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

// CreateStaff stores a new record under a fresh id.
func (s *StaffService) CreateStaff(ctx context.Context, record domain.StaffRecord) (*domain.StaffRecord, error) {
	record.ID = ""
	if err := s.check(ctx, &record); err != nil {
		return nil, err
	}
	record.ID = uuid.NewString()
	if err := s.staff.Create(ctx, &record); err != nil {
		return nil, staffWriteError(err, &record)
	}
	return &record, nil
}

// UpdateStaff replaces every field of an existing record.
func (s *StaffService) UpdateStaff(ctx context.Context, record domain.StaffRecord) error {
	if record.ID == "" {
		return apperrors.NewValidationError("staff id is required", nil)
	}
	if err := s.check(ctx, &record); err != nil {
		return err
	}
	if err := s.staff.Update(ctx, &record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff", map[string]any{"id": record.ID})
		}
		return staffWriteError(err, &record)
	}
	return nil
}

// ListStaff returns one page of records, newest first. Pages are 1-based.
func (s *StaffService) ListStaff(ctx context.Context, page, limit int) (*domain.StaffPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > maxPageSize {
		limit = 20
	}
	items, total, err := s.staff.List(ctx, repository.StaffFilter{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &domain.StaffPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *StaffService) check(ctx context.Context, record *domain.StaffRecord) error {
	record.MSCB = strings.TrimSpace(record.MSCB)
	record.Name = strings.TrimSpace(record.Name)

	details := map[string]any{}
	if record.MSCB == "" {
		details["mscb"] = "required"
	}
	if record.Name == "" {
		details["name"] = "required"
	}
	if !record.Gender.Valid() {
		details["gender"] = "invalid"
	}
	if record.DateOfBirth.IsZero() {
		details["dateOfBirth"] = "required"
	}
	if !record.QualificationCode.Valid() {
		details["qualificationCode"] = "invalid"
	}
	if record.Unit.ID == "" {
		details["unit"] = "required"
	} else {
		exists, err := s.units.Exists(ctx, record.Unit.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !exists {
			details["unit"] = "unknown unit"
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid staff record", details)
	}

	taken, err := s.staff.MSCBTaken(ctx, record.MSCB, record.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if taken {
		return apperrors.NewConflict("mscb already exists", map[string]any{"mscb": record.MSCB})
	}
	return nil
}

// staffWriteError reports a unique violation that slipped past MSCBTaken
// (two concurrent writes) the same way check does.
func staffWriteError(err error, record *domain.StaffRecord) error {
	mapped := apperrors.MapError(err)
	if apperrors.HasCode(mapped, apperrors.CodeConflict) {
		return apperrors.NewConflict("mscb already exists", map[string]any{"mscb": record.MSCB})
	}
	return mapped
}
