package dto

import (
	"fmt"
	"strings"

	"github.com/spec-kit/staff-admin/internal/domain"
)

// SignInRequest payload of the sign-in form.
type SignInRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Normalize trims the username; passwords are taken verbatim.
func (r *SignInRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// StaffFormRequest payload of the staff create/update form. Dates travel as
// the text typed into the form.
type StaffFormRequest struct {
	MSCB               string `form:"mscb" validate:"required"`
	Name               string `form:"name" validate:"required"`
	Gender             string `form:"gender" validate:"required,gender"`
	IsPermanent        bool   `form:"isPermanent"`
	DateOfBirth        string `form:"dateOfBirth" validate:"required,formdate"`
	Phone              string `form:"phone"`
	MainSpecialization string `form:"mainSpecialization"`
	Unit               string `form:"unit" validate:"required"`
	QualificationCode  string `form:"qualificationCode" validate:"required,qualification"`
	StartDate          string `form:"startDate" validate:"omitempty,formdate"`
	Nonce              string `form:"nonce"`
}

// DefaultStaffForm is the create-mode starting point.
func DefaultStaffForm() StaffFormRequest {
	return StaffFormRequest{
		Gender:            string(domain.GenderNotDeclared),
		IsPermanent:       false,
		QualificationCode: string(domain.QualificationUnknown),
	}
}

// Normalize trims free-text fields.
func (r *StaffFormRequest) Normalize() {
	r.MSCB = strings.TrimSpace(r.MSCB)
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.Phone = strings.TrimSpace(r.Phone)
	r.MainSpecialization = strings.TrimSpace(r.MainSpecialization)
	r.Unit = strings.TrimSpace(r.Unit)
	r.QualificationCode = strings.TrimSpace(r.QualificationCode)
	r.StartDate = strings.TrimSpace(r.StartDate)
}

// ToRecord converts a validated form into the API record.
func (r StaffFormRequest) ToRecord(id string) (domain.StaffRecord, error) {
	gender, err := domain.ParseGender(r.Gender)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("gender: %w", err)
	}
	qualification, err := domain.ParseQualification(r.QualificationCode)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("qualificationCode: %w", err)
	}
	dob, err := domain.ParseDate(r.DateOfBirth)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("dateOfBirth: %w", err)
	}

	record := domain.StaffRecord{
		ID:                 id,
		MSCB:               strings.TrimSpace(r.MSCB),
		Name:               strings.TrimSpace(r.Name),
		Gender:             gender,
		IsPermanent:        r.IsPermanent,
		DateOfBirth:        dob,
		Phone:              strings.TrimSpace(r.Phone),
		MainSpecialization: strings.TrimSpace(r.MainSpecialization),
		Unit:               domain.UnitRef{ID: strings.TrimSpace(r.Unit)},
		QualificationCode:  qualification,
	}
	if s := strings.TrimSpace(r.StartDate); s != "" {
		start, err := domain.ParseDate(s)
		if err != nil {
			return domain.StaffRecord{}, fmt.Errorf("startDate: %w", err)
		}
		record.StartDate = &start
	}
	return record, nil
}

// StaffFormFromRecord pre-fills the form from a fetched record.
func StaffFormFromRecord(record domain.StaffRecord) StaffFormRequest {
	form := StaffFormRequest{
		MSCB:               record.MSCB,
		Name:               record.Name,
		Gender:             string(record.Gender),
		IsPermanent:        record.IsPermanent,
		DateOfBirth:        record.DateOfBirth.FormValue(),
		Phone:              record.Phone,
		MainSpecialization: record.MainSpecialization,
		Unit:               record.Unit.ID,
		QualificationCode:  string(record.QualificationCode),
	}
	if form.Gender == "" {
		form.Gender = string(domain.GenderNotDeclared)
	}
	if form.QualificationCode == "" {
		form.QualificationCode = string(domain.QualificationUnknown)
	}
	if record.StartDate != nil {
		form.StartDate = record.StartDate.FormValue()
	}
	return form
}
