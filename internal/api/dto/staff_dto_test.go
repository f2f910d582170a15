package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-admin/internal/domain"
)

func TestStaffFormToRecord(t *testing.T) {
	form := StaffFormRequest{
		MSCB:              " CB001 ",
		Name:              "Nguyễn Văn A",
		Gender:            "female",
		IsPermanent:       true,
		DateOfBirth:       "05/17/1990",
		Unit:              "u1",
		QualificationCode: "Giáo Sư",
		StartDate:         "2015-09-01",
	}
	record, err := form.ToRecord("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", record.ID)
	assert.Equal(t, "CB001", record.MSCB)
	assert.Equal(t, domain.GenderFemale, record.Gender)
	assert.Equal(t, domain.QualificationProfessor, record.QualificationCode)
	assert.Equal(t, domain.NewDate(1990, 5, 17), record.DateOfBirth)
	require.NotNil(t, record.StartDate)
	assert.Equal(t, "09/01/2015", record.StartDate.FormValue())

	form.DateOfBirth = "31/31/1990"
	_, err = form.ToRecord("")
	assert.Error(t, err)
}

func TestStaffFormFromRecordPrefills(t *testing.T) {
	start := domain.NewDate(2015, 9, 1)
	form := StaffFormFromRecord(domain.StaffRecord{
		MSCB:        "CB001",
		Name:        "A",
		DateOfBirth: domain.NewDate(1990, 5, 17),
		Unit:        domain.UnitRef{ID: "u1", Name: "Khoa CNTT"},
		StartDate:   &start,
	})
	assert.Equal(t, "05/17/1990", form.DateOfBirth)
	assert.Equal(t, "09/01/2015", form.StartDate)
	assert.Equal(t, "u1", form.Unit)
	assert.Equal(t, string(domain.GenderNotDeclared), form.Gender)
	assert.Equal(t, string(domain.QualificationUnknown), form.QualificationCode)

	defaults := DefaultStaffForm()
	assert.Equal(t, "not_declare", defaults.Gender)
	assert.Equal(t, "unknown", defaults.QualificationCode)
	assert.False(t, defaults.IsPermanent)
}
