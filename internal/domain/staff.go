package domain

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidGender        = errors.New("invalid gender")
	ErrInvalidQualification = errors.New("invalid qualification code")
)

// Gender is the closed set of values accepted for a staff member's gender.
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderNotDeclared Gender = "not_declare"
)

// Genders lists genders in display order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderNotDeclared}
}

// ParseGender returns the Gender matching s.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", ErrInvalidGender
	}
	return g, nil
}

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNotDeclared:
		return true
	}
	return false
}

// Label is the Vietnamese label shown in the gender dropdown.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Nam"
	case GenderFemale:
		return "Nữ"
	case GenderNotDeclared:
		return "Không khai báo"
	}
	return string(g)
}

// Qualification is the academic title/degree of a staff member.
type Qualification string

const (
	QualificationUnknown            Qualification = "unknown"
	QualificationProfessor          Qualification = "Giáo sư"
	QualificationAssociateProfessor Qualification = "Phó giáo sư"
	QualificationDoctor             Qualification = "Tiến sĩ"
	QualificationMaster             Qualification = "Thạc sĩ"
)

// Qualifications lists qualification codes in display order.
func Qualifications() []Qualification {
	return []Qualification{
		QualificationUnknown,
		QualificationProfessor,
		QualificationAssociateProfessor,
		QualificationDoctor,
		QualificationMaster,
	}
}

// ParseQualification matches s against the known codes. Input is normalized
// to NFC and compared case-insensitively, so "Giáo Sư" and decomposed
// sequences resolve to QualificationProfessor.
func ParseQualification(s string) (Qualification, error) {
	normalized := norm.NFC.String(strings.TrimSpace(s))
	for _, q := range Qualifications() {
		if strings.EqualFold(normalized, string(q)) {
			return q, nil
		}
	}
	return "", ErrInvalidQualification
}

func (q Qualification) Valid() bool {
	for _, known := range Qualifications() {
		if q == known {
			return true
		}
	}
	return false
}

// Label is the text shown in the qualification dropdown.
func (q Qualification) Label() string {
	switch q {
	case QualificationUnknown:
		return "Chưa xác định"
	case QualificationProfessor:
		return "Giáo Sư"
	case QualificationAssociateProfessor:
		return "Phó Giáo Sư"
	case QualificationDoctor:
		return "Tiến Sĩ"
	case QualificationMaster:
		return "Thạc sĩ"
	}
	return string(q)
}

// StaffRecord is a staff member as exchanged with the staff API.
type StaffRecord struct {
	ID                 string        `json:"_id,omitempty"`
	MSCB               string        `json:"mscb"`
	Name               string        `json:"name"`
	Gender             Gender        `json:"gender"`
	IsPermanent        bool          `json:"isPermanent"`
	DateOfBirth        Date          `json:"dateOfBirth"`
	Phone              string        `json:"phone,omitempty"`
	MainSpecialization string        `json:"mainSpecialization,omitempty"`
	Unit               UnitRef       `json:"unit"`
	QualificationCode  Qualification `json:"qualificationCode"`
	StartDate          *Date         `json:"startDate,omitempty"`
}

// StaffPage is one page of the staff listing.
type StaffPage struct {
	Items []StaffRecord `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
