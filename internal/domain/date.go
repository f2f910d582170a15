package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	// DateLayoutForm is the layout users type into date fields.
	DateLayoutForm = "01/02/2006"
	// DateLayoutISO is the wire layout sent to the staff API.
	DateLayoutISO = "2006-01-02"
)

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day without time of day or zone.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts MM/DD/YYYY, YYYY-MM-DD and RFC 3339 timestamps. Values
// that do not exist on the calendar (02/30/2000) are rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range []string{DateLayoutForm, DateLayoutISO} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t = t.UTC()
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	return Date{}, ErrInvalidDate
}

// FormValue renders the date for a form input; the zero Date renders empty.
func (d Date) FormValue() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayoutForm)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayoutISO)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayoutISO))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
