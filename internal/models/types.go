package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Date is a calendar date without a time component. It marshals as
// "YYYY-MM-DD" and maps to a SQL DATE column.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Format(dateLayout), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = Date{Time: v}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	// Postgres DATE comes back as time.Time, SQLite keeps the raw
	// string (sometimes with a timestamp suffix).
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time without a date. It marshals as
// "HH:MM:SS" and maps to a SQL TIME column.
type TimeOfDay struct {
	time.Time
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Accept "HH:MM" too, the frontend sends both.
		t, err = time.Parse("15:04", s)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
	}
	return TimeOfDay{Time: t}, nil
}

func (t TimeOfDay) String() string {
	return t.Format(timeLayout)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(timeLayout) + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.Format(timeLayout), nil
}

func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = TimeOfDay{Time: v}
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case nil:
		*t = TimeOfDay{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	if len(s) > len(timeLayout) {
		s = s[:len(timeLayout)]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
