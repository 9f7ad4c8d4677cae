package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type QuestionType int

const (
	Text QuestionType = iota
	Select
	MultiplySelect
)

var questionTypeNames = [...]string{"text", "select", "multiply_select"}

func (t QuestionType) Valid() bool {
	return t >= Text && t <= MultiplySelect
}

// IsChoice reports whether answers to the question are option selections.
func (t QuestionType) IsChoice() bool {
	return t == Select || t == MultiplySelect
}

func (t QuestionType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("QuestionType(%d)", int(t))
	}
	return questionTypeNames[t]
}

func (t QuestionType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid question type %d", int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts both the type name and its numeric code.
func (t *QuestionType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		for i, n := range questionTypeNames {
			if strings.EqualFold(n, name) {
				*t = QuestionType(i)
				return nil
			}
		}
		return fmt.Errorf("unknown question type %q", name)
	}

	var code int
	if err := json.Unmarshal(b, &code); err != nil {
		return fmt.Errorf("question type must be a name or a number: %w", err)
	}
	if !QuestionType(code).Valid() {
		return fmt.Errorf("unknown question type %d", code)
	}
	*t = QuestionType(code)
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar day, rendered as YYYY-MM-DD in JSON and in the database.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan handles both the raw text and the time.Time the sqlite3 driver
// produces for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanText(s string) error {
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
