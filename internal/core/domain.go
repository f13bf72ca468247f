package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
	Saving  TransactionType = "saving"
)

type (
	TransactionType string

	// Date is a calendar date with no time component. The zero value means
	// "not set" (used for optional end dates).
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Source      string          `json:"source,omitempty"` // income only
		Date        Date            `json:"date"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	UpcomingExpense struct {
		ID            string    `json:"id"`
		Title         string    `json:"title"`
		Amount        Money     `json:"amount"`
		Category      string    `json:"category"`
		DueDate       Date      `json:"dueDate"`
		Notes         string    `json:"notes,omitempty"`
		Paid          bool      `json:"paid"`
		FixedSourceID string    `json:"fixedSourceId,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
	}

	FixedExpense struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Amount    Money     `json:"amount"`
		Category  string    `json:"category"`
		DueDay    int       `json:"dueDay"` // day of month, 1-31
		StartDate Date      `json:"startDate"`
		EndDate   Date      `json:"endDate,omitempty"`
		Notes     string    `json:"notes,omitempty"`
		Active    bool      `json:"active"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDueDay   = errors.New("invalid due day")
	ErrEmptyTitle      = errors.New("empty title")
	ErrNotFound        = errors.New("not found")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. The empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// InMonth reports whether the date falls in the given calendar month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

// DaysUntil returns the number of whole days from d to other,
// negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as "YYYY-MM-DD"; the zero date encodes as "".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", "", or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysInMonth returns the number of days in the given calendar month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts. Stored amounts are never
// negative; negative values only appear in derived figures such as balances.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense, Saving:
		return nil
	default:
		return ErrInvalidType
	}
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !ValidCategory(t.Type, t.Category) {
		return ErrInvalidCategory
	}
	if utf8.RuneCountInString(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (u UpcomingExpense) Validate() error {
	if len(strings.TrimSpace(u.Title)) == 0 {
		return ErrEmptyTitle
	}
	if err := u.DueDate.Validate(); err != nil {
		return err
	}
	if err := u.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (f FixedExpense) Validate() error {
	if len(strings.TrimSpace(f.Title)) == 0 {
		return ErrEmptyTitle
	}
	if err := f.Amount.Validate(); err != nil {
		return err
	}
	if f.DueDay < 1 || f.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if err := f.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate.Time) {
		return errors.New("end date must not be before start date")
	}
	return nil
}
