package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Expense classification buckets.
	Need   ExpenseType = "need"
	Desire ExpenseType = "desire"
	Lack   ExpenseType = "lack"
)

const (
	ExpenseCategory CategoryKind = "expense"
	IncomeCategory  CategoryKind = "income"
)

type (
	// ExpenseType is the psychological bucket an expense falls into.
	ExpenseType string

	// CategoryKind distinguishes expense categories from income categories.
	CategoryKind string

	// Date is a calendar day. The time-of-day component is always midnight UTC;
	// it marshals as YYYY-MM-DD to match the backend's date columns.
	Date struct {
		time.Time
	}

	Expense struct {
		ID        string      `json:"id,omitempty"`
		UserID    string      `json:"user_id"`
		Amount    int64       `json:"amount"`
		Category  string      `json:"category"`
		Type      ExpenseType `json:"type"`
		Emotions  []string    `json:"emotions"`
		Reason    string      `json:"reason,omitempty"`
		Date      Date        `json:"date"`
		CreatedAt time.Time   `json:"created_at,omitempty"`
	}

	Income struct {
		ID        string    `json:"id,omitempty"`
		UserID    string    `json:"user_id"`
		Amount    int64     `json:"amount"`
		Source    string    `json:"source"`
		Memo      string    `json:"memo,omitempty"`
		Date      Date      `json:"date"`
		CreatedAt time.Time `json:"created_at,omitempty"`
	}

	Category struct {
		ID         string       `json:"id,omitempty"`
		UserID     string       `json:"user_id"`
		Name       string       `json:"name"`
		Kind       CategoryKind `json:"type"`
		Icon       string       `json:"icon,omitempty"`
		Color      string       `json:"color,omitempty"`
		OrderIndex int          `json:"order_index"`
		IsDefault  bool         `json:"is_default"`
		CreatedAt  time.Time    `json:"created_at,omitempty"`
	}

	// MonthlyBudget is a per-month override of the profile default.
	// Absence of a row means "use the default".
	MonthlyBudget struct {
		UserID      string `json:"user_id"`
		Month       Period `json:"month"`
		TotalBudget int64  `json:"total_budget"`
	}

	// CategoryMonthlyBudget caps a single category for a single month.
	// Absence means "no cap set", which is distinct from a zero cap.
	CategoryMonthlyBudget struct {
		UserID     string `json:"user_id"`
		CategoryID string `json:"category_id"`
		Month      Period `json:"month"`
		Budget     int64  `json:"budget"`
	}

	Profile struct {
		ID            string `json:"id"`
		Name          string `json:"name,omitempty"`
		MonthlyBudget *int64 `json:"monthly_budget,omitempty"`
		SignupSource  string `json:"signup_source,omitempty"`
		SignupReason  string `json:"signup_reason,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid expense type")
	ErrInvalidKind   = errors.New("invalid category kind")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptySource   = errors.New("empty source")
	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = errors.New("name too long (max 50 characters)")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
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
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Backend date columns come back as plain dates, timestamps with time zones
	// show up on created_at style columns only.
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*d = DateOf(t.UTC())
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (t ExpenseType) Validate() error {
	switch t {
	case Need, Desire, Lack:
		return nil
	default:
		return ErrInvalidType
	}
}

func (k CategoryKind) Validate() error {
	switch k {
	case ExpenseCategory, IncomeCategory:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Type.Validate(); err != nil {
		return err
	}
	return nil
}

// GenerateID mints a new UUID if the expense does not have one yet.
func (e *Expense) GenerateID() {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if i.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	return nil
}

func (i *Income) GenerateID() {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 50 {
		return ErrNameTooLong
	}
	return c.Kind.Validate()
}

func (c *Category) GenerateID() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
}

// DefaultBudget returns the profile's default monthly budget, 0 when unset.
func (p Profile) DefaultBudget() int64 {
	if p.MonthlyBudget == nil {
		return 0
	}
	return *p.MonthlyBudget
}
