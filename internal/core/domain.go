package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Transaction type labels as stored by the backend.
const (
	TypeIncome  TransactionType = "PEMASUKAN"
	TypeExpense TransactionType = "PENGELUARAN"
)

// Kind names used on the create payload; the backend maps them to the
// stored labels above.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a financial record as returned by the backend.
	// Instances are never mutated after fetch; an edit is modeled as
	// delete-then-recreate.
	Transaction struct {
		ID            string          `json:"transactionId"`
		Type          TransactionType `json:"transactionType"`
		Amount        Money           `json:"amount"`
		Description   string          `json:"description"`
		Date          Date            `json:"date"`
		Category      string          `json:"category"`
		Source        string          `json:"source,omitempty"`
		PaymentMethod string          `json:"paymentMethod,omitempty"`
		Recurring     bool            `json:"isRecurring,omitempty"`
	}

	// TransactionInput is the create payload posted to the backend.
	TransactionInput struct {
		Type          string `json:"type"` // KindIncome or KindExpense
		Amount        Money  `json:"amount"`
		Description   string `json:"description"`
		Date          Date   `json:"date"`
		Category      string `json:"category"`
		Source        string `json:"source,omitempty"`
		PaymentMethod string `json:"paymentMethod,omitempty"`
		Recurring     bool   `json:"recurring,omitempty"`
		UserID        string `json:"userId,omitempty"`
	}

	// Balance is the backend-owned aggregate, fetched read-only.
	Balance struct {
		TotalBalance   Money `json:"totalBalance"`
		TotalIncome    Money `json:"totalIncome"`
		TotalExpense   Money `json:"totalExpense"`
		InitialBalance Money `json:"initialBalance"`
	}

	// Category is a (key, display name) pair. The key is a stable
	// enum-like name (e.g. GAJI), the display name is what the UI shows.
	Category struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	}

	// CategorySet holds the two disjoint category catalogs. Fetched once
	// per session and treated as immutable afterwards.
	CategorySet struct {
		Income  []Category `json:"income"`
		Expense []Category `json:"expense"`
	}

	User struct {
		ID             string `json:"userId,omitempty"`
		Username       string `json:"username"`
		Email          string `json:"email"`
		InitialBalance Money  `json:"initialBalance,omitempty"`
		CreatedAt      string `json:"createdAt,omitempty"`
	}

	// MonthlyReport is computed by the backend for a "YYYY-MM" month key.
	MonthlyReport struct {
		Month             string           `json:"month,omitempty"`
		TotalIncome       Money            `json:"totalIncome"`
		TotalExpense      Money            `json:"totalExpense"`
		Balance           Money            `json:"balance"`
		IncomeByCategory  map[string]Money `json:"incomeByCategory"`
		ExpenseByCategory map[string]Money `json:"expenseByCategory"`
		Summary           string           `json:"summary"`
	}

	// RegisterInput carries the registration form fields.
	RegisterInput struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		InitialBalance Money  `json:"initialBalance"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month key")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptySource        = errors.New("empty income source")
	ErrEmptyPaymentMethod = errors.New("empty payment method")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptyPassword      = errors.New("empty password")
	ErrInvalidEmail       = errors.New("invalid email address")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsIncome reports whether the label marks an income record.
func (t TransactionType) IsIncome() bool { return t == TypeIncome }

// Sign returns the display sign for amounts of this type.
func (t TransactionType) Sign() string {
	if t.IsIncome() {
		return "+"
	}
	return "-"
}

// KindOf maps a stored type label back to the create-payload kind name.
func (t TransactionType) KindOf() string {
	if t.IsIncome() {
		return KindIncome
	}
	return KindExpense
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MonthKey returns the "YYYY-MM" key of the month this date falls in.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON writes the date in the backend's YYYY-MM-DD wire format.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Some backend responses carry a full timestamp; keep the calendar day.
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{Time: t}
			return nil
		}
	}
	return ErrInvalidDate
}

// ValidateMonth checks a "YYYY-MM" month key.
func ValidateMonth(s string) error {
	if _, err := time.Parse("2006-01", s); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if in.Type != KindIncome && in.Type != KindExpense {
		return ErrInvalidType
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if in.Type == KindIncome && strings.TrimSpace(in.Source) == "" {
		return ErrEmptySource
	}
	if in.Type == KindExpense && strings.TrimSpace(in.PaymentMethod) == "" {
		return ErrEmptyPaymentMethod
	}
	return nil
}

func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return ErrEmptyUsername
	}
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if in.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidateEmail applies the same lax shape check the frontend always did.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

// InputOf rebuilds the create payload that would produce this
// transaction again. Used to restore the original when the recreate leg
// of an edit fails.
func (tx Transaction) InputOf() TransactionInput {
	return TransactionInput{
		Type:          tx.Type.KindOf(),
		Amount:        tx.Amount,
		Description:   tx.Description,
		Date:          tx.Date,
		Category:      tx.Category,
		Source:        tx.Source,
		PaymentMethod: tx.PaymentMethod,
		Recurring:     tx.Recurring,
	}
}

// DisplayName resolves a category key to its display name, falling back
// to the raw key when the set does not know it.
func (cs CategorySet) DisplayName(key string) string {
	for _, c := range cs.Income {
		if c.Name == key || c.DisplayName == key {
			return c.DisplayName
		}
	}
	for _, c := range cs.Expense {
		if c.Name == key || c.DisplayName == key {
			return c.DisplayName
		}
	}
	return key
}

// ForKind returns the catalog for one side of the selector.
func (cs CategorySet) ForKind(kind string) []Category {
	if kind == KindIncome {
		return cs.Income
	}
	return cs.Expense
}

// IsEmpty reports whether the set carries no categories at all.
func (cs CategorySet) IsEmpty() bool {
	return len(cs.Income) == 0 && len(cs.Expense) == 0
}
