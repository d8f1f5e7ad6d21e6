package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Label values that accept a free-text replacement.
const (
	LabelOther = "Other"
	LabelMisc  = "Misc"
)

type (
	// Kind distinguishes the two record collections.
	Kind string

	// Record is a stored income or expense, already normalized at the store boundary.
	Record struct {
		ID          string
		OwnerID     string
		Kind        Kind
		Amount      decimal.Decimal
		OccurredAt  Instant
		RecordedAt  time.Time
		Label       string
		Description string
	}

	// NewRecord is what a user submits; the store assigns ID and RecordedAt.
	NewRecord struct {
		OwnerID     string
		Kind        Kind
		Amount      decimal.Decimal
		OccurredAt  time.Time
		Label       string
		Description string
	}
)

var (
	ErrInvalidKind     = errors.New("invalid record kind")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyOwner      = errors.New("empty owner")
	ErrEmptyLabel      = errors.New("empty label")
	ErrUnknownLabel    = errors.New("unknown label")
	ErrDescriptionLong = errors.New("description too long (max 200 characters)")
	ErrOwnerMismatch   = errors.New("owner does not match the authenticated user")
)

var (
	incomeLabels = []string{"Salary", "Freelance", "Business", "Investments", "Rental", "Gifts", LabelOther}

	expenseLabels = []string{
		"Food", "Transport", "Housing", "Utilities", "Entertainment",
		"Healthcare", "Shopping", "Education", "Travel", LabelOther, LabelMisc,
	}
)

// Kinds lists both kinds in display order.
func Kinds() []Kind { return []Kind{Income, Expense} }

// ParseKind accepts the kind names plus the collection names ("incomes", "expenses").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes":
		return Income, nil
	case "expense", "expenses":
		return Expense, nil
	}
	return "", ErrInvalidKind
}

func (k Kind) Valid() bool { return k == Income || k == Expense }

// Collection is the document collection name holding records of this kind.
func (k Kind) Collection() string { return string(k) + "s" }

// Title is the capitalized kind, as used in export rows.
func (k Kind) Title() string {
	switch k {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	return string(k)
}

// Labels returns the fixed label enumeration for the kind.
func (k Kind) Labels() []string {
	switch k {
	case Income:
		return append([]string(nil), incomeLabels...)
	case Expense:
		return append([]string(nil), expenseLabels...)
	}
	return nil
}

// ResolveLabel maps a submitted category plus optional free text to the stored label.
// "Other" and "Misc" are replaced by the free text when present.
func ResolveLabel(k Kind, category, custom string) (string, error) {
	category = strings.TrimSpace(category)
	custom = strings.TrimSpace(custom)
	if category == "" {
		return "", ErrEmptyLabel
	}
	for _, l := range k.Labels() {
		if !strings.EqualFold(l, category) {
			continue
		}
		if (l == LabelOther || l == LabelMisc) && custom != "" {
			return custom, nil
		}
		return l, nil
	}
	return "", ErrUnknownLabel
}

// Signed returns the amount with expenses negated.
func (r Record) Signed() decimal.Decimal {
	if r.Kind == Expense {
		return r.Amount.Neg()
	}
	return r.Amount
}

func (n NewRecord) Validate() error {
	if !n.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(n.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if !n.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if n.OccurredAt.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(n.Label) == "" {
		return ErrEmptyLabel
	}
	if len(n.Description) > 200 {
		return ErrDescriptionLong
	}
	return nil
}
