package transaction

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"budgetcoach/internal/shared/validate"
)

// Transaction type flags. Amounts are signed as well, the flag is optional.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Domain errors
var (
	ErrNotFound     = errors.New("transaction not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidInput = errors.New("invalid transaction")
	ErrInvalidView  = errors.New("invalid sort or order")
)

// Transaction is a single ledger entry owned by one user.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"` // negative = expense, positive = income
	Type        string    `json:"type,omitempty"`
}

// IsIncome reports whether the entry counts as income. The explicit type
// flag wins; without it the sign of the amount decides.
func (t *Transaction) IsIncome() bool {
	switch t.Type {
	case TypeIncome:
		return true
	case TypeExpense:
		return false
	default:
		return t.Amount > 0
	}
}

// Kind returns "income" or "expense".
func (t *Transaction) Kind() string {
	if t.IsIncome() {
		return TypeIncome
	}
	return TypeExpense
}

// CreateParams contains the fields required to store a new transaction.
type CreateParams struct {
	UserID      string    `json:"userId" validate:"required"`
	Date        time.Time `json:"date"`
	Description string    `json:"description" validate:"required,max=500"`
	Category    string    `json:"category" validate:"required,max=100"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type" validate:"omitempty,oneof=income expense"`
}

// Validate checks required fields and normalizes the params in place.
// A zero Date is replaced with the current time.
func (p *CreateParams) Validate() error {
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)

	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", ErrInvalidInput)
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	return nil
}

// New builds a Transaction from validated params.
func New(id string, p CreateParams) *Transaction {
	return &Transaction{
		ID:          id,
		UserID:      p.UserID,
		Date:        p.Date,
		Description: p.Description,
		Category:    p.Category,
		Amount:      p.Amount,
		Type:        p.Type,
	}
}
