package budget

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"budgetcoach/internal/shared/validate"
)

// Domain errors
var (
	ErrNotFound      = errors.New("budget not found")
	ErrForbidden     = errors.New("access forbidden")
	ErrInvalidInput  = errors.New("invalid budget")
	ErrNegativeSpent = errors.New("spent cannot be negative")
)

// Budget is a spending allocation for one category.
// Spent is changed only by explicit user actions.
type Budget struct {
	ID       string  `json:"id"`
	UserID   string  `json:"userId"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Spent    float64 `json:"spent"`
	Color    string  `json:"color,omitempty"`
}

// IsOver reports whether spent exceeds the allocation.
func (b *Budget) IsOver() bool {
	return b.Spent > b.Amount
}

// CreateParams contains the fields required to store a new budget.
type CreateParams struct {
	UserID   string  `json:"userId" validate:"required"`
	Category string  `json:"category" validate:"required,max=100"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	Spent    float64 `json:"spent" validate:"gte=0"`
	Color    string  `json:"color" validate:"omitempty,max=32"`
}

// Validate checks required fields and trims text inputs in place.
func (p *CreateParams) Validate() error {
	p.Category = strings.TrimSpace(p.Category)
	p.Color = strings.TrimSpace(p.Color)

	if err := finite("amount", p.Amount); err != nil {
		return err
	}
	if err := finite("spent", p.Spent); err != nil {
		return err
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// New builds a Budget from validated params.
func New(id string, p CreateParams) *Budget {
	return &Budget{
		ID:       id,
		UserID:   p.UserID,
		Category: p.Category,
		Amount:   p.Amount,
		Spent:    p.Spent,
		Color:    p.Color,
	}
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, field)
	}
	return nil
}
