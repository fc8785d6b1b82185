package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"budgetcoach/internal/shared/validate"
)

// Sign-in providers
const (
	ProviderPassword = "password"
	ProviderFirebase = "firebase"
)

// Domain errors
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid user")
	ErrFirebaseDisabled   = errors.New("firebase sign-in is not configured")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	Provider     string    `json:"provider"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateUserParams contains the fields of a new user. ID is optional and
// set only when an external provider owns the identifier.
type CreateUserParams struct {
	ID           string
	Email        string `validate:"required,email"`
	DisplayName  string `validate:"max=100"`
	Provider     string `validate:"oneof=password firebase"`
	PasswordHash string
}

func (p *CreateUserParams) Validate() error {
	p.Email = NormalizeEmail(p.Email)
	p.DisplayName = strings.TrimSpace(p.DisplayName)

	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if p.Provider == ProviderPassword && p.PasswordHash == "" {
		return fmt.Errorf("%w: password hash is required", ErrInvalidInput)
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
