package tenancy

import (
	"strings"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
)

// AccountStatus represents the status of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Account is the top of the organizational hierarchy: a billing umbrella
// owning one or more operating entities. Created by platform operators,
// rarely mutated, never deleted while entities exist.
type Account struct {
	shared.BaseAggregateRoot
	Code   string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string        `gorm:"type:varchar(200);not null"`
	Status AccountStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new account with required fields
func NewAccount(code, name string) (*Account, error) {
	if err := validateAccountCode(code); err != nil {
		return nil, err
	}
	if err := validateAccountName(name); err != nil {
		return nil, err
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              strings.TrimSpace(name),
		Status:            AccountStatusActive,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// Rename updates the account's display name
func (a *Account) Rename(name string) error {
	if err := validateAccountName(name); err != nil {
		return err
	}

	a.Name = strings.TrimSpace(name)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Deactivate deactivates the account
func (a *Account) Deactivate() error {
	if a.Status == AccountStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Account is already inactive")
	}

	a.Status = AccountStatusInactive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Activate activates the account
func (a *Account) Activate() error {
	if a.Status == AccountStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Account is already active")
	}

	a.Status = AccountStatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Validation functions

func validateAccountCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Account code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateAccountName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 200 characters")
	}
	return nil
}
