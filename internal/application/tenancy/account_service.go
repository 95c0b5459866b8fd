package tenancy

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService handles account administration. Accounts are platform-level
// records; only platform admins reach these operations.
type AccountService struct {
	accounts tenancy.AccountRepository
	logger   *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts tenancy.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		logger:   logger,
	}
}

// Create creates a new account
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := tenancy.NewAccount(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if existing, err := s.accounts.FindByCode(ctx, account.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account with this code already exists")
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created", zap.String("code", account.Code))

	resp := toAccountResponse(account)
	return &resp, nil
}

// Get retrieves an account by ID
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

// List retrieves every account
func (s *AccountService) List(ctx context.Context) ([]AccountResponse, error) {
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out, nil
}

// Rename changes an account's display name
func (s *AccountService) Rename(ctx context.Context, id uuid.UUID, name string) (*AccountResponse, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.Rename(name); err != nil {
		return nil, err
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

// Deactivate suspends an account. Entity-level access checks treat entities
// of a deactivated account like any other; disabling the entities themselves
// is a separate operation.
func (s *AccountService) Deactivate(ctx context.Context, id uuid.UUID) error {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := account.Deactivate(); err != nil {
		return err
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return err
	}

	s.logger.Info("Account deactivated", zap.String("code", account.Code))
	return nil
}
