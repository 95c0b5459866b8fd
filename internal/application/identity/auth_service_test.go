package identity

import (
	"context"
	"testing"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/infrastructure/auth"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*tenancy.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*tenancy.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *tenancy.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return shared.ErrAlreadyExists
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *tenancy.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*tenancy.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*tenancy.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeUserRepo) FindByHomeEntity(_ context.Context, entityID uuid.UUID) ([]*tenancy.User, error) {
	var out []*tenancy.User
	for _, u := range f.users {
		if u.HomeEntityID != nil && *u.HomeEntityID == entityID {
			out = append(out, u)
		}
	}
	return out, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-of-sufficient-length",
		TokenExpiration: time.Hour,
		Issuer:          "fieldops-test",
	})
	repo := newFakeUserRepo()
	return NewAuthService(repo, jwtService, zap.NewNop()), repo, jwtService
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string, role tenancy.Role, home *uuid.UUID) *tenancy.User {
	t.Helper()
	user, err := tenancy.NewUser(username, password, role, home)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestAuthService_Login(t *testing.T) {
	t.Run("issues a token carrying the home entity", func(t *testing.T) {
		service, repo, jwtService := newAuthFixture(t)
		homeID := uuid.New()
		user := seedUser(t, repo, "jane", "sup3rsecret", tenancy.RoleEntityAdmin, &homeID)

		result, err := service.Login(context.Background(), LoginInput{Username: "jane", Password: "sup3rsecret"})

		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.Token.TokenType)
		assert.Equal(t, user.ID, result.User.ID)

		claims, err := jwtService.ValidateToken(result.Token.Value)
		require.NoError(t, err)
		assert.Equal(t, homeID.String(), claims.HomeEntityID)
		assert.Equal(t, homeID.String(), claims.ActiveEntityID, "active entity defaults to home")
	})

	t.Run("carries a requested active entity as advisory only", func(t *testing.T) {
		service, repo, jwtService := newAuthFixture(t)
		homeID := uuid.New()
		otherID := uuid.New()
		seedUser(t, repo, "jane", "sup3rsecret", tenancy.RoleAccountAdmin, &homeID)

		result, err := service.Login(context.Background(), LoginInput{
			Username:       "jane",
			Password:       "sup3rsecret",
			ActiveEntityID: &otherID,
		})

		require.NoError(t, err)
		claims, err := jwtService.ValidateToken(result.Token.Value)
		require.NoError(t, err)
		assert.Equal(t, otherID.String(), claims.ActiveEntityID)
		assert.Equal(t, homeID.String(), claims.HomeEntityID, "home entity unchanged")
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		service, repo, _ := newAuthFixture(t)
		seedUser(t, repo, "jane", "sup3rsecret", tenancy.RoleEntityUser, nil)

		_, err := service.Login(context.Background(), LoginInput{Username: "jane", Password: "wrong"})
		assert.Error(t, err)
	})

	t.Run("rejects an unknown user with the same error as a bad password", func(t *testing.T) {
		service, repo, _ := newAuthFixture(t)
		seedUser(t, repo, "jane", "sup3rsecret", tenancy.RoleEntityUser, nil)

		_, unknownErr := service.Login(context.Background(), LoginInput{Username: "nobody", Password: "sup3rsecret"})
		_, badPassErr := service.Login(context.Background(), LoginInput{Username: "jane", Password: "wrong"})

		require.Error(t, unknownErr)
		require.Error(t, badPassErr)
		assert.Equal(t, unknownErr.Error(), badPassErr.Error())
	})

	t.Run("rejects a deactivated user", func(t *testing.T) {
		service, repo, _ := newAuthFixture(t)
		user := seedUser(t, repo, "jane", "sup3rsecret", tenancy.RoleEntityUser, nil)
		require.NoError(t, user.Deactivate())

		_, err := service.Login(context.Background(), LoginInput{Username: "jane", Password: "sup3rsecret"})
		assert.Error(t, err)
	})

	t.Run("stamps the login time", func(t *testing.T) {
		service, repo, _ := newAuthFixture(t)
		user := seedUser(t, repo, "jane", "sup3rsecret", tenancy.RoleEntityUser, nil)
		require.Nil(t, user.LastLoginAt)

		_, err := service.Login(context.Background(), LoginInput{Username: "jane", Password: "sup3rsecret"})
		require.NoError(t, err)

		stored, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLoginAt)
	})
}
