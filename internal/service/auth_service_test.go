package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

func newAuthService() (*AuthService, *mockUserRepo) {
	repo := new(mockUserRepo)
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(repo, tokens), repo
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "Dev@Example.com",
		Password: "correct-horse",
		Role:     "freelancer",
	})

	assert.NoError(t, err)
	assert.Equal(t, "dev@example.com", result.User.Email)
	assert.Equal(t, valueobject.PartyFreelancer, result.User.Role)
	assert.Equal(t, "dev", result.User.Username)
	assert.NotEmpty(t, result.TokenPair.AccessToken)

	err = bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("correct-horse"))
	assert.NoError(t, err)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrEmailTaken)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "dev@example.com",
		Password: "correct-horse",
		Role:     "client",
	})

	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "dev@example.com",
		Password: "correct-horse",
		Role:     "admin",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "dev@example.com",
		Password: "short",
		Role:     "client",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "dev@example.com",
		PasswordHash: string(hash),
		Role:         valueobject.PartyClient,
	}
	repo.On("GetByEmail", ctx, "dev@example.com").Return(user, nil)

	result, err := svc.Login(ctx, LoginInput{Email: "dev@example.com", Password: "correct-horse"})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	user := &models.User{ID: uuid.New(), Email: "dev@example.com", PasswordHash: string(hash)}
	repo.On("GetByEmail", ctx, "dev@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "dev@example.com", Password: "wrong"})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	user := &models.User{ID: uuid.New(), Role: valueobject.PartyFreelancer}

	pair, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	userID, role, err := tokens.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "freelancer", role)

	claims, err := tokens.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	other := NewTokenManager("different", "different", 15*time.Minute, 24*time.Hour)
	user := &models.User{ID: uuid.New(), Role: valueobject.PartyClient}

	pair, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	_, _, err = other.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
