package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// PasswordEncrypter
type PasswordEncrypterMock struct {
	mock.Mock
}

func (em *PasswordEncrypterMock) Encrypt(ctx context.Context, password string) (string, error) {
	args := em.Called(ctx, password)
	return args.Get(0).(string), args.Error(1)
}

func (em *PasswordEncrypterMock) ComparePassword(ctx context.Context, encryptedPassword, password string) (bool, error) {
	args := em.Called(ctx, encryptedPassword, password)
	return args.Get(0).(bool), args.Error(1)
}

var _ PasswordEncrypter = (*PasswordEncrypterMock)(nil)

// JWTManager
type JWTManagerMock struct {
	mock.Mock
}

func (m *JWTManagerMock) GenerateToken(ctx context.Context, user *TokenUser, expiresAt time.Time) (string, error) {
	args := m.Called(ctx, user, expiresAt)
	return args.Get(0).(string), args.Error(1)
}

func (m *JWTManagerMock) RefreshToken(ctx context.Context, token string, expiresAt time.Time) (string, error) {
	args := m.Called(ctx, token, expiresAt)
	return args.Get(0).(string), args.Error(1)
}

func (m *JWTManagerMock) ValidateToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(bool), args.Error(1)
}

func (m *JWTManagerMock) GetUserFromToken(ctx context.Context, tokenString string) (*TokenUser, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TokenUser), args.Error(1)
}

var _ JWTManager = (*JWTManagerMock)(nil)
