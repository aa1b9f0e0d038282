package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/models"
)

// MockUserDAO is a mock implementation of service.UserDAO
type MockUserDAO struct {
	mock.Mock
}

func (m *MockUserDAO) GetByUsername(ctx context.Context, username string) (*models.UserAccount, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAccount), args.Error(1)
}

func (m *MockUserDAO) GetByID(ctx context.Context, userID int64) (*models.UserAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAccount), args.Error(1)
}
