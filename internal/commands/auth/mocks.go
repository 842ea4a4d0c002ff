package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) ObtainCredential(ctx context.Context) (*oauth2.Token, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

type MockCredentialCache struct {
	mock.Mock
}

func (m *MockCredentialCache) Cached() (*oauth2.Token, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockCredentialCache) Logout() error {
	args := m.Called()
	return args.Error(0)
}
