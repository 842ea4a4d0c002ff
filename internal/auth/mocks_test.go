package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

type MockConsentFlow struct {
	mock.Mock
}

func (m *MockConsentFlow) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}
