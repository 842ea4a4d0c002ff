package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/mateform/internal/forms"
	"github.com/thomas-vilte/mateform/internal/translator"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, d translator.Descriptor, formID string) (forms.SendResult, error) {
	args := m.Called(ctx, d, formID)
	return args.Get(0).(forms.SendResult), args.Error(1)
}
