package create

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/mateform/internal/models"
	"github.com/thomas-vilte/mateform/internal/translator"
)

type MockFormPublisher struct {
	mock.Mock
}

func (m *MockFormPublisher) Publish(ctx context.Context, spec *models.FormSpec, progress func(models.ProgressEvent)) (*models.FormResult, error) {
	args := m.Called(ctx, spec, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FormResult), args.Error(1)
}

type MockFormPreviewer struct {
	mock.Mock
}

func (m *MockFormPreviewer) Preview(spec *models.FormSpec) ([]translator.Descriptor, error) {
	args := m.Called(spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]translator.Descriptor), args.Error(1)
}
