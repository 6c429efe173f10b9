package wizard

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/constructsync/dashboard/internal/models"
)

// MockJobAPI is a testify mock of JobAPI
type MockJobAPI struct {
	mock.Mock
}

func (m *MockJobAPI) CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobAPI) UpdateJob(ctx context.Context, id models.ID, req *models.UpdateJobRequest) (*models.Job, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}
