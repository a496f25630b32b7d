package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockBookingExpirer struct {
	mock.Mock
}

func (m *MockBookingExpirer) CancelExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockHoldSweeper struct {
	mock.Mock
}

func (m *MockHoldSweeper) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
