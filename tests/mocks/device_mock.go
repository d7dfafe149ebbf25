package mocks

import (
	"context"

	"github.com/benmeehan/sentinel/internal/device"
	"github.com/stretchr/testify/mock"
)

// MockDeviceClient is a mock of the device client as seen by the console and
// the watch service
type MockDeviceClient struct {
	mock.Mock
}

func (m *MockDeviceClient) Invoke(ctx context.Context, req device.Request) (device.Value, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(device.Value), args.Error(1)
}

func (m *MockDeviceClient) ReadVariable(ctx context.Context, name string) (device.Value, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(device.Value), args.Error(1)
}
