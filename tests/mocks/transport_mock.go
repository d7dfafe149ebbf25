package mocks

import (
	"context"

	"github.com/benmeehan/sentinel/pkg/identity"
	"github.com/benmeehan/sentinel/pkg/relay"
	"github.com/stretchr/testify/mock"
)

// MockTransport is a mock implementation of the device.Transport interface
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) GetVariable(ctx context.Context, id identity.Identity, variable string) (relay.Response, error) {
	args := m.Called(ctx, id, variable)
	return args.Get(0).(relay.Response), args.Error(1)
}

func (m *MockTransport) CallFunction(ctx context.Context, id identity.Identity, function, argument string) (relay.Response, error) {
	args := m.Called(ctx, id, function, argument)
	return args.Get(0).(relay.Response), args.Error(1)
}
