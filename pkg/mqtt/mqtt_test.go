package mqtt

import (
	"errors"
	"testing"

	"github.com/benmeehan/sentinel/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLSConfig_MissingCertificate(t *testing.T) {
	fileClient := new(mocks.MockFileOperations)
	fileClient.On("IsFileExists", "ca.pem").Return(false, nil)

	s := NewMqttService(fileClient)
	_, err := s.tlsConfig("ca.pem")

	assert.EqualError(t, err, "CA certificate ca.pem does not exist")
	fileClient.AssertNotCalled(t, "ReadFileRaw", "ca.pem")
}

func TestTLSConfig_ReadError(t *testing.T) {
	fileClient := new(mocks.MockFileOperations)
	fileClient.On("IsFileExists", "ca.pem").Return(true, nil)
	fileClient.On("ReadFileRaw", "ca.pem").Return(nil, errors.New("permission denied"))

	s := NewMqttService(fileClient)
	_, err := s.tlsConfig("ca.pem")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read CA certificate")
}

func TestTLSConfig_InvalidPEM(t *testing.T) {
	fileClient := new(mocks.MockFileOperations)
	fileClient.On("IsFileExists", "ca.pem").Return(true, nil)
	fileClient.On("ReadFileRaw", "ca.pem").Return([]byte("not a certificate"), nil)

	s := NewMqttService(fileClient)
	_, err := s.tlsConfig("ca.pem")

	assert.ErrorContains(t, err, "failed to append CA certificate")
}

func TestPublishDelegatesToClient(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := mocks.NewCompletedToken(nil)
	client.On("Publish", "sentinel/status", byte(1), false, []byte("{}")).Return(token)
	client.On("Disconnect", uint(250)).Return()

	s := &MqttService{client: client}
	assert.NoError(t, s.Publish("sentinel/status", 1, false, []byte("{}")).Error())
	s.Disconnect(250)

	client.AssertExpectations(t)
}
