package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/benmeehan/sentinel/pkg/file"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTClient is the part of the paho client the status publisher uses.
type MQTTClient interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MqttService owns the broker connection used to publish status reports.
type MqttService struct {
	client     MQTTClient
	fileClient file.FileOperations
}

// NewMqttService creates a new MqttService instance.
func NewMqttService(fileClient file.FileOperations) *MqttService {
	return &MqttService{
		fileClient: fileClient,
	}
}

// Initialize creates the client and connects to broker. TLS is used only
// when caCertPath is set.
func (s *MqttService) Initialize(broker, clientID, caCertPath string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)

	if caCertPath != "" {
		tlsConfig, err := s.tlsConfig(caCertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsConfig)
	}

	s.client = mqtt.NewClient(opts)

	token := s.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to %s: %w", broker, token.Error())
	}

	return nil
}

func (s *MqttService) tlsConfig(caCertPath string) (*tls.Config, error) {
	exists, err := s.fileClient.IsFileExists(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check CA certificate: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("CA certificate %s does not exist", caCertPath)
	}

	caCert, err := s.fileClient.ReadFileRaw(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to append CA certificate from %s", caCertPath)
	}

	return &tls.Config{RootCAs: caCertPool, MinVersion: tls.VersionTLS12}, nil
}

// Connect connects to the MQTT broker.
func (s *MqttService) Connect() mqtt.Token {
	return s.client.Connect()
}

// Publish sends a message to the specified topic.
func (s *MqttService) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return s.client.Publish(topic, qos, retained, payload)
}

// Disconnect gracefully disconnects the MQTT client.
func (s *MqttService) Disconnect(quiesce uint) {
	s.client.Disconnect(quiesce)
}
