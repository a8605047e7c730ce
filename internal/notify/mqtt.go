package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/mkrutov/heattrack/internal/track"
)

const connectTimeout = 10 * time.Second

// MQTTConfig configures the MQTT sample sink.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"clientId"`
	QOS      byte   `yaml:"qos" validate:"lte=2"`
	Retained bool   `yaml:"retained"`
}

// MQTTSink publishes every recorded sample to an MQTT topic as JSON.
type MQTTSink struct {
	client mqtt.Client
	topic  string
	qos    byte
	retain bool
}

// NewMQTTSink connects to the broker and returns a ready sink. A missing
// client id is filled with a generated one so concurrent recorders do not
// evict each other from the broker.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "heattrack-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connecting to broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to broker %s: %w", cfg.Broker, err)
	}

	return &MQTTSink{
		client: client,
		topic:  cfg.Topic,
		qos:    cfg.QOS,
		retain: cfg.Retained,
	}, nil
}

// Publish sends the sample as a JSON payload, bounded by ctx.
func (s *MQTTSink) Publish(ctx context.Context, sample track.Sample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshaling sample: %w", err)
	}

	token := s.client.Publish(s.topic, s.qos, s.retain, payload)

	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing to %s: %w", s.topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker, allowing in-flight messages to drain.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
