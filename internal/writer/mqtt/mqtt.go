// internal/writer/mqtt/mqtt.go
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/depth-bridge/internal/writer"
)

const (
	publishTimeout = 5 * time.Second
	disconnectMs   = 250
)

// Config is the broker connection and topic layout.
type Config struct {
	Server      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// ErrOffline is returned while the broker connection is down. Paho keeps
// reconnecting in the background; nothing is queued meanwhile.
var ErrOffline = errors.New("mqtt: broker offline")

// publisher is the part of the paho client used by the mirror.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	IsConnectionOpen() bool
}

// Mirror republishes every item, retained, to <prefix><path>.
// It is read-only: consumer writes are accepted on the bus only.
type Mirror struct {
	client pahomqtt.Client
	pub    publisher
	prefix string
}

// payload is the JSON body of one retained topic.
type payload struct {
	Value any `json:"value"`
}

func New(cfg Config) (*Mirror, error) {
	if cfg.Server == "" {
		return nil, errors.New("mqtt: server required")
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Server).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect: %w", token.Error())
	}

	return &Mirror{client: client, pub: client, prefix: cfg.TopicPrefix}, nil
}

// Register publishes the initial value of every item.
func (m *Mirror) Register(items []writer.Item, _ writer.ChangeFunc) error {
	for _, it := range items {
		if err := m.Set(it.Path, it.Initial); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mirror) Set(path string, value any) error {
	if !m.pub.IsConnectionOpen() {
		return fmt.Errorf("%w: %s", ErrOffline, path)
	}

	b, err := json.Marshal(payload{Value: value})
	if err != nil {
		return fmt.Errorf("mqtt: encode %s: %w", path, err)
	}

	token := m.pub.Publish(m.topic(path), 0, true, b)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish %s: timeout", path)
	}
	return token.Error()
}

func (m *Mirror) Close() error {
	if m.client != nil {
		m.client.Disconnect(disconnectMs)
	}
	return nil
}

func (m *Mirror) topic(path string) string {
	return m.prefix + path
}
