package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const connectTimeout = 3 * time.Second

// Client wraps the paho client with the blocking-token calls hidden behind
// plain error returns. Reconnection is owned by the connectivity state
// machine, not the library, so auto-reconnect stays off.
type Client struct {
	inner paho.Client
}

func NewClient(server string, port int, clientID, user, password string) *Client {
	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", server, port)).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(false).
		SetConnectRetry(false)

	if user != "" {
		opts.SetUsername(user)
		opts.SetPassword(password)
	}

	return &Client{inner: paho.NewClient(opts)}
}

// Connect attempts a single broker connection, blocking up to the connect
// timeout
func (c *Client) Connect() error {
	token := c.inner.Connect()
	if !token.WaitTimeout(connectTimeout + time.Second) {
		return fmt.Errorf("broker connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("broker connect failed: %w", err)
	}
	return nil
}

func (c *Client) IsConnected() bool {
	return c.inner.IsConnected()
}

func (c *Client) Publish(topic string, retained bool, payload string) error {
	token := c.inner.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", topic, err)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.inner.Disconnect(250)
}
