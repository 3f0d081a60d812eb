// Package mqttstate mirrors the latest door state as retained MQTT messages.
package mqttstate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/septivank/petdoor-curfew-worker/internal/event"
	"go.uber.org/zap"
)

type Client struct {
	topicRoot string
	opts      *paho.ClientOptions
	client    paho.Client
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClient(brokerURL, clientID, topicRoot string, timeout time.Duration, logger *zap.Logger) *Client {
	opts := paho.NewClientOptions().AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetConnectTimeout(timeout)

	return &Client{
		topicRoot: strings.TrimSuffix(topicRoot, "/"),
		opts:      opts,
		timeout:   timeout,
		logger:    logger,
	}
}

func (c *Client) Connect() error {
	c.client = paho.NewClient(c.opts)
	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("connect error: timed out after %v", c.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect error: %w", err)
	}

	return nil
}

func (c *Client) Disconnect() {
	if c.client == nil {
		return
	}

	c.client.Disconnect(250)
}

// Name identifies the sink in logs
func (c *Client) Name() string {
	return "mqtt"
}

// Publish stores ev as the retained value of its topic and waits for the broker
func (c *Client) Publish(ctx context.Context, ev event.DoorEvent) error {
	if c.client == nil {
		return fmt.Errorf("client not connected")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("unable to encode payload: %w", err)
	}

	topic := Topic(c.topicRoot, ev)
	token := c.client.Publish(topic, 1, true, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.timeout):
		return fmt.Errorf("publishing to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("error publishing to %s: %w", topic, err)
	}

	c.logger.Debug("published door state", zap.String("topic", topic))
	return nil
}

// Topic maps an event type such as "curfew.applied" to root/curfew/applied
func Topic(root string, ev event.DoorEvent) string {
	return fmt.Sprintf("%s/%s", root, strings.ReplaceAll(ev.Type, ".", "/"))
}
