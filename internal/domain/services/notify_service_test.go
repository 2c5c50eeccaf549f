package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdp-support-service/internal/infrastructure/config"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (t *fakeToken) Error() error                   { return t.err }

// fakeMQTTClient 只实现发布相关方法
type fakeMQTTClient struct {
	mqtt.Client
	connected  bool
	publishErr error
	topic      string
	qos        byte
	payload    []byte
}

func (c *fakeMQTTClient) IsConnected() bool { return c.connected }

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topic = topic
	c.qos = qos
	c.payload = payload.([]byte)
	return &fakeToken{err: c.publishErr}
}

func newTestNotifier(client *fakeMQTTClient) *MQTTNotifyService {
	return &MQTTNotifyService{
		Config: &config.Config{MQTTQoS: 1},
		Client: client,
		Topic:  "support/tickets/new",
	}
}

func TestNotifyTicketSubmitted_PublishesWithoutPersonalData(t *testing.T) {
	client := &fakeMQTTClient{connected: true}
	ticket := canonicalTicket()

	err := newTestNotifier(client).NotifyTicketSubmitted(context.Background(), ticket, SubmissionDispatched)
	require.NoError(t, err)
	assert.Equal(t, "support/tickets/new", client.topic)
	assert.Equal(t, byte(1), client.qos)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(client.payload, &msg))
	assert.Equal(t, "ticket_submitted", msg["event"])
	assert.Equal(t, ticket.ID, msg["ticket_id"])
	assert.Equal(t, "dispatched", msg["status"])
	assert.NotEmpty(t, msg["message_id"])
	assert.NotContains(t, string(client.payload), ticket.FullName)
	assert.NotContains(t, string(client.payload), ticket.ContactNumber)
}

func TestNotifyTicketSubmitted_NotConnected(t *testing.T) {
	client := &fakeMQTTClient{}
	err := newTestNotifier(client).NotifyTicketSubmitted(context.Background(), canonicalTicket(), SubmissionDispatched)
	assert.Error(t, err)
	assert.Nil(t, client.payload)
}

func TestNotifyTicketSubmitted_PublishError(t *testing.T) {
	client := &fakeMQTTClient{connected: true, publishErr: errors.New("broker gone")}
	err := newTestNotifier(client).NotifyTicketSubmitted(context.Background(), canonicalTicket(), SubmissionConfirmed)
	assert.ErrorContains(t, err, "broker gone")
}
