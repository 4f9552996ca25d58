//go:build integration

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/duynhne/inventory-service/internal/core/domain"
)

func setupRabbitMQ(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestAMQPPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	url := setupRabbitMQ(t)
	const queue = "auth.events.test"

	// The port opens before the broker accepts logins.
	var pub *AMQPPublisher
	require.Eventually(t, func() bool {
		p, err := NewAMQPPublisher(url, queue)
		if err != nil {
			return false
		}
		pub = p
		return true
	}, 60*time.Second, time.Second)
	t.Cleanup(func() { _ = pub.Close() })

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := domain.AuthEvent{Type: domain.EventPasswordChanged, UserID: 7, Username: "alice", OccurredAt: at}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, pub.Publish(ctx, event))

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ch, err := conn.Channel()
	require.NoError(t, err)

	var msg amqp.Delivery
	require.Eventually(t, func() bool {
		m, ok, err := ch.Get(queue, true)
		if err != nil || !ok {
			return false
		}
		msg = m
		return true
	}, 10*time.Second, 100*time.Millisecond)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "user.password_changed", msg.Type)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var got domain.AuthEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, event, got)

	t.Run("publish after close fails", func(t *testing.T) {
		closed, err := NewAMQPPublisher(url, queue)
		require.NoError(t, err)
		require.NoError(t, closed.Close())
		assert.Error(t, closed.Publish(context.Background(), event))
	})
}
