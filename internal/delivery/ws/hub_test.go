package ws

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-servicequeue/config"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/repository/memory"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/service"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

func setupTestHub(t *testing.T) (*Hub, service.QueueService, *httptest.Server) {
	t.Helper()

	l := logger.InitializeTestZapLogger()
	svc, err := service.NewQueueService(
		context.Background(),
		memory.NewQueueRepository(),
		config.QueueConfig{
			MaxQueueLength:      50,
			PriorityEnabled:     true,
			AutoProgressEnabled: false,
			AutoProgressDelay:   time.Second,
			EstimationAlgorithm: "simple",
		},
		config.JWTConfig{Secret: "test-secret", Expiry: time.Minute},
		l,
	)
	require.NoError(t, err)

	hub := NewHub(svc, l)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(ServeWS(hub))
	t.Cleanup(srv.Close)

	return hub, svc, srv
}

func dialTestSocket(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readUntilType(t *testing.T, conn *websocket.Conn, wanted string) Message {
	t.Helper()

	for {
		msg := readMessage(t, conn)
		if msg.Type == wanted {
			return msg
		}
	}
}

func TestHub_SnapshotOnConnect(t *testing.T) {
	_, svc, srv := setupTestHub(t)

	_, err := svc.JoinQueue(context.Background(), service.JoinQueueInput{
		UserID: "u1", UserName: "Alice", ServiceID: "haircut",
	})
	require.NoError(t, err)

	conn := dialTestSocket(t, srv, "")

	msg := readMessage(t, conn)
	require.Equal(t, "snapshot", msg.Type)

	queues, ok := msg.Payload.(map[string]any)
	require.True(t, ok, "snapshot payload should be a queue map")
	entries, ok := queues["haircut"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)
}

func TestHub_BroadcastsQueueEvents(t *testing.T) {
	_, svc, srv := setupTestHub(t)

	conn := dialTestSocket(t, srv, "")
	msg := readMessage(t, conn)
	require.Equal(t, "snapshot", msg.Type)

	_, err := svc.JoinQueue(context.Background(), service.JoinQueueInput{
		UserID: "u1", UserName: "Alice", ServiceID: "haircut",
	})
	require.NoError(t, err)

	msg = readUntilType(t, conn, "queue_updated")
	payload, ok := msg.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "haircut", payload["service_id"])
	entries, ok := payload["entries"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)
}

func TestHub_ServiceFilter(t *testing.T) {
	_, svc, srv := setupTestHub(t)

	conn := dialTestSocket(t, srv, "?service_id=massage")
	msg := readMessage(t, conn)
	require.Equal(t, "snapshot", msg.Type)

	ctx := context.Background()
	_, err := svc.JoinQueue(ctx, service.JoinQueueInput{
		UserID: "u1", UserName: "Alice", ServiceID: "haircut",
	})
	require.NoError(t, err)
	_, err = svc.JoinQueue(ctx, service.JoinQueueInput{
		UserID: "u2", UserName: "Bob", ServiceID: "massage",
	})
	require.NoError(t, err)

	// The haircut broadcast is filtered out, so the first queue update
	// this socket sees must be the massage one.
	msg = readUntilType(t, conn, "queue_updated")
	payload, ok := msg.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "massage", payload["service_id"])
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	l := logger.InitializeTestZapLogger()
	svc, err := service.NewQueueService(
		context.Background(),
		memory.NewQueueRepository(),
		config.QueueConfig{MaxQueueLength: 50, EstimationAlgorithm: "simple"},
		config.JWTConfig{Secret: "test-secret", Expiry: time.Minute},
		l,
	)
	require.NoError(t, err)

	hub := NewHub(svc, l)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(ServeWS(hub))
	t.Cleanup(srv.Close)

	conn := dialTestSocket(t, srv, "")
	msg := readMessage(t, conn)
	require.Equal(t, "snapshot", msg.Type)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for err == nil {
		_, _, err = conn.ReadMessage()
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		assert.False(t, nerr.Timeout(), "hub should close the socket, not let the read time out")
	}
}
