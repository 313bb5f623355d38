package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	return nil
}

func TestEvent_Key(t *testing.T) {
	assert.Equal(t, "order-7", New(OrderPaid, nil).ForOrder(7).Key())
	assert.Equal(t, "ingredient-3", New(StockTransaction, nil).ForIngredient(3).Key())
	assert.Equal(t, "order.created", New(OrderCreated, nil).Key())
}

func TestFanout_Publish(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("broker down")}

	err := Fanout{ok, failing}.Publish(context.Background(), New(OrderCreated, nil).ForOrder(1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := &KafkaPublisher{writer: writer}

	err := p.Publish(context.Background(), New(OrderPaid, map[string]string{"amount": "25"}).ForOrder(42))
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "order-42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.paid", string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, OrderPaid, decoded.Type)
	assert.Equal(t, uint(42), decoded.OrderID)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}}

	err := p.Publish(context.Background(), New(OrderCreated, nil).ForOrder(1))
	assert.ErrorContains(t, err, "leader not available")
}

func TestHub_BroadcastsToFeedClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(ctx, New(OrderItemAdded, nil).ForOrder(5)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, OrderItemAdded, event.Type)
	assert.Equal(t, uint(5), event.OrderID)

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishWithoutClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	assert.NoError(t, hub.Publish(ctx, New(OrderCreated, nil)))
}
