package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	mock_producer "github.com/RoyceAzure/lab/storefront/internal/infra/producer/mock"
	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Brokers:       []string{"localhost:9092"},
		Topic:         "checkout-events",
		RetryAttempts: 2,
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	cfg := testConfig()
	cfg.Brokers = nil
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidateParameter)

	cfg = testConfig()
	cfg.Topic = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidateParameter)

	_, err := New(Config{})
	assert.Error(t, err)
}

func TestProduceSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	p := NewWithWriter(writer, testConfig())

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msgs ...kafka.Message) error {
			assert.Len(t, msgs, 2)
			assert.Equal(t, "a", string(msgs[0].Key))
			return nil
		}).Times(1)

	err := p.Produce(context.Background(),
		kafka.Message{Key: []byte("a"), Value: []byte("1")},
		kafka.Message{Key: []byte("b"), Value: []byte("2")},
	)
	require.NoError(t, err)
	assert.Equal(t, "checkout-events", p.Topic())
}

func TestProduceEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	p := NewWithWriter(writer, testConfig())

	require.NoError(t, p.Produce(context.Background()))
}

func TestProduceRetriesTemporaryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	p := NewWithWriter(writer, testConfig())

	gomock.InOrder(
		writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(kafka.LeaderNotAvailable),
		writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(kafka.RequestTimedOut),
		writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil),
	)

	require.NoError(t, p.Produce(context.Background(), kafka.Message{Value: []byte("x")}))
}

func TestProduceGivesUpAfterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	p := NewWithWriter(writer, testConfig())

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(kafka.NotLeaderForPartition).Times(3)

	err := p.Produce(context.Background(), kafka.Message{Value: []byte("x")})
	require.Error(t, err)
	var kerr *KafkaError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "Produce", kerr.Operation)
	assert.Equal(t, "checkout-events", kerr.Topic)
	assert.ErrorIs(t, err, kafka.NotLeaderForPartition)
}

func TestProduceDoesNotRetryPermanentErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	p := NewWithWriter(writer, testConfig())

	boom := errors.New("message too large")
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(boom).Times(1)

	err := p.Produce(context.Background(), kafka.Message{Value: []byte("x")})
	assert.ErrorIs(t, err, boom)
}

func TestProduceCanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	p := NewWithWriter(writer, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Produce(ctx, kafka.Message{Value: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProduceAfterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	p := NewWithWriter(writer, testConfig())

	writer.EXPECT().Close().Return(nil).Times(1)
	require.NoError(t, p.Close())
	// 第二次 Close 不再呼叫 writer
	require.NoError(t, p.Close())

	err := p.Produce(context.Background(), kafka.Message{Value: []byte("x")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestIsTemporary(t *testing.T) {
	assert.False(t, IsTemporary(nil))
	assert.False(t, IsTemporary(context.Canceled))
	assert.True(t, IsTemporary(context.DeadlineExceeded))
	assert.True(t, IsTemporary(kafka.RebalanceInProgress))
	assert.True(t, IsTemporary(NewKafkaError("Produce", "t", kafka.LeaderNotAvailable)))
	assert.False(t, IsTemporary(errors.New("boom")))
}

func TestEventPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	publisher := NewEventPublisher(NewWithWriter(writer, testConfig()))

	evt := event.NewPaymentClosedEvent("session-1", "1700000000000")

	var sent kafka.Message
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msgs ...kafka.Message) error {
			sent = msgs[0]
			return nil
		})

	require.NoError(t, publisher.Publish(context.Background(), evt))
	assert.Equal(t, "session-1", string(sent.Key))
	require.Len(t, sent.Headers, 1)
	assert.Equal(t, HeaderEventType, sent.Headers[0].Key)
	assert.Equal(t, string(event.PaymentClosedEventName), string(sent.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.Value, &body))
	assert.Equal(t, "session-1", body["aggregateId"])
	assert.Equal(t, string(event.PaymentClosedEventName), body["eventType"])
}

func TestEventMessageConfirmed(t *testing.T) {
	summary := model.OrderSummary{
		Subtotal: decimal.NewFromInt(120),
		Total:    decimal.NewFromInt(120),
	}
	evt := event.NewCheckoutConfirmedEvent("session-2", "ref-1", "ada@example.com", summary, nil, false)
	evt.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	msg, err := EventMessage(evt)
	require.NoError(t, err)
	assert.Equal(t, "session-2", string(msg.Key))
	assert.Contains(t, string(msg.Value), `"order_reference":"ref-1"`)
}
