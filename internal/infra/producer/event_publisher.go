package producer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/segmentio/kafka-go"
)

const HeaderEventType = "event-type"

// EventPublisher 結帳事件以 session id 為 key 寫入 kafka，同一 session 落在同一分區
type EventPublisher struct {
	producer Producer
}

func NewEventPublisher(p Producer) *EventPublisher {
	return &EventPublisher{producer: p}
}

func EventMessage(evt event.Event) (kafka.Message, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", evt.Type(), err)
	}
	return kafka.Message{
		Key:   []byte(evt.GetAggregateID()),
		Value: b,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(evt.Type())},
		},
	}, nil
}

func (e *EventPublisher) Publish(ctx context.Context, evt event.Event) error {
	msg, err := EventMessage(evt)
	if err != nil {
		return err
	}
	return e.producer.Produce(ctx, msg)
}

func (e *EventPublisher) Close() error {
	return e.producer.Close()
}
