// Package eventdb 將結帳事件追加到 EventStoreDB，作為每個 session 的稽核紀錄
package eventdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
)

const (
	StreamPrefix    = "checkout-"
	defaultReadSize = 100
)

var ErrEventFormat = errors.New("event format error")

// streamClient *esdb.Client 使用到的部分
type streamClient interface {
	AppendToStream(ctx context.Context, streamID string, opts esdb.AppendToStreamOptions, events ...esdb.EventData) (*esdb.WriteResult, error)
	ReadStream(ctx context.Context, streamID string, opts esdb.ReadStreamOptions, count uint64) (*esdb.ReadStream, error)
}

type EventDao struct {
	client streamClient
}

func NewEventDao(client *esdb.Client) *EventDao {
	return &EventDao{client: client}
}

// Connect 解析連線字串並建立 client，例如 esdb://localhost:2113?tls=false
func Connect(connectionString string) (*esdb.Client, error) {
	settings, err := esdb.ParseConnectionString(connectionString)
	if err != nil {
		return nil, fmt.Errorf("parse eventstore connection string: %w", err)
	}
	return esdb.NewClient(settings)
}

func StreamID(sessionID string) string {
	return StreamPrefix + sessionID
}

func EventData(evt event.Event) (esdb.EventData, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return esdb.EventData{}, fmt.Errorf("%w: %v", ErrEventFormat, err)
	}
	return esdb.EventData{
		ContentType: esdb.ContentTypeJson,
		EventType:   string(evt.Type()),
		Data:        payload,
	}, nil
}

// Publish 寫入事件，stream 以 session id 區分
func (dao *EventDao) Publish(ctx context.Context, evt event.Event) error {
	data, err := EventData(evt)
	if err != nil {
		return err
	}
	_, err = dao.client.AppendToStream(ctx, StreamID(evt.GetAggregateID()), esdb.AppendToStreamOptions{}, data)
	if err != nil {
		return fmt.Errorf("append %s to %s: %w", evt.Type(), StreamID(evt.GetAggregateID()), err)
	}
	return nil
}

// ReadEvents 讀取某個 session 的事件，stream 不存在時回傳空
func (dao *EventDao) ReadEvents(ctx context.Context, sessionID string) ([]*esdb.ResolvedEvent, error) {
	opts := esdb.ReadStreamOptions{
		Direction: esdb.Forwards,
		From:      esdb.Start{},
	}
	stream, err := dao.client.ReadStream(ctx, StreamID(sessionID), opts, defaultReadSize)
	if err != nil {
		if isStreamNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	defer stream.Close()

	var events []*esdb.ResolvedEvent
	for {
		evt, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if isStreamNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

func isStreamNotFound(err error) bool {
	var esErr *esdb.Error
	return errors.As(err, &esErr) && esErr.Code() == esdb.ErrorCodeResourceNotFound
}
