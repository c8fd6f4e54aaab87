package producer

import (
	"context"

	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=writer.go -destination=mock/mock_writer.go -package=mock_producer

// Writer kafka.Writer 的最小介面，方便測試替換
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
