package logger

import (
	"context"
	"encoding/binary"
	"errors"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

// KafkaWriter 讓 zerolog 的每一行 log 成為一則 kafka 訊息
type KafkaWriter struct {
	p     producer.Producer
	logID atomic.Uint64
}

func NewKafkaWriter(p producer.Producer) *KafkaWriter {
	return &KafkaWriter{p: p}
}

func (kw *KafkaWriter) Write(p []byte) (n int, err error) {
	if kw == nil || kw.p == nil {
		return 0, errors.New("kafka log writer is not init")
	}

	// key 以流水號平均分配分區
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, kw.logID.Add(1))

	// zerolog 會重用 buffer
	value := make([]byte, len(p))
	copy(value, p)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := kw.p.Produce(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (kw *KafkaWriter) Close() error {
	return kw.p.Close()
}
