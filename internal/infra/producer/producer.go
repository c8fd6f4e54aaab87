// Package producer 將訊息同步寫入 kafka
package producer

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Producer interface defines the methods that a Kafka producer must implement
type Producer interface {
	// Produce sends messages to Kafka
	Produce(ctx context.Context, msgs ...kafka.Message) error
	// Close closes the producer
	Close() error
	Topic() string
}

type Config struct {
	Brokers      []string
	Topic        string
	RequiredAcks int
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	// 不含第一次
	RetryAttempts int
	RetryDelay    time.Duration
}

func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return NewKafkaError("Validate", c.Topic, ErrInvalidateParameter)
	}
	if c.Topic == "" {
		return NewKafkaError("Validate", c.Topic, ErrInvalidateParameter)
	}
	return nil
}

type kafkaProducer struct {
	writer Writer
	cfg    Config
	closed atomic.Bool
}

// New 建立連向 broker 的 producer
func New(cfg Config) (Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Async:        false,

		// 重連機制設置
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second, // 連接超時
					DualStack: true,             // 支援 IPv4/IPv6
					KeepAlive: 30 * time.Second, // TCP keepalive
				}
				return dialer.DialContext(ctx, network, address)
			},
		},

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Str("topic", cfg.Topic).Msgf("kafka producer error: "+msg, args...)
		}),

		Compression: kafka.Snappy,
	}

	return NewWithWriter(writer, cfg), nil
}

// NewWithWriter 使用外部提供的 writer
func NewWithWriter(w Writer, cfg Config) Producer {
	return &kafkaProducer{writer: w, cfg: cfg}
}

func (p *kafkaProducer) Topic() string {
	return p.cfg.Topic
}

// Produce 同步發送，會 block 到所有訊息寫入或重試用盡
func (p *kafkaProducer) Produce(ctx context.Context, msgs ...kafka.Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	var err error
	for attempt := 0; attempt <= p.cfg.RetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return NewKafkaError("Produce", p.cfg.Topic, ctx.Err())
		}
		err = p.writer.WriteMessages(ctx, msgs...)
		if err == nil {
			return nil
		}
		if !IsTemporary(err) {
			break
		}
		if p.cfg.RetryDelay > 0 && attempt < p.cfg.RetryAttempts {
			select {
			case <-ctx.Done():
				return NewKafkaError("Produce", p.cfg.Topic, ctx.Err())
			case <-time.After(p.cfg.RetryDelay):
			}
		}
	}

	return NewKafkaError("Produce", p.cfg.Topic, err)
}

func (p *kafkaProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
