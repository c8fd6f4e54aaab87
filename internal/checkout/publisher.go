package checkout

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
)

// EventPublisher 結帳事件送出端 (kafka / eventstore)
type EventPublisher interface {
	Publish(ctx context.Context, evt event.Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, evt event.Event) error {
	return nil
}

// MultiPublisher 依序送到每個 publisher，錯誤合併回傳
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, evt event.Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
