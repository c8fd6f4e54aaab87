package event

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

// AggregateID 皆為購物 session id

type CheckoutStartedEvent struct {
	BaseEvent
	Guest bool             `json:"guest"`
	Total decimal.Decimal  `json:"total"`
	Lines []model.CartLine `json:"lines"`
}

func NewCheckoutStartedEvent(sessionID string, guest bool, total decimal.Decimal, lines []model.CartLine) *CheckoutStartedEvent {
	return &CheckoutStartedEvent{
		BaseEvent: NewBaseEvent(sessionID, CheckoutStartedEventName),
		Guest:     guest,
		Total:     total,
		Lines:     lines,
	}
}

func (e *CheckoutStartedEvent) Type() EventType {
	return CheckoutStartedEventName
}

type CheckoutConfirmedEvent struct {
	BaseEvent
	OrderReference string             `json:"order_reference"`
	Email          string             `json:"email"`
	Summary        model.OrderSummary `json:"summary"`
	Lines          []model.CartLine   `json:"lines"`
	AccountCreated bool               `json:"account_created"`
}

func NewCheckoutConfirmedEvent(sessionID, reference, email string, summary model.OrderSummary, lines []model.CartLine, accountCreated bool) *CheckoutConfirmedEvent {
	return &CheckoutConfirmedEvent{
		BaseEvent:      NewBaseEvent(sessionID, CheckoutConfirmedEventName),
		OrderReference: reference,
		Email:          email,
		Summary:        summary,
		Lines:          lines,
		AccountCreated: accountCreated,
	}
}

func (e *CheckoutConfirmedEvent) Type() EventType {
	return CheckoutConfirmedEventName
}

// PaymentClosedEvent 使用者關閉付款視窗或付款失敗，兩者不區分
type PaymentClosedEvent struct {
	BaseEvent
	Reference string `json:"reference"`
}

func NewPaymentClosedEvent(sessionID, reference string) *PaymentClosedEvent {
	return &PaymentClosedEvent{
		BaseEvent: NewBaseEvent(sessionID, PaymentClosedEventName),
		Reference: reference,
	}
}

func (e *PaymentClosedEvent) Type() EventType {
	return PaymentClosedEventName
}

type CheckoutAbandonedEvent struct {
	BaseEvent
	Step model.Step `json:"step"`
}

func NewCheckoutAbandonedEvent(sessionID string, step model.Step) *CheckoutAbandonedEvent {
	return &CheckoutAbandonedEvent{
		BaseEvent: NewBaseEvent(sessionID, CheckoutAbandonedEventName),
		Step:      step,
	}
}

func (e *CheckoutAbandonedEvent) Type() EventType {
	return CheckoutAbandonedEventName
}
