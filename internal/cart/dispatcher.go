package cart

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/command"
)

var (
	ErrUnknownCommand = errors.New("unknown cart command")
	ErrCommandPayload = errors.New("cart command payload mismatch")
)

type HandlerFunc func(state model.CartState, cmd command.Command) (model.CartState, error)

func (f HandlerFunc) Apply(state model.CartState, cmd command.Command) (model.CartState, error) {
	return f(state, cmd)
}

type Handler interface {
	Apply(state model.CartState, cmd command.Command) (model.CartState, error)
}

type Dispatcher struct {
	handlers map[command.CommandType]Handler
}

func NewDispatcher(handlers map[command.CommandType]Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

func (d *Dispatcher) Apply(state model.CartState, cmd command.Command) (model.CartState, error) {
	if cmd == nil {
		return state, ErrUnknownCommand
	}
	handler, ok := d.handlers[cmd.Type()]
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Type())
	}
	return handler.Apply(state, cmd)
}

var defaultDispatcher = NewDispatcher(map[command.CommandType]Handler{
	command.AddItemCommandName:          HandlerFunc(handleAddItem),
	command.RemoveItemCommandName:       HandlerFunc(handleRemoveItem),
	command.SetQuantityCommandName:      HandlerFunc(handleSetQuantity),
	command.IncreaseQuantityCommandName: HandlerFunc(handleIncreaseQuantity),
	command.DecreaseQuantityCommandName: HandlerFunc(handleDecreaseQuantity),
	command.ApplyPromoCodeCommandName:   HandlerFunc(handleApplyPromoCode),
	command.ClearCartCommandName:        HandlerFunc(handleClear),
})

// Reduce 依命令類型套用對應的轉換函式
func Reduce(state model.CartState, cmd command.Command) (model.CartState, error) {
	return defaultDispatcher.Apply(state, cmd)
}

func payloadError(cmd command.Command) error {
	return fmt.Errorf("%w: %s got %T", ErrCommandPayload, cmd.Type(), cmd)
}

func handleAddItem(state model.CartState, cmd command.Command) (model.CartState, error) {
	c, ok := cmd.(*command.AddItemCommand)
	if !ok {
		return state, payloadError(cmd)
	}
	return AddItem(state, c.Product, c.Quantity, c.Size, c.Color), nil
}

func handleRemoveItem(state model.CartState, cmd command.Command) (model.CartState, error) {
	c, ok := cmd.(*command.RemoveItemCommand)
	if !ok {
		return state, payloadError(cmd)
	}
	return RemoveItem(state, c.Key), nil
}

func handleSetQuantity(state model.CartState, cmd command.Command) (model.CartState, error) {
	c, ok := cmd.(*command.SetQuantityCommand)
	if !ok {
		return state, payloadError(cmd)
	}
	return SetQuantity(state, c.Key, c.Quantity), nil
}

func handleIncreaseQuantity(state model.CartState, cmd command.Command) (model.CartState, error) {
	c, ok := cmd.(*command.IncreaseQuantityCommand)
	if !ok {
		return state, payloadError(cmd)
	}
	return IncreaseQuantity(state, c.Key), nil
}

func handleDecreaseQuantity(state model.CartState, cmd command.Command) (model.CartState, error) {
	c, ok := cmd.(*command.DecreaseQuantityCommand)
	if !ok {
		return state, payloadError(cmd)
	}
	return DecreaseQuantity(state, c.Key), nil
}

func handleApplyPromoCode(state model.CartState, cmd command.Command) (model.CartState, error) {
	c, ok := cmd.(*command.ApplyPromoCodeCommand)
	if !ok {
		return state, payloadError(cmd)
	}
	return ApplyPromoCode(state, c.Code), nil
}

func handleClear(state model.CartState, cmd command.Command) (model.CartState, error) {
	if _, ok := cmd.(*command.ClearCartCommand); !ok {
		return state, payloadError(cmd)
	}
	return Clear(state), nil
}
