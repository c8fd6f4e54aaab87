package cart

import (
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownCommand struct {
	command.BaseCommand
}

func (c *unknownCommand) Type() command.CommandType {
	return "Unknown"
}

type fakeAddCommand struct {
	command.BaseCommand
}

func (c *fakeAddCommand) Type() command.CommandType {
	return command.AddItemCommandName
}

func TestReduceCommands(t *testing.T) {
	key := model.LineKey{ProductID: 1, Size: "M", Color: "Black"}
	cmds := []command.Command{
		command.NewAddItemCommand(testProduct(1, "10.00"), 2, "M", "Black"),
		command.NewAddItemCommand(testProduct(1, "10.00"), 1, "M", "Black"),
		command.NewIncreaseQuantityCommand(key),
		command.NewDecreaseQuantityCommand(key),
		command.NewApplyPromoCodeCommand("save20"),
	}

	s := NewState()
	var err error
	for _, c := range cmds {
		s, err = Reduce(s, c)
		require.NoError(t, err)
	}
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 3, s.Lines[0].Quantity)
	assertDecimal(t, "30", s.Subtotal)
	assertDecimal(t, "6", s.DiscountAmount)
	assertDecimal(t, "39", s.Total)

	s, err = Reduce(s, command.NewSetQuantityCommand(key, 0))
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())

	s, err = Reduce(s, command.NewAddItemCommand(testProduct(2, "1"), 1, "", ""))
	require.NoError(t, err)
	s, err = Reduce(s, command.NewRemoveItemCommand(model.LineKey{ProductID: 2}))
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())

	s, err = Reduce(s, command.NewClearCartCommand())
	require.NoError(t, err)
	assert.Empty(t, s.PromoCode)
}

func TestReduceUnknownCommand(t *testing.T) {
	s := NewState()
	_, err := Reduce(s, &unknownCommand{BaseCommand: command.NewBaseCommand()})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = Reduce(s, nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestReducePayloadMismatch(t *testing.T) {
	s := NewState()
	got, err := Reduce(s, &fakeAddCommand{BaseCommand: command.NewBaseCommand()})
	assert.ErrorIs(t, err, ErrCommandPayload)
	assert.Equal(t, s, got)
}

func TestCommandIDsAreUnique(t *testing.T) {
	a := command.NewClearCartCommand()
	b := command.NewClearCartCommand()
	assert.NotEmpty(t, a.GetID())
	assert.NotEqual(t, a.GetID(), b.GetID())
}
