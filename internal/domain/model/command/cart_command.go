package command

import "github.com/RoyceAzure/lab/storefront/internal/domain/model"

const (
	AddItemCommandName          CommandType = "AddItem"
	RemoveItemCommandName       CommandType = "RemoveItem"
	SetQuantityCommandName      CommandType = "SetQuantity"
	IncreaseQuantityCommandName CommandType = "IncreaseQuantity"
	DecreaseQuantityCommandName CommandType = "DecreaseQuantity"
	ApplyPromoCodeCommandName   CommandType = "ApplyPromoCode"
	ClearCartCommandName        CommandType = "ClearCart"
)

// AddItemCommand 商品快照連同數量、尺寸、顏色一起帶入
type AddItemCommand struct {
	BaseCommand
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
	Size     string        `json:"size"`
	Color    string        `json:"color"`
}

func NewAddItemCommand(product model.Product, quantity int, size, color string) *AddItemCommand {
	return &AddItemCommand{
		BaseCommand: NewBaseCommand(),
		Product:     product,
		Quantity:    quantity,
		Size:        size,
		Color:       color,
	}
}

func (c *AddItemCommand) Type() CommandType {
	return AddItemCommandName
}

type RemoveItemCommand struct {
	BaseCommand
	Key model.LineKey `json:"key"`
}

func NewRemoveItemCommand(key model.LineKey) *RemoveItemCommand {
	return &RemoveItemCommand{BaseCommand: NewBaseCommand(), Key: key}
}

func (c *RemoveItemCommand) Type() CommandType {
	return RemoveItemCommandName
}

type SetQuantityCommand struct {
	BaseCommand
	Key      model.LineKey `json:"key"`
	Quantity int           `json:"quantity"`
}

func NewSetQuantityCommand(key model.LineKey, quantity int) *SetQuantityCommand {
	return &SetQuantityCommand{BaseCommand: NewBaseCommand(), Key: key, Quantity: quantity}
}

func (c *SetQuantityCommand) Type() CommandType {
	return SetQuantityCommandName
}

type IncreaseQuantityCommand struct {
	BaseCommand
	Key model.LineKey `json:"key"`
}

func NewIncreaseQuantityCommand(key model.LineKey) *IncreaseQuantityCommand {
	return &IncreaseQuantityCommand{BaseCommand: NewBaseCommand(), Key: key}
}

func (c *IncreaseQuantityCommand) Type() CommandType {
	return IncreaseQuantityCommandName
}

type DecreaseQuantityCommand struct {
	BaseCommand
	Key model.LineKey `json:"key"`
}

func NewDecreaseQuantityCommand(key model.LineKey) *DecreaseQuantityCommand {
	return &DecreaseQuantityCommand{BaseCommand: NewBaseCommand(), Key: key}
}

func (c *DecreaseQuantityCommand) Type() CommandType {
	return DecreaseQuantityCommandName
}

type ApplyPromoCodeCommand struct {
	BaseCommand
	Code string `json:"code"`
}

func NewApplyPromoCodeCommand(code string) *ApplyPromoCodeCommand {
	return &ApplyPromoCodeCommand{BaseCommand: NewBaseCommand(), Code: code}
}

func (c *ApplyPromoCodeCommand) Type() CommandType {
	return ApplyPromoCodeCommandName
}

// 清空整個購物車
type ClearCartCommand struct {
	BaseCommand
}

func NewClearCartCommand() *ClearCartCommand {
	return &ClearCartCommand{BaseCommand: NewBaseCommand()}
}

func (c *ClearCartCommand) Type() CommandType {
	return ClearCartCommandName
}
