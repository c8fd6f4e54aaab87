package command

import "github.com/google/uuid"

type BaseCommand struct {
	commandID string
}

func NewBaseCommand() BaseCommand {
	return BaseCommand{commandID: uuid.NewString()}
}

func (c *BaseCommand) GetID() string {
	return c.commandID
}

type CommandType string

type Command interface {
	Type() CommandType
	GetID() string
}
