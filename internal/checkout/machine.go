// Package checkout 結帳流程狀態機
//
//	ShippingInfo --submit--> Payment --success--> Confirmed
//	Payment --back--> ShippingInfo
//
// Confirmed 為終點，不能再往回或重複觸發。
package checkout

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

var (
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrSessionNotFound   = errors.New("checkout session not found")
)

type Trigger string

const (
	TriggerSubmitShipping Trigger = "submit_shipping"
	TriggerBack           Trigger = "back"
	TriggerPaymentSuccess Trigger = "payment_success"
)

var transitions = map[model.Step]map[Trigger]model.Step{
	model.StepShippingInfo: {
		TriggerSubmitShipping: model.StepPayment,
	},
	model.StepPayment: {
		TriggerBack:           model.StepShippingInfo,
		TriggerPaymentSuccess: model.StepConfirmed,
	},
}

// Next 查表，不在表內的組合一律拒絕
func Next(from model.Step, trigger Trigger) (model.Step, error) {
	if to, ok := transitions[from][trigger]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, from)
}

func CanTrigger(from model.Step, trigger Trigger) bool {
	_, ok := transitions[from][trigger]
	return ok
}
