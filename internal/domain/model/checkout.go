package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate go tool stringer -type=Step -trimprefix=Step

// Step 結帳流程步驟
//
//	ShippingInfo -> Payment -> Confirmed
//	Payment -> ShippingInfo (返回上一步)
type Step int

const (
	StepShippingInfo Step = iota
	StepPayment
	StepConfirmed
)

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	switch string(text) {
	case StepShippingInfo.String():
		*s = StepShippingInfo
	case StepPayment.String():
		*s = StepPayment
	case StepConfirmed.String():
		*s = StepConfirmed
	default:
		return fmt.Errorf("unknown checkout step %q", text)
	}
	return nil
}

const DefaultCountry = "Nigeria"

// ShippingInfo 結帳表單
// Password 只在結帳流程內保存，不會序列化輸出
type ShippingInfo struct {
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	Country       string `json:"country"`
	CreateAccount bool   `json:"create_account"`
	Password      string `json:"-"`
}

// FullName 名 + 空白 + 姓
func (s ShippingInfo) FullName() string {
	return s.FirstName + " " + s.LastName
}

// OrderSummary 結帳金額
// Total 以購物車幣別計算，ConvertedTotal 為固定匯率換算後的付款幣別金額
type OrderSummary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	ConvertedTotal decimal.Decimal `json:"converted_total"`
	Currency       string          `json:"currency"`
}

func (o OrderSummary) FreeDelivery() bool {
	return o.DeliveryFee.IsZero()
}

type CheckoutSession struct {
	ID             string       `json:"id"`
	Step           Step         `json:"step"`
	Guest          bool         `json:"guest"`
	Shipping       ShippingInfo `json:"shipping"`
	Summary        OrderSummary `json:"summary"`
	OrderReference string       `json:"order_reference,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
