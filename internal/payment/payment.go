// Package payment 建立第三方付款元件所需的初始化參數
//
// 付款本身在第三方完成，這裡只負責金額換算與參數組裝，
// 付款結果只有成功 / 關閉兩種回呼，不做伺服器端驗證。
package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UsdToNgnRate 固定匯率，不會即時更新
var UsdToNgnRate = decimal.NewFromInt(1650)

const DefaultCurrency = "NGN"

var ErrMissingEmail = errors.New("payment email is required")

// Request 付款元件初始化參數
type Request struct {
	PublicKey        string `json:"public_key"`
	Reference        string `json:"reference"`
	AmountMinorUnits int64  `json:"amount"`
	Email            string `json:"email"`
	Currency         string `json:"currency"`
}

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeClosed:
		return "closed"
	default:
		return "Outcome(" + strconv.Itoa(int(o)) + ")"
	}
}

type Config struct {
	PublicKey string
	Currency  string
	Rate      decimal.Decimal
}

type Gateway struct {
	publicKey string
	currency  string
	rate      decimal.Decimal
	now       func() time.Time
}

func NewGateway(cfg Config) *Gateway {
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	rate := cfg.Rate
	if rate.IsZero() {
		rate = UsdToNgnRate
	}
	return &Gateway{
		publicKey: cfg.PublicKey,
		currency:  currency,
		rate:      rate,
		now:       time.Now,
	}
}

func (g *Gateway) Rate() decimal.Decimal {
	return g.rate
}

func (g *Gateway) Currency() string {
	return g.currency
}

// Convert 購物車幣別金額換算為付款幣別
func (g *Gateway) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(g.rate)
}

// MinorUnits 主幣別 * 100 後四捨五入
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// NewRequest amount 為已換算的付款幣別金額，reference 使用當下 unix 毫秒
func (g *Gateway) NewRequest(email string, amount decimal.Decimal) (Request, error) {
	if strings.TrimSpace(email) == "" {
		return Request{}, ErrMissingEmail
	}
	if amount.IsNegative() {
		return Request{}, fmt.Errorf("payment amount must not be negative: %s", amount)
	}
	return Request{
		PublicKey:        g.publicKey,
		Reference:        strconv.FormatInt(g.now().UnixMilli(), 10),
		AmountMinorUnits: MinorUnits(amount),
		Email:            email,
		Currency:         g.currency,
	}, nil
}
