package checkout

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

var (
	// FreeDeliveryThreshold 小計需「大於」此金額才免運
	FreeDeliveryThreshold = decimal.NewFromInt(100)
	StandardDeliveryFee   = decimal.NewFromInt(15)
)

func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return StandardDeliveryFee
}

// Summarize 結帳金額，運費依免運門檻重新計算，折扣沿用購物車
func Summarize(cart model.CartState, rate decimal.Decimal, currency string) model.OrderSummary {
	delivery := DeliveryFee(cart.Subtotal)
	total := cart.Subtotal.Sub(cart.DiscountAmount).Add(delivery)
	return model.OrderSummary{
		Subtotal:       cart.Subtotal,
		DiscountAmount: cart.DiscountAmount,
		DeliveryFee:    delivery,
		Total:          total,
		ConversionRate: rate,
		ConvertedTotal: total.Mul(rate),
		Currency:       currency,
	}
}
