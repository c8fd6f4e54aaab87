package cart

import (
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

// 前端等級的折扣碼檢查，不具任何安全性，不可當作實際授權依據
const PromoCode = "SAVE20"

var PromoDiscountRate = decimal.NewFromFloat(0.2)

// ApplyPromoCode 大小寫不拘，其他任何字串 (包含空字串) 皆取消折扣
func ApplyPromoCode(state model.CartState, code string) model.CartState {
	if strings.EqualFold(code, PromoCode) {
		state.PromoCode = PromoCode
		state.DiscountRate = PromoDiscountRate
	} else {
		state.PromoCode = ""
		state.DiscountRate = decimal.Zero
	}
	return Recalculate(state)
}
