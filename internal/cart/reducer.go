// Package cart 購物車狀態轉換
//
// 所有轉換函式皆為純函式：輸入舊狀態，回傳新狀態，不修改輸入。
// 每次轉換結束都會呼叫 Recalculate 從頭計算金額欄位。
package cart

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DeliveryFee 購物車層級的固定運費，不因金額減免 (免運門檻由結帳流程處理)
var DeliveryFee = decimal.NewFromInt(15)

// NewState 空購物車
func NewState() model.CartState {
	return Recalculate(model.CartState{
		Lines:        []model.CartLine{},
		DiscountRate: decimal.Zero,
	})
}

// AddItem 加入商品
// 數量為負數時視為 0，數量 0 不建立明細
func AddItem(state model.CartState, product model.Product, quantity int, size, color string) model.CartState {
	if quantity < 0 {
		quantity = 0
	}
	if quantity == 0 {
		return Recalculate(state)
	}

	key := model.LineKey{ProductID: product.ID, Size: size, Color: color}
	lines := state.CloneLines()
	if idx := state.IndexOf(key); idx >= 0 {
		lines[idx].Quantity += quantity
	} else {
		lines = append(lines, model.CartLine{
			LineKey:   key,
			Title:     product.Title,
			UnitPrice: product.Price,
			Image:     product.Image,
			Category:  product.Category,
			Quantity:  quantity,
		})
	}

	state.Lines = lines
	return Recalculate(state)
}

// RemoveItem 不存在時不做事
func RemoveItem(state model.CartState, key model.LineKey) model.CartState {
	idx := state.IndexOf(key)
	if idx < 0 {
		return Recalculate(state)
	}
	lines := state.CloneLines()
	state.Lines = append(lines[:idx], lines[idx+1:]...)
	return Recalculate(state)
}

// SetQuantity 數量小於 1 等同移除
func SetQuantity(state model.CartState, key model.LineKey, quantity int) model.CartState {
	if quantity < 1 {
		return RemoveItem(state, key)
	}
	idx := state.IndexOf(key)
	if idx < 0 {
		return Recalculate(state)
	}
	lines := state.CloneLines()
	lines[idx].Quantity = quantity
	state.Lines = lines
	return Recalculate(state)
}

func IncreaseQuantity(state model.CartState, key model.LineKey) model.CartState {
	idx := state.IndexOf(key)
	if idx < 0 {
		return Recalculate(state)
	}
	return SetQuantity(state, key, state.Lines[idx].Quantity+1)
}

// DecreaseQuantity 最少保留 1，要刪除請用 RemoveItem
func DecreaseQuantity(state model.CartState, key model.LineKey) model.CartState {
	idx := state.IndexOf(key)
	if idx < 0 || state.Lines[idx].Quantity <= 1 {
		return Recalculate(state)
	}
	return SetQuantity(state, key, state.Lines[idx].Quantity-1)
}

// Clear 清空明細並移除折扣
func Clear(state model.CartState) model.CartState {
	state.Lines = []model.CartLine{}
	state.PromoCode = ""
	state.DiscountRate = decimal.Zero
	return Recalculate(state)
}

// Recalculate 依目前明細重新計算所有衍生欄位
func Recalculate(state model.CartState) model.CartState {
	totalQuantity := 0
	subtotal := decimal.Zero
	for _, line := range state.Lines {
		totalQuantity += line.Quantity
		subtotal = subtotal.Add(line.Amount())
	}

	discount := subtotal.Mul(state.DiscountRate).Round(2)

	state.TotalQuantity = totalQuantity
	state.Subtotal = subtotal
	state.DiscountAmount = discount
	state.DeliveryFee = DeliveryFee
	state.Total = subtotal.Sub(discount).Add(DeliveryFee)
	return state
}
