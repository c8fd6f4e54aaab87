package handler

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/command"
)

type CartHandler struct {
	store   cart.IStore
	catalog catalog.IQueryLayer
}

func NewCartHandler(store cart.IStore, query catalog.IQueryLayer) *CartHandler {
	if store == nil || query == nil {
		panic("cart store and query layer cannot be nil")
	}
	return &CartHandler{store: store, catalog: query}
}

type AddItemRequest struct {
	ProductID int    `json:"product_id"`
	Quantity  *int   `json:"quantity,omitempty"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type LineRequest struct {
	ProductID int    `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (l LineRequest) Key() model.LineKey {
	return model.LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

type PromoRequest struct {
	Code string `json:"code"`
}

func (h *CartHandler) dispatch(w http.ResponseWriter, r *http.Request, cmd command.Command) {
	state, err := h.store.Dispatch(r.Context(), sessionID(r), cmd)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, state)
}

func (h *CartHandler) decodeLine(w http.ResponseWriter, r *http.Request) (LineRequest, bool) {
	var req LineRequest
	if err := requireJSON(w, r, &req); err != nil {
		response.WriteError(w, err)
		return req, false
	}
	if req.ProductID <= 0 {
		response.WriteError(w, fmt.Errorf("%w: product_id is required", response.ErrBadRequest))
		return req, false
	}
	return req, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Get(r.Context(), sessionID(r))
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, state)
}

// AddItem 價格與標題以商品目錄為準，未帶數量時加入一件
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := requireJSON(w, r, &req); err != nil {
		response.WriteError(w, err)
		return
	}
	if req.ProductID <= 0 {
		response.WriteError(w, fmt.Errorf("%w: product_id is required", response.ErrBadRequest))
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	h.dispatch(w, r, command.NewAddItemCommand(*product, quantity, req.Size, req.Color))
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLine(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, command.NewSetQuantityCommand(req.Key(), req.Quantity))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLine(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, command.NewRemoveItemCommand(req.Key()))
}

func (h *CartHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLine(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, command.NewIncreaseQuantityCommand(req.Key()))
}

func (h *CartHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLine(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, command.NewDecreaseQuantityCommand(req.Key()))
}

func (h *CartHandler) ApplyPromoCode(w http.ResponseWriter, r *http.Request) {
	var req PromoRequest
	if err := requireJSON(w, r, &req); err != nil {
		response.WriteError(w, err)
		return
	}
	h.dispatch(w, r, command.NewApplyPromoCodeCommand(req.Code))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, command.NewClearCartCommand())
}
