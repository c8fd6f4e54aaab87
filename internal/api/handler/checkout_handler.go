package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/checkout"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/payment"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CheckoutHandler struct {
	service checkout.IService
}

func NewCheckoutHandler(service checkout.IService) *CheckoutHandler {
	if service == nil {
		panic("checkout service cannot be nil")
	}
	return &CheckoutHandler{service: service}
}

type PaymentRequestResponse struct {
	payment.Request
	DisplayAmount string `json:"display_amount,omitempty"`
}

// ShippingRequest 表單輸入，password 只收不回
type ShippingRequest struct {
	model.ShippingInfo
	Password string `json:"password"`
}

func (req ShippingRequest) toShippingInfo() model.ShippingInfo {
	info := req.ShippingInfo
	info.Password = req.Password
	return info
}

type PaymentSuccessRequest struct {
	Reference string `json:"reference"`
}

func (h *CheckoutHandler) writeSession(w http.ResponseWriter, status int, session *model.CheckoutSession, err error) {
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, status, session)
}

// Begin POST /checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Begin(r.Context(), sessionID(r))
	h.writeSession(w, http.StatusCreated, session, err)
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), sessionID(r))
	h.writeSession(w, http.StatusOK, session, err)
}

// UpdateShipping PUT /checkout/shipping 只暫存表單，不驗證
func (h *CheckoutHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequest
	if err := requireJSON(w, r, &req); err != nil {
		response.WriteError(w, err)
		return
	}
	session, err := h.service.UpdateShipping(r.Context(), sessionID(r), req.toShippingInfo())
	h.writeSession(w, http.StatusOK, session, err)
}

// SubmitShipping POST /checkout/shipping 沒有 body 時送出已暫存的表單
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequest
	ok, err := decodeJSON(w, r, &req)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	var submitted *model.ShippingInfo
	if ok {
		info := req.toShippingInfo()
		submitted = &info
	}
	session, err := h.service.SubmitShipping(r.Context(), sessionID(r), submitted)
	h.writeSession(w, http.StatusOK, session, err)
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Back(r.Context(), sessionID(r))
	h.writeSession(w, http.StatusOK, session, err)
}

// PaymentRequest GET /checkout/payment 付款元件初始化參數
func (h *CheckoutHandler) PaymentRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.PaymentRequest(r.Context(), sessionID(r))
	if err != nil {
		response.WriteError(w, err)
		return
	}
	res := PaymentRequestResponse{Request: req}
	display, err := payment.FormatAmount(decimal.New(req.AmountMinorUnits, -2), req.Currency)
	if err != nil {
		log.Warn().Err(err).Str("currency", req.Currency).Msg("cannot format payment amount")
	} else {
		res.DisplayAmount = display
	}
	response.SuccessJSON(w, http.StatusOK, res)
}

func (h *CheckoutHandler) PaymentSucceeded(w http.ResponseWriter, r *http.Request) {
	var req PaymentSuccessRequest
	if _, err := decodeJSON(w, r, &req); err != nil {
		response.WriteError(w, err)
		return
	}
	session, err := h.service.PaymentSucceeded(r.Context(), sessionID(r), req.Reference)
	h.writeSession(w, http.StatusOK, session, err)
}

// PaymentClosed 使用者關閉付款視窗，停留在付款步驟
func (h *CheckoutHandler) PaymentClosed(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.PaymentClosed(r.Context(), sessionID(r))
	h.writeSession(w, http.StatusOK, session, err)
}

func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Abandon(r.Context(), sessionID(r)); err != nil {
		response.WriteError(w, err)
		return
	}
	response.NoContent(w)
}
