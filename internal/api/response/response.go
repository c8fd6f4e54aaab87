package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/checkout"
	"github.com/RoyceAzure/lab/storefront/internal/domain/validate"
	"github.com/RoyceAzure/lab/storefront/internal/payment"
	"github.com/RoyceAzure/lab/storefront/internal/profile"
	"github.com/rs/zerolog/log"
)

var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("too many requests")
)

type Response struct {
	Data any `json:"data"`
}

type ResponseError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func SuccessJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func ErrorJSON(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	writeJSON(w, status, ResponseError{Error: msg, Fields: fields})
}

// StatusOf 將服務層錯誤對應到 HTTP 狀態碼
func StatusOf(err error) int {
	var verr *validate.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, payment.ErrMissingEmail):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrSessionNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, cart.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError 5xx 不對外揭露內部錯誤內容
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unhandled error")
		ErrorJSON(w, status, http.StatusText(status), nil)
		return
	}

	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		ErrorJSON(w, status, err.Error(), verr.Fields)
		return
	}
	ErrorJSON(w, status, err.Error(), nil)
}
