package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/profile"
)

type ProfileHandler struct {
	service profile.IService
}

func NewProfileHandler(service profile.IService) *ProfileHandler {
	if service == nil {
		panic("profile service cannot be nil")
	}
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), sessionID(r))
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, p)
}

// Update PUT /profile 合併有值的欄位，尚未有資料時建立
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.UserProfile
	if err := requireJSON(w, r, &patch); err != nil {
		response.WriteError(w, err)
		return
	}
	ctx := r.Context()
	updated, err := h.service.Update(ctx, sessionID(r), patch)
	if errors.Is(err, profile.ErrProfileNotFound) {
		if err := h.service.Save(ctx, sessionID(r), patch); err != nil {
			response.WriteError(w, err)
			return
		}
		response.SuccessJSON(w, http.StatusCreated, patch)
		return
	}
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, updated)
}

// Delete 登出
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), sessionID(r)); err != nil {
		response.WriteError(w, err)
		return
	}
	response.NoContent(w)
}
