package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type CatalogHandler struct {
	query catalog.IQueryLayer
}

func NewCatalogHandler(query catalog.IQueryLayer) *CatalogHandler {
	if query == nil {
		panic("query layer cannot be nil")
	}
	return &CatalogHandler{query: query}
}

// ListProducts GET /products?category=&limit=&sort=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ProductFilter{Category: q.Get("category")}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			response.WriteError(w, fmt.Errorf("%w: invalid limit", response.ErrBadRequest))
			return
		}
		filter.Limit = limit
	}

	products, err := h.query.ListProducts(r.Context(), filter)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, catalog.SortProducts(products, catalog.ParseSortOption(q.Get("sort"))))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.WriteError(w, err)
		return
	}
	product, err := h.query.GetProduct(r.Context(), id)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, product)
}

// RelatedProducts 同分類最多四個商品
func (h *CatalogHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.WriteError(w, err)
		return
	}
	ctx := r.Context()
	product, err := h.query.GetProduct(ctx, id)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	related, err := h.query.RelatedProducts(ctx, *product, catalog.MaxRelated)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, related)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.query.ListCategories(r.Context())
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, categories)
}

type InvalidateRequest struct {
	Tags []string `json:"tags"`
}

// Invalidate 沒有 tags 時清除全部快取
func (h *CatalogHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if _, err := decodeJSON(w, r, &req); err != nil {
		response.WriteError(w, err)
		return
	}
	if err := h.query.Invalidate(r.Context(), req.Tags...); err != nil {
		response.WriteError(w, err)
		return
	}
	response.NoContent(w)
}
