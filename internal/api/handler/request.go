package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeJSON 空 body 時回傳 false
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (bool, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return false, fmt.Errorf("%w: %v", response.ErrBadRequest, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: invalid json body", response.ErrBadRequest)
	}
	return true, nil
}

// requireJSON body 不可為空
func requireJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	ok, err := decodeJSON(w, r, dst)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: request body is required", response.ErrBadRequest)
	}
	return nil
}

func idParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", response.ErrBadRequest, name)
	}
	return id, nil
}

func sessionID(r *http.Request) string {
	return middleware.SessionIDFrom(r.Context())
}
