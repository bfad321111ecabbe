package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dejobratic/snackbar/internal/pos/app"
	"github.com/dejobratic/snackbar/internal/pos/domain"
)

type errorResponse struct {
	Error   string      `json:"error"`
	Kind    domain.Kind `json:"kind,omitempty"`
	Details any         `json:"details,omitempty"`
}

type stockDetails struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
	InCart    int    `json:"in_cart,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusForKind maps error kinds to HTTP status codes.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindDuplicate, domain.KindInsufficientStock, domain.KindProductUnavailable:
		return http.StatusConflict
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case app.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service failure. Unclassified errors are hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	kind, ok := app.KindOf(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := errorResponse{Error: err.Error(), Kind: kind}
	if kind == app.KindPersistence {
		resp.Error = "state could not be persisted"
	}

	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		resp.Details = stockDetails{
			ProductID: stockErr.ProductID,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
			InCart:    stockErr.Staged,
		}
	}

	writeJSON(w, statusForKind(kind), resp)
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
