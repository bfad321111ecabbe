package http

import (
	"net/http"
	"strconv"

	"github.com/dejobratic/snackbar/internal/pos/app/queries"
)

func (h *Handler) totalSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.service.TotalSales(r.Context(), queries.TotalSales{Start: q.Get("start"), End: q.Get("end")})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	var query queries.TopProducts
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "n must be an integer")
			return
		}
		query.N = n
	}

	products, err := h.service.TopProducts(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}
