package http

import (
	"net/http"

	"github.com/dejobratic/snackbar/internal/pos/app/commands"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"customers": h.service.ListCustomers(r.Context())})
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (h *Handler) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var cmd commands.RegisterCustomer
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	customer, err := h.service.RegisterCustomer(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpdateCustomer
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	cmd.CustomerID = chi.URLParam(r, "customerID")

	customer, err := h.service.UpdateCustomer(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (h *Handler) customerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.CustomerOrders(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
