package http

import (
	"net/http"

	"github.com/dejobratic/snackbar/internal/pos/app/commands"
	"github.com/dejobratic/snackbar/internal/pos/app/queries"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), queries.ListOrders{Status: r.URL.Query().Get("status")})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	key := idempotencyKey(r, "orders")
	unlock := h.keys.lock(key)
	defer unlock()

	if h.replay(w, r, key) {
		return
	}

	var cmd commands.CreateOrder
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondIdempotent(w, r, key, http.StatusCreated, order.ID, map[string]any{"order": order})
}

func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	var cmd commands.AddOrderItem
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	cmd.OrderID = chi.URLParam(r, "orderID")

	order, err := h.service.AddOrderItem(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) removeOrderItem(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.RemoveOrderItem(r.Context(), commands.RemoveOrderItem{
		OrderID:   chi.URLParam(r, "orderID"),
		ProductID: chi.URLParam(r, "productID"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SetOrderStatus
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	cmd.OrderID = chi.URLParam(r, "orderID")

	order, err := h.service.SetOrderStatus(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}
