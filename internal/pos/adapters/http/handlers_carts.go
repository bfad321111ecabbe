package http

import (
	"net/http"

	"github.com/dejobratic/snackbar/internal/pos/app/commands"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) openCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]any{"cart": h.service.OpenCart(r.Context())})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *Handler) discardCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DiscardCart(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var cmd commands.AddToCart
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	cmd.CartID = chi.URLParam(r, "cartID")

	cart, err := h.service.AddToCart(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveFromCart(r.Context(), commands.RemoveFromCart{
		CartID:    chi.URLParam(r, "cartID"),
		ProductID: chi.URLParam(r, "productID"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	key := idempotencyKey(r, "checkout:"+cartID)
	unlock := h.keys.lock(key)
	defer unlock()

	if h.replay(w, r, key) {
		return
	}

	var cmd commands.Checkout
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	cmd.CartID = cartID

	order, err := h.service.Checkout(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondIdempotent(w, r, key, http.StatusCreated, order.ID, map[string]any{"order": order})
}
