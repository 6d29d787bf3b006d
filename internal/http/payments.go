package http

import (
	"net/http"

	"github.com/japama/watercontract/internal/billing"
	httpmiddleware "github.com/japama/watercontract/internal/http/middleware"
)

// CollectPayment registra o cobro e retira a casa do padrón.
func (h *Handler) CollectPayment(w http.ResponseWriter, r *http.Request) {
	var in billing.CollectInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	payment, err := h.payments.Collect(r.Context(), in, httpmiddleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, payment)
}

// ListPayments lista todos os pagos.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, payments)
}

// GetPayment busca um pago.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	payment, err := h.payments.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, payment)
}

// SubdivisionPayments lista os pagos de um fraccionamiento.
func (h *Handler) SubdivisionPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	payments, err := h.payments.BySubdivision(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, payments)
}

// CobradorPayments lista os pagos recebidos por um cobrador.
func (h *Handler) CobradorPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	payments, err := h.payments.ByCobrador(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, payments)
}
