package http

import (
	"net/http"

	"github.com/japama/watercontract/internal/inspection"
)

// CreateReport registra uma inspeção.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var in inspection.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	report, err := h.reports.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, report)
}

// ListReports lista os reportes; aceita ?house_id=.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	houseID, err := queryID(r, "house_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var reports []inspection.Report
	if houseID != nil {
		reports, err = h.reports.ByHouse(r.Context(), *houseID)
	} else {
		reports, err = h.reports.List(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// HouseReports lista os reportes de uma casa.
func (h *Handler) HouseReports(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	reports, err := h.reports.ByHouse(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// GetReport busca um reporte.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// UpdateReport altera data, comentários ou casa do reporte.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in inspection.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	report, err := h.reports.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// DeleteReport remove um reporte.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.reports.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Report deleted"})
}
