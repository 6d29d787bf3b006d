package http

import (
	"net/http"

	"github.com/japama/watercontract/internal/catalog"
)

type subdivisionPayload struct {
	Name string `json:"subdivision_name"`
}

// CreateSubdivision cadastra um fraccionamiento.
func (h *Handler) CreateSubdivision(w http.ResponseWriter, r *http.Request) {
	var payload subdivisionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	sub, err := h.catalog.CreateSubdivision(r.Context(), payload.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sub)
}

// ListSubdivisions lista os fraccionamientos.
func (h *Handler) ListSubdivisions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.catalog.ListSubdivisions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, subs)
}

// GetSubdivision busca um fraccionamiento.
func (h *Handler) GetSubdivision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sub, err := h.catalog.GetSubdivision(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sub)
}

// RenameSubdivision troca o nome do fraccionamiento.
func (h *Handler) RenameSubdivision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var payload subdivisionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	sub, err := h.catalog.RenameSubdivision(r.Context(), id, payload.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sub)
}

// DeleteSubdivision remove um fraccionamiento sem dependentes.
func (h *Handler) DeleteSubdivision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.catalog.DeleteSubdivision(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Subdivision deleted"})
}

// SubdivisionHouses lista as casas do fraccionamiento.
func (h *Handler) SubdivisionHouses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	houses, err := h.catalog.SubdivisionHouses(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, houses)
}

// CreateStreet cadastra uma calle.
func (h *Handler) CreateStreet(w http.ResponseWriter, r *http.Request) {
	var in catalog.StreetInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	street, err := h.catalog.CreateStreet(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, street)
}

// ListStreets lista as calles; aceita ?subdivision_id=.
func (h *Handler) ListStreets(w http.ResponseWriter, r *http.Request) {
	subdivisionID, err := queryID(r, "subdivision_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	streets, err := h.catalog.ListStreets(r.Context(), subdivisionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, streets)
}

// GetStreet busca uma calle.
func (h *Handler) GetStreet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	street, err := h.catalog.GetStreet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, street)
}

// UpdateStreet altera nome ou fraccionamiento da calle.
func (h *Handler) UpdateStreet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in catalog.StreetInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	street, err := h.catalog.UpdateStreet(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, street)
}

// StreetHouses lista as casas da calle.
func (h *Handler) StreetHouses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	houses, err := h.catalog.StreetHouses(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, houses)
}

// CreateHouse cadastra uma casa.
func (h *Handler) CreateHouse(w http.ResponseWriter, r *http.Request) {
	var in catalog.HouseInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	house, err := h.catalog.CreateHouse(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, house)
}

// ListHouses lista todas as casas ativas.
func (h *Handler) ListHouses(w http.ResponseWriter, r *http.Request) {
	houses, err := h.catalog.ListHouses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, houses)
}

// GetHouse busca uma casa.
func (h *Handler) GetHouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	house, err := h.catalog.GetHouse(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, house)
}

// UpdateHouse altera os campos informados da casa.
func (h *Handler) UpdateHouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in catalog.HouseInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	house, err := h.catalog.UpdateHouse(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, house)
}

// DeleteHouse remove a casa.
func (h *Handler) DeleteHouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.catalog.DeleteHouse(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "House deleted"})
}
