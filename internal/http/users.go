package http

import (
	"encoding/json"
	"net/http"

	"github.com/japama/watercontract/internal/service"
)

// ListUsers lista todos os usuários.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

// GetUser busca um usuário.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// UpdateUser altera nome, sobrenome e username; e-mail, senha e papel são recusados.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var payload struct {
		service.ProfileInput
		Email    json.RawMessage `json:"email"`
		Password json.RawMessage `json:"password"`
		Role     json.RawMessage `json:"role"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if payload.Email != nil || payload.Password != nil || payload.Role != nil {
		writeServiceError(w, r, service.ErrReadOnlyField)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, payload.ProfileInput)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
