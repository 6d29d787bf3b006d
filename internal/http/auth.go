package http

import (
	"errors"
	"net/http"

	"github.com/japama/watercontract/internal/apperr"
	httpmiddleware "github.com/japama/watercontract/internal/http/middleware"
	"github.com/japama/watercontract/internal/service"
)

// Login autentica por e-mail e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// verificationModeHeader informa ao painel qual artefato foi enviado (link, code ou none).
const verificationModeHeader = "X-Verification-Mode"

// Register cadastra um usuário; restrito a administradores.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set(verificationModeHeader, result.Verification)
	WriteJSON(w, http.StatusCreated, result.User)
}

// VerifyEmail confirma o e-mail pelo token do link.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.VerifyEmailToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Email verified successfully",
		"user":    user,
	})
}

// VerifyCode confirma o e-mail pelo código de seis dígitos.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.auth.VerifyCode(r.Context(), payload.Email, payload.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Email verified successfully",
		"user":    user,
	})
}

// ResendVerification reemite o artefato de verificação. Conta inexistente ou
// já verificada responde 400.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}

	err := h.auth.ResendVerification(r.Context(), payload.Email)
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrAlreadyVerified):
		appErr, _ := apperr.As(err)
		WriteError(w, http.StatusBadRequest, "VALIDATION", appErr.Message, nil)
		return
	case err != nil:
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Verification sent"})
}

// Me devolve o perfil do usuário da sessão.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), httpmiddleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// Logout revoga o token apresentado.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), httpmiddleware.Claims(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
