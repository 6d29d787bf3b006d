package http

import (
	"encoding/binary"
	"errors"
	"net/http"
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/japama/watercontract/internal/http/middleware"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/service"
	"github.com/japama/watercontract/internal/util"
)

// PasskeyRegisterStart abre a cerimônia de cadastro de passkey do usuário logado.
func (h *Handler) PasskeyRegisterStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpmiddleware.UserID(ctx)

	user, err := h.auth.GetUserByID(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	passkeys, err := h.auth.ListPasskeys(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	waUser := newWebAuthnUser(user, passkeys)
	exclusions := make([]protocol.CredentialDescriptor, 0, len(waUser.credentials))
	for _, cred := range waUser.credentials {
		exclusions = append(exclusions, cred.Descriptor())
	}

	opts, sessionData, err := h.webauthn.BeginRegistration(
		waUser,
		webauthn.WithExclusions(exclusions),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{UserVerification: protocol.VerificationRequired}),
	)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	sessionID := util.NewSessionID()
	if err := h.ceremonies.StoreCeremony(ctx, service.PasskeyRegisterPrefix, sessionID, sessionData, userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("passkey: falha ao guardar cerimônia")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"session": sessionID,
		"options": map[string]any{"publicKey": opts.Response},
	})
}

// PasskeyRegisterFinish valida a resposta do autenticador e grava a credencial.
func (h *Handler) PasskeyRegisterFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionData, userID, ok := h.consumeCeremony(w, r, service.PasskeyRegisterPrefix)
	if !ok {
		return
	}
	if userID != httpmiddleware.UserID(ctx) {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Invalid or expired session", nil)
		return
	}

	user, err := h.auth.GetUserByID(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	passkeys, err := h.auth.ListPasskeys(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	creation, err := protocol.ParseCredentialCreationResponseBody(r.Body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Invalid authenticator response", nil)
		return
	}

	credential, err := h.webauthn.CreateCredential(newWebAuthnUser(user, passkeys), *sessionData, creation)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	transports := make([]string, 0, len(credential.Transport))
	for _, t := range credential.Transport {
		transports = append(transports, string(t))
	}

	if _, err := h.auth.CreatePasskey(ctx, repo.CreatePasskeyParams{
		UserID:       userID,
		CredentialID: credential.ID,
		PublicKey:    credential.PublicKey,
		SignCount:    credential.Authenticator.SignCount,
		Transports:   transports,
		AAGUID:       credential.Authenticator.AAGUID,
		Cloned:       credential.Authenticator.CloneWarning,
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// PasskeyLoginStart abre a cerimônia de login para o e-mail informado.
func (h *Handler) PasskeyLoginStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if strings.TrimSpace(payload.Email) == "" {
		writeServiceError(w, r, service.ErrEmailRequired)
		return
	}

	ctx := r.Context()
	user, err := h.auth.GetUserByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "Passkey not configured", nil)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	passkeys, err := h.auth.ListPasskeys(ctx, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(passkeys) == 0 {
		WriteError(w, http.StatusUnauthorized, "AUTH", "Passkey not configured", nil)
		return
	}

	opts, sessionData, err := h.webauthn.BeginLogin(newWebAuthnUser(user, passkeys))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	sessionID := util.NewSessionID()
	if err := h.ceremonies.StoreCeremony(ctx, service.PasskeyLoginPrefix, sessionID, sessionData, user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("passkey: falha ao guardar cerimônia")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"session": sessionID,
		"options": map[string]any{"publicKey": opts.Response},
	})
}

// PasskeyLoginFinish valida a asserção e emite a sessão.
func (h *Handler) PasskeyLoginFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionData, userID, ok := h.consumeCeremony(w, r, service.PasskeyLoginPrefix)
	if !ok {
		return
	}

	user, err := h.auth.GetUserByID(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	passkeys, err := h.auth.ListPasskeys(ctx, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	assertion, err := protocol.ParseCredentialRequestResponseBody(r.Body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Invalid authenticator response", nil)
		return
	}

	credential, err := h.webauthn.ValidateLogin(newWebAuthnUser(user, passkeys), *sessionData, assertion)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
		return
	}

	stored, err := h.auth.GetPasskeyByCredentialID(ctx, credential.ID)
	if err != nil || stored.UserID != user.ID {
		WriteError(w, http.StatusUnauthorized, "AUTH", "Unknown credential", nil)
		return
	}

	if err := h.auth.UpdatePasskeyCounter(ctx, stored.ID, credential.Authenticator.SignCount, credential.Authenticator.CloneWarning); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.auth.LoginWithUser(ctx, user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) consumeCeremony(w http.ResponseWriter, r *http.Request, prefix string) (*webauthn.SessionData, int64, bool) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "session is required", nil)
		return nil, 0, false
	}
	data, userID, err := h.ceremonies.ConsumeCeremony(r.Context(), prefix, sessionID)
	if err != nil {
		if !errors.Is(err, service.ErrCeremonyNotFound) {
			log.Error().Err(err).Msg("passkey: falha ao ler cerimônia")
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Invalid or expired session", nil)
		return nil, 0, false
	}
	return data, userID, true
}

type webAuthnUser struct {
	id          int64
	name        string
	displayName string
	credentials []webauthn.Credential
}

func newWebAuthnUser(user repo.User, passkeys []repo.Passkey) *webAuthnUser {
	return &webAuthnUser{
		id:          user.ID,
		name:        user.Email,
		displayName: strings.TrimSpace(user.Name + " " + user.Lastname),
		credentials: toWebauthnCredentials(passkeys),
	}
}

func (u *webAuthnUser) WebAuthnID() []byte {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, uint64(u.id))
	return id
}

func (u *webAuthnUser) WebAuthnName() string {
	return u.name
}

func (u *webAuthnUser) WebAuthnDisplayName() string {
	return u.displayName
}

func (u *webAuthnUser) WebAuthnIcon() string {
	return ""
}

func (u *webAuthnUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

func toWebauthnCredentials(passkeys []repo.Passkey) []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(passkeys))
	for _, pk := range passkeys {
		cred := webauthn.Credential{
			ID:        append([]byte(nil), pk.CredentialID...),
			PublicKey: append([]byte(nil), pk.PublicKey...),
			Transport: toAuthenticatorTransports(pk.Transports),
		}
		cred.Authenticator.SignCount = pk.SignCount
		cred.Authenticator.CloneWarning = pk.Cloned
		if len(pk.AAGUID) > 0 {
			cred.Authenticator.AAGUID = append([]byte(nil), pk.AAGUID...)
		}
		creds = append(creds, cred)
	}
	return creds
}

func toAuthenticatorTransports(values []string) []protocol.AuthenticatorTransport {
	if len(values) == 0 {
		return nil
	}
	transports := make([]protocol.AuthenticatorTransport, 0, len(values))
	for _, value := range values {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "usb":
			transports = append(transports, protocol.USB)
		case "nfc":
			transports = append(transports, protocol.NFC)
		case "ble":
			transports = append(transports, protocol.BLE)
		case "internal":
			transports = append(transports, protocol.Internal)
		case "smart-card":
			transports = append(transports, protocol.SmartCard)
		case "hybrid", "cable":
			transports = append(transports, protocol.Hybrid)
		}
	}
	return transports
}
