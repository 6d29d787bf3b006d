package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/japama/watercontract/internal/apperr"
)

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":  nil,
		"error": body,
	})
}

// writeAppError traduz um apperr para o envelope; erros não tipados viram 500.
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindDependency {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	writeError(w, apperr.HTTPStatus(appErr.Kind), apperr.ResponseCode(appErr.Kind), appErr.Message, appErr.Details)
}
