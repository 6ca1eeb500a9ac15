package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// writeError centralizes domain error translation to HTTP responses so every
// handler emits the same JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(toHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(code),
		"message": publicMessage(code, err),
	})
}

func toHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeInvalidCredentials, dErrors.CodeInvalidOrExpired,
		dErrors.CodeBiometricMismatch, dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeBiometricNotEnabled, dErrors.CodeStepUpRequired:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps infrastructure detail out of responses. Auth failures
// already carry deliberately generic messages; everything else collapses.
func publicMessage(code dErrors.Code, err error) string {
	switch code {
	case dErrors.CodeTimeout, dErrors.CodeUnavailable, dErrors.CodeInternal:
		return "service temporarily unavailable"
	}
	var derr *dErrors.Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return "request failed"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
