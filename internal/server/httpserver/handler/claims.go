package handler

import (
	"net/http"

	"github.com/yndnr/playgate/internal/core/domain"
	"github.com/yndnr/playgate/internal/core/service"
)

// EchoClaims answers 200 with the user claim of the verified credential,
// byte for byte as the issuer encoded it.
func EchoClaims(w http.ResponseWriter, r *http.Request) error {
	claims, ok := service.ClaimsFromContext(r.Context())
	if !ok || !claims.HasUser() {
		return domain.ErrUnauthorized
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(claims.User)
	return err
}
