package controllers

import (
	"net/http"

	"github.com/farhanmaulana/cetakin-backend/api/middleware"
	"github.com/farhanmaulana/cetakin-backend/api/responses"
	"github.com/farhanmaulana/cetakin-backend/api/validators"
	"github.com/farhanmaulana/cetakin-backend/internal/auth"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
)

type requestLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyLinkRequest struct {
	Token string `json:"token" validate:"required"`
}

// AuthRequestLink emails a one-time sign-in link. The response is the same
// whether or not the address has an account.
func AuthRequestLink(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload requestLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RequestLink(r.Context(), payload.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{
			"status": "link_sent",
		})
	}
}

// AuthVerifyLink exchanges a link token for an access token.
func AuthVerifyLink(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload verifyLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signIn, err := svc.Verify(r.Context(), payload.Token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, signIn)
	}
}

// AuthLogout revokes the session behind the caller's access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
