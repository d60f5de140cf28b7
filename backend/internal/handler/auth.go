package handler

import (
	"net/http"

	"github.com/deskfolio/deskfolio/shared/api"
	"github.com/deskfolio/deskfolio/shared/domain"
	"github.com/deskfolio/deskfolio/shared/middleware"
	"github.com/deskfolio/deskfolio/shared/utils"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.auth.SignIn(r.Context(), domain.Credentials{Email: body.Email, Password: body.Password})
	if err != nil {
		middleware.ClearSessionCookie(w, h.cfg.Public.SecureCookies)
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	maxAge := int(h.cfg.JwtTTL().Seconds())
	if err := middleware.SetCSRFCookie(w, maxAge, h.cfg.Public.SecureCookies); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     middleware.AccessTokenCookie,
		Value:    result.Token,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, api.LoginResponse{Message: "You logged in", AccessToken: result.Token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r)
	if session == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	if err := h.auth.SignOut(r.Context(), *session); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	middleware.ClearSessionCookie(w, h.cfg.Public.SecureCookies)
	middleware.ClearCSRFCookie(w, h.cfg.Public.SecureCookies)
	utils.WriteJSON(w, http.StatusOK, api.LogoutResponse{Message: "You logged out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r)
	if session == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	state, isAdmin := h.auth.Me(*session)
	utils.WriteJSON(w, http.StatusOK, api.MeResponse{Email: session.Email, State: state.String(), IsAdmin: isAdmin})
}

// PasswordReset answers the same way whether or not the address is known.
func (h *Handler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var body api.PasswordResetRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), body.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Password reset email sent! Check your inbox."})
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body api.ConfirmPasswordResetRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.ConfirmPasswordReset(r.Context(), body.Email, body.ConfirmationCode, body.NewPassword); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Password updated. You can login now"})
}
