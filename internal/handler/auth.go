package handler

import (
	"net/http"

	"github.com/stackover-dev/stackover/internal/domain"
	"github.com/stackover-dev/stackover/internal/middleware"
	"github.com/stackover-dev/stackover/internal/utils"
)

type registerRequest struct {
	Name     string `validate:"required" json:"name"`
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
}

type credentials struct {
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
}

type resetRequest struct {
	Email string `validate:"required" json:"email"`
}

type resetConfirmRequest struct {
	Email       string `validate:"required" json:"email"`
	Code        string `validate:"required" json:"code"`
	NewPassword string `validate:"required" json:"new_password"`
}

type userResponse struct {
	Id    domain.UserId `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.auth.Register(body.Name, body.Email, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{Id: user.Id, Name: user.Name, Email: user.Email})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := utils.DecodeValidate(r.Body, &creds); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	accessToken, err := h.auth.Login(domain.Credentials{Email: creds.Email, Password: creds.Password})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(accessToken, int(h.cfg.JwtTTL().Seconds())))
	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

// Logout revokes the current token and clears the session cookie. It
// answers 200 even without a valid token so a stale browser session can
// always be cleaned up.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var tokenString string
	if cookie, err := r.Cookie(middleware.CookieName); err == nil {
		tokenString = cookie.Value
	} else if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		tokenString = auth[7:]
	}

	if tokenString != "" {
		if err := h.auth.Logout(tokenString); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("You logged out"))
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body resetRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.RequestPasswordReset(body.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Reset code sent"))
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body resetConfirmRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.ConfirmPasswordReset(body.Email, body.Code, body.NewPassword); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Password updated. You can login now"))
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Path:     "/",
		Name:     middleware.CookieName,
		Value:    value,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
