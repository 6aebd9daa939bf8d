package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stackover-dev/stackover/internal/middleware"
	"github.com/stackover-dev/stackover/internal/utils"
)

type updateProfileRequest struct {
	Name  string `validate:"required" json:"name"`
	Email string `validate:"required" json:"email"`
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	writeJSON(w, http.StatusOK, userResponse{Id: user.Id, Name: user.Name, Email: user.Email})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "userId"), "user id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body updateProfileRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	actor := middleware.GetUserFromContext(r)
	user, err := h.auth.UpdateProfile(actor, id, body.Name, body.Email)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Id: user.Id, Name: user.Name, Email: user.Email})
}
