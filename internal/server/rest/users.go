package rest

import (
	"net/http"

	"github.com/dmitrijs2005/drivenpass/internal/logging"
)

// UserHandler serves sign-up, sign-in and account erasure.
type UserHandler struct {
	Users UserService
	Log   logging.Logger
}

// SignUp handles POST /user/auth/sign-up.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msgs := validateSignUp(req); len(msgs) > 0 {
		writeValidation(w, msgs)
		return
	}

	user, err := h.Users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// SignIn handles POST /user/auth/sign-in.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msgs := validateSignIn(req); len(msgs) > 0 {
		writeValidation(w, msgs)
		return
	}

	token, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Erase handles DELETE /user/erase. The body must repeat the password.
func (h *UserHandler) Erase(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msgs := validatePassword(req); len(msgs) > 0 {
		writeValidation(w, msgs)
		return
	}

	if err := h.Users.Erase(r.Context(), mustIdentity(r), req.Password); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
