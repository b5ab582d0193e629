package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cpbyrne/ostaa/app/services"
	"github.com/cpbyrne/ostaa/pkg/bind"
	"github.com/cpbyrne/ostaa/pkg/logger"
	"github.com/cpbyrne/ostaa/pkg/response"
)

// AccountController handles registration, login, and credential changes.
type AccountController struct {
	accounts *services.AccountService
}

func NewAccountController() *AccountController {
	return &AccountController{accounts: services.NewAccountService()}
}

// NewAccountControllerWith injects a pre-built service (tests).
func NewAccountControllerWith(accounts *services.AccountService) *AccountController {
	return &AccountController{accounts: accounts}
}

type credentialsInput struct {
	Username string `json:"username" validate:"required,alpha_dash,min=2,max=50"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// Register creates a new account. 201 on success, 409 when the username is
// taken, 422 on validation failure.
func (c *AccountController) Register(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.accounts.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info("user registered", "username", user.Username)
	response.Created(w, user)
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and answers {"ok":true|false}. Unknown user
// and wrong password are indistinguishable on the wire.
func (c *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	ok, err := c.accounts.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.Success(w, map[string]bool{"ok": ok})
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=4,max=72"`
}

// ChangePassword replaces a user's password after verifying the current one.
func (c *AccountController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var in changePasswordInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	if err := c.accounts.ChangePassword(r.Context(), username, in.CurrentPassword, in.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	response.Success(w, map[string]bool{"ok": true})
}
