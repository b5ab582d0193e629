package controllers

import (
	"errors"
	"net/http"

	"github.com/cpbyrne/ostaa/app/repositories"
	"github.com/cpbyrne/ostaa/app/services"
	"github.com/cpbyrne/ostaa/pkg/database"
	"github.com/cpbyrne/ostaa/pkg/logger"
	"github.com/cpbyrne/ostaa/pkg/response"
)

// respondError maps every failure kind to its own status code. "Not found"
// and "server error" must never collapse into the same signal.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.WithCtx(r.Context())

	switch {
	case database.IsNotFound(err):
		response.NotFound(w, "Not found")
	case database.IsDuplicateKey(err):
		response.Conflict(w, "Username already taken")
	case errors.Is(err, repositories.ErrAlreadySold):
		response.Conflict(w, "Item already sold")
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Error(w, http.StatusForbidden, "Invalid credentials")
	case database.IsTimeout(err):
		log.Error("store timeout", "error", err)
		response.Timeout(w)
	case database.IsUnavailable(err):
		log.Error("store unavailable", "error", err)
		response.Unavailable(w)
	default:
		log.Error("unhandled error", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
