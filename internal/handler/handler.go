package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/stackover-dev/stackover/internal/config"
	internal_errors "github.com/stackover-dev/stackover/internal/errors"
	"github.com/stackover-dev/stackover/internal/logger"
	"github.com/stackover-dev/stackover/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth      service.AuthService
	questions service.QuestionService
	cfg       *config.Config
	health    Pinger
}

func New(auth service.AuthService, questions service.QuestionService, cfg *config.Config, health Pinger) *Handler {
	return &Handler{auth: auth, questions: questions, cfg: cfg, health: health}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, internal_errors.BadRequest("Invalid " + paramName + ": must be an integer")
	}
	return val, nil
}
