package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/generals-server/core/internal/apierr"
	"github.com/generals-server/core/internal/roomstate"
	"github.com/generals-server/core/internal/userstore"
)

// RegisterRequest is the user-registration body: the opaque user id plus
// the display name the store enforces uniqueness on.
type RegisterRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// RegisterResponse echoes the persisted pair; token is present only when
// a JWT manager is configured.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
	Message  string `json:"message"`
}

// HealthzHandler provides a simple health check endpoint
func (r *Router) HealthzHandler(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// RegisterHandler persists a (user_id, username) pair. 409 when either
// column conflicts, 400 on a disallowed username.
func (r *Router) RegisterHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if req.Method != http.MethodPost {
		apierr.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var rr RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&rr); err != nil {
		r.logger.Error(ctx, "Failed to decode register request: %v", err)
		apierr.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if rr.UserID == "" {
		apierr.RespondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if rr.Username == "" {
		apierr.RespondError(w, http.StatusBadRequest, "username is required")
		return
	}
	if err := roomstate.ValidateDisplayName(rr.Username); err != nil {
		apierr.RespondError(w, http.StatusBadRequest, "Invalid username")
		return
	}

	if r.db == nil {
		apierr.RespondError(w, http.StatusInternalServerError, "User store unavailable")
		return
	}

	user, err := r.db.CreateUser(ctx, rr.UserID, rr.Username)
	if errors.Is(err, userstore.ErrConflict) {
		apierr.RespondError(w, http.StatusConflict, "User ID or username already exists")
		return
	}
	if err != nil {
		r.logger.Error(ctx, "Failed to create user: %v", err)
		apierr.RespondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	resp := RegisterResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Message:  "User registered successfully",
	}
	if r.jwtMgr != nil {
		token, err := r.jwtMgr.GenerateToken(user.UserID, user.Username, 24*time.Hour)
		if err != nil {
			r.logger.Error(ctx, "Failed to mint session token: %v", err)
		} else {
			resp.Token = token
		}
	}
	apierr.RespondJSON(w, http.StatusOK, resp)
}
