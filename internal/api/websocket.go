package api

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gorilla/websocket"

	"github.com/generals-server/core/internal/apierr"
	"github.com/generals-server/core/internal/roomstate"
	"github.com/generals-server/core/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, validate origin more strictly
		return true
	},
}

// WebSocketHandler upgrades the session endpoint. Identity comes from the
// mandatory user_id/username query parameters; a token parameter, when a
// JWT manager is configured and the client supplies one, is validated as a
// corroborating credential but never substitutes for them.
func (r *Router) WebSocketHandler(w http.ResponseWriter, req *http.Request) {
	ctx, span := otel.Tracer("websocket-server").Start(req.Context(), "WebSocketConnection")
	defer span.End()
	_ = ctx

	userID := req.URL.Query().Get("user_id")
	if userID == "" {
		apierr.RespondError(w, http.StatusBadRequest, "Missing user_id")
		span.SetStatus(codes.Error, "Missing user_id")
		return
	}
	username := req.URL.Query().Get("username")
	if username == "" {
		apierr.RespondError(w, http.StatusBadRequest, "Missing username")
		span.SetStatus(codes.Error, "Missing username")
		return
	}
	if err := roomstate.ValidateDisplayName(username); err != nil {
		apierr.RespondError(w, http.StatusBadRequest, "Invalid username")
		span.SetStatus(codes.Error, "Invalid username")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	if token := req.URL.Query().Get("token"); token != "" && r.jwtMgr != nil {
		claims, err := r.jwtMgr.ValidateToken(token)
		if err != nil || claims.UserID != userID || claims.Username != username {
			apierr.RespondError(w, http.StatusUnauthorized, "Invalid token")
			span.SetStatus(codes.Error, fmt.Sprintf("Invalid token: %v", err))
			return
		}
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("Failed to upgrade WebSocket connection: %v", err))
		return
	}

	sess := session.New(conn, userID, username, r.core, r.logger)
	if err := r.core.Attach(userID, username, sess); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("Attach rejected: %v", err))
		conn.WriteJSON(map[string]string{"type": "error", "message": err.Error()})
		conn.Close()
		return
	}

	span.SetStatus(codes.Ok, "WebSocket connection established")
	sess.Start()
}
