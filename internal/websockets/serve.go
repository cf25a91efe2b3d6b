package websockets

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/api"
	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/middleware"
	"github.com/km0-cafe/restaurant-service/internal/models"
)

// allowedClientType gates feed audiences by role. Admin and verifier
// feeds carry full reservation records; the display feed carries only
// reduced verification summaries, so any authenticated account may
// subscribe to it.
func allowedClientType(role models.UserRole, t ClientType) bool {
	switch t {
	case ClientAdmin:
		return role == models.RoleAdmin
	case ClientVerifier:
		return role == models.RoleAdmin || role == models.RoleVerifier
	case ClientDisplay:
		return true
	}
	return false
}

// ServeWS upgrades the connection and joins it to the hub under the
// client_type declared in the query string.
func ServeWS(hub *Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientType := ClientType(r.URL.Query().Get("client_type"))
		if !ValidClientType(clientType) {
			api.Error(w, apperr.New(apperr.KindValidation, "client_type must be admin, verifier or display"))
			return
		}

		user, ok := middleware.GetUser(r.Context())
		if !ok {
			api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
			return
		}
		if !allowedClientType(user.Role, clientType) {
			api.Error(w, apperr.Newf(apperr.KindAuthorization, "role %s may not subscribe as %s", user.Role, clientType))
			return
		}

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		NewClient(hub, conn, clientType).Start()
	}
}
