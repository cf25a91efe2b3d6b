package websockets

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Upgrader accepts any origin; the dashboards are served from separate
// front ends and the feed carries no mutating operations.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
