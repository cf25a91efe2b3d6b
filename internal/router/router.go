// Package router wires every endpoint to its handler and guards.
package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/api/handler"
	"github.com/km0-cafe/restaurant-service/internal/middleware"
	"github.com/km0-cafe/restaurant-service/internal/models"
	"github.com/km0-cafe/restaurant-service/internal/service"
	"github.com/km0-cafe/restaurant-service/internal/websockets"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Reservation  *handler.ReservationHandler
	Verification *handler.VerificationHandler
	Menu         *handler.CatalogHandler[models.MenuItem, models.MenuItemRequest]
	Patisserie   *handler.CatalogHandler[models.PatisserieItem, models.PatisserieItemRequest]
	Event        *handler.CatalogHandler[models.CatalogEvent, models.CatalogEventRequest]
	Delivery     *handler.DeliveryHandler
	Upload       *handler.UploadHandler
	Health       *handler.HealthHandler
}

// chain applies middlewares right to left, so they execute in the
// listed order.
func chain(h http.HandlerFunc, mws ...func(http.Handler) http.Handler) http.Handler {
	var wrapped http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

// New builds the HTTP routing table.
func New(h Handlers, auth *service.AuthService, hub *websockets.Hub, imagesDir string, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.Auth(auth)
	admin := middleware.RequireRole(models.RoleAdmin)
	checkin := middleware.RequireRole(models.RoleAdmin, models.RoleVerifier)

	// Accounts and sessions.
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.Handle("GET /api/auth/profile", chain(h.Auth.Profile, authed))
	mux.Handle("PATCH /api/auth/profile", chain(h.Auth.UpdateProfile, authed))

	// Catalogs: reads are public, mutations admin only.
	mux.HandleFunc("GET /api/menu", h.Menu.List)
	mux.HandleFunc("GET /api/menu/{id}", h.Menu.Get)
	mux.Handle("POST /api/menu", chain(h.Menu.Create, authed, admin))
	mux.Handle("PATCH /api/menu/{id}", chain(h.Menu.Update, authed, admin))
	mux.Handle("DELETE /api/menu/{id}", chain(h.Menu.Delete, authed, admin))

	mux.HandleFunc("GET /api/patisserie", h.Patisserie.List)
	mux.HandleFunc("GET /api/patisserie/{id}", h.Patisserie.Get)
	mux.Handle("POST /api/patisserie", chain(h.Patisserie.Create, authed, admin))
	mux.Handle("PATCH /api/patisserie/{id}", chain(h.Patisserie.Update, authed, admin))
	mux.Handle("DELETE /api/patisserie/{id}", chain(h.Patisserie.Delete, authed, admin))

	mux.HandleFunc("GET /api/events", h.Event.List)
	mux.HandleFunc("GET /api/events/{id}", h.Event.Get)
	mux.Handle("POST /api/events", chain(h.Event.Create, authed, admin))
	mux.Handle("PATCH /api/events/{id}", chain(h.Event.Update, authed, admin))
	mux.Handle("DELETE /api/events/{id}", chain(h.Event.Delete, authed, admin))

	// Reservations.
	mux.Handle("POST /api/reservations", chain(h.Reservation.Create, authed))
	mux.Handle("GET /api/reservations", chain(h.Reservation.List, authed))
	mux.Handle("GET /api/reservations/all", chain(h.Reservation.List, authed, admin))
	mux.Handle("GET /api/reservations/{id}", chain(h.Reservation.Get, authed))
	mux.Handle("PATCH /api/reservations/{id}", chain(h.Reservation.Update, authed))
	mux.Handle("DELETE /api/reservations/{id}", chain(h.Reservation.Delete, authed))

	// Check-in. The summary is public so a scanned QR code resolves
	// without a login; the verify action needs a staff role.
	mux.HandleFunc("GET /api/verification/{id}", h.Verification.Summary)
	mux.Handle("POST /api/verification/verify/{id}", chain(h.Verification.Verify, authed, checkin))

	// Deliveries.
	mux.Handle("POST /api/deliveries", chain(h.Delivery.Create, authed))
	mux.Handle("GET /api/deliveries", chain(h.Delivery.List, authed))
	mux.Handle("GET /api/deliveries/{id}", chain(h.Delivery.Get, authed))
	mux.Handle("PATCH /api/deliveries/{id}/status", chain(h.Delivery.UpdateStatus, authed, admin))
	mux.Handle("DELETE /api/deliveries/{id}", chain(h.Delivery.Delete, authed))

	// Assets.
	mux.Handle("POST /api/uploads/{kind}", chain(h.Upload.Upload, authed, admin))
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir))))

	// Live feed and operational endpoints.
	mux.Handle("GET /ws", chain(websockets.ServeWS(hub, log), authed))
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Logger(log)(middleware.Metrics(mux))
}
