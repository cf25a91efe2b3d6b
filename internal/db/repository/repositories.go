package repository

import (
	"errors"

	"github.com/km0-cafe/restaurant-service/internal/db"
	"github.com/km0-cafe/restaurant-service/internal/models"
)

// ErrNotFound is returned by every repository when the addressed row does
// not exist. Services map it onto the not-found error kind.
var ErrNotFound = errors.New("not found")

// Repositories provides access to all repository instances
type Repositories struct {
	User        UserRepository
	Reservation ReservationRepository
	Delivery    DeliveryRepository
	Menu        *CatalogRepository[models.MenuItem]
	Patisserie  *CatalogRepository[models.PatisserieItem]
	Event       *CatalogRepository[models.CatalogEvent]
}

// NewRepositories creates a new repositories container
func NewRepositories(database *db.Postgres) *Repositories {
	return &Repositories{
		User:        NewUserRepository(database.DB),
		Reservation: NewReservationRepository(database.DB),
		Delivery:    NewDeliveryRepository(database.DB),
		Menu:        NewCatalogRepository[models.MenuItem](database.DB, MenuDescriptor),
		Patisserie:  NewCatalogRepository[models.PatisserieItem](database.DB, PatisserieDescriptor),
		Event:       NewCatalogRepository[models.CatalogEvent](database.DB, EventDescriptor),
	}
}
