package api

import (
	"context"

	"github.com/vytor/flashdeck/internal/services"
)

// Pinger is satisfied by *sql.DB and *db.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB           Pinger
	DeckService  services.DeckService
	StudyService services.StudyService
}
