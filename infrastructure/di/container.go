package di

import (
	"go.uber.org/zap"

	"github.com/BeadW/vyb-web-sub000/application/services"
	"github.com/BeadW/vyb-web-sub000/infrastructure/config"
	infraevents "github.com/BeadW/vyb-web-sub000/infrastructure/events"
	"github.com/BeadW/vyb-web-sub000/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	EventBus       *infraevents.Bus
	HistoryService *services.HistoryService
	Router         *rest.Router
}
