//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/BeadW/vyb-web-sub000/application/ports"
	"github.com/BeadW/vyb-web-sub000/infrastructure/config"
	infraevents "github.com/BeadW/vyb-web-sub000/infrastructure/events"
	"github.com/BeadW/vyb-web-sub000/infrastructure/persistence/codec"
	"github.com/BeadW/vyb-web-sub000/infrastructure/persistence/sqlite"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideHistoryRepository,
	wire.Bind(new(ports.HistoryRepository), new(*sqlite.HistoryStore)),
	ProvideEventBus,
	wire.Bind(new(ports.EventPublisher), new(*infraevents.Bus)),
	ProvideStateCodec,
	wire.Bind(new(ports.StateCodec), new(*codec.JSONCodec)),
	ProvideHistoryService,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
