package di

import (
	"go.uber.org/zap"

	"github.com/BeadW/vyb-web-sub000/application/ports"
	"github.com/BeadW/vyb-web-sub000/application/services"
	domainconfig "github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/infrastructure/config"
	infraevents "github.com/BeadW/vyb-web-sub000/infrastructure/events"
	"github.com/BeadW/vyb-web-sub000/infrastructure/persistence/codec"
	"github.com/BeadW/vyb-web-sub000/infrastructure/persistence/sqlite"
	"github.com/BeadW/vyb-web-sub000/interfaces/http/rest"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig maps the loaded configuration onto the domain bounds
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return &domainconfig.DomainConfig{
		MaxHistorySize:       cfg.MaxHistorySize,
		MaxTagsPerNode:       cfg.MaxTagsPerNode,
		MaxBranches:          cfg.MaxBranches,
		MaxDescriptionLength: cfg.MaxDescriptionLength,
	}
}

// ProvideHistoryRepository opens the SQLite-backed repository
func ProvideHistoryRepository(cfg *config.Config) (*sqlite.HistoryStore, error) {
	return sqlite.Open(cfg.DatabasePath)
}

// ProvideEventBus creates the in-process event bus
func ProvideEventBus(logger *zap.Logger) *infraevents.Bus {
	return infraevents.NewBus(logger)
}

// ProvideStateCodec creates the JSON export codec
func ProvideStateCodec() *codec.JSONCodec {
	return codec.NewJSONCodec()
}

// ProvideHistoryService assembles the application facade
func ProvideHistoryService(
	domainCfg *domainconfig.DomainConfig,
	repo ports.HistoryRepository,
	publisher ports.EventPublisher,
	stateCodec ports.StateCodec,
	logger *zap.Logger,
) *services.HistoryService {
	return services.NewHistoryService(domainCfg, repo, publisher, stateCodec, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(cfg *config.Config, service *services.HistoryService, logger *zap.Logger) *rest.Router {
	return rest.NewRouter(cfg, service, logger)
}
