// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/boardhub/boardhub/internal/app/system/events"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shared event plumbing, created in Startup and torn down in Shutdown.
// BuildHandler hands these to the feature handlers.
var (
	eventHub      *events.Hub
	eventPub      *events.Publisher
	stopEventSubs context.CancelFunc
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It brings up the in-process event hub and, when Redis is configured,
// the subscriber that rebroadcasts sibling instances' events.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	eventHub = events.NewHub()
	eventPub = &events.Publisher{Hub: eventHub, RC: deps.Redis, Log: logger}

	if deps.Redis != nil {
		subCtx, cancel := context.WithCancel(context.Background())
		stopEventSubs = cancel
		go events.SubscribeUpdates(subCtx, logger, deps.Redis, eventHub)
		logger.Info("redis event subscriber started", zap.String("channel", events.Channel))
	}
	return nil
}
