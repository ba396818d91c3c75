package main

import (
	"net/http"

	"github.com/fieldops/backend/internal/application/entity"
	"github.com/fieldops/backend/internal/domain/fieldops"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/persistence"
	"github.com/fieldops/backend/internal/interfaces/http/handler"
	"github.com/fieldops/backend/internal/interfaces/http/middleware"
	"github.com/fieldops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps are the shared handles every handler is built from
type deps struct {
	db       *gorm.DB
	pinger   handler.Pinger
	notifier shared.Notifier
	hub      http.Handler
}

// newEntityHandler wires repository, service and handler for one kind
func newEntityHandler[T any](db *gorm.DB, kind shared.Kind, notifier shared.Notifier) *handler.EntityHandler[T] {
	repo := persistence.NewGormRepository[T](db, kind.Name)
	return handler.NewEntityHandler(entity.NewService[T](kind, repo, notifier))
}

// entityRoutes builds the seven entity handlers with broadcasting set from live config
func entityRoutes(cfg config.LiveConfig, d deps) []router.RouteRegistrar {
	kind := func(k shared.Kind) shared.Kind {
		return k.WithBroadcast(cfg.BroadcastEnabled(k.Name))
	}
	return []router.RouteRegistrar{
		newEntityHandler[fieldops.Client](d.db, kind(fieldops.KindClient), d.notifier),
		newEntityHandler[fieldops.Job](d.db, kind(fieldops.KindJob), d.notifier),
		newEntityHandler[fieldops.JobType](d.db, kind(fieldops.KindJobType), d.notifier),
		newEntityHandler[fieldops.Plantation](d.db, kind(fieldops.KindPlantation), d.notifier),
		newEntityHandler[fieldops.Team](d.db, kind(fieldops.KindTeam), d.notifier),
		newEntityHandler[fieldops.TeamMember](d.db, kind(fieldops.KindTeamMember), d.notifier),
		newEntityHandler[fieldops.TeamAssignment](d.db, kind(fieldops.KindTeamAssignment), d.notifier),
	}
}

// newEngine builds the gin engine with middleware and every route mounted
func newEngine(cfg *config.Config, log *zap.Logger, d deps) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsCfg),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(d.pinger))
	if d.hub != nil {
		r.Register(handler.NewLiveHandler(d.hub))
	}
	r.Register(entityRoutes(cfg.Live, d)...)
	r.Setup()

	return engine, nil
}

// originChecker admits websocket upgrades from the configured CORS origins.
// Requests without an Origin header come from non-browser clients and are admitted.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
