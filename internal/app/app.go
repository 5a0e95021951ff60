package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/cache"
	"github.com/Additional-Code/planta/internal/config"
	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/internal/event"
	"github.com/Additional-Code/planta/internal/logger"
	"github.com/Additional-Code/planta/internal/messaging"
	"github.com/Additional-Code/planta/internal/observability"
	repositorycatalog "github.com/Additional-Code/planta/internal/repository/catalog"
	repositoryinspection "github.com/Additional-Code/planta/internal/repository/inspection"
	repositoryorder "github.com/Additional-Code/planta/internal/repository/order"
	grpcserver "github.com/Additional-Code/planta/internal/server/grpc"
	httpserver "github.com/Additional-Code/planta/internal/server/http"
	servicecatalog "github.com/Additional-Code/planta/internal/service/catalog"
	serviceinspection "github.com/Additional-Code/planta/internal/service/inspection"
	serviceorder "github.com/Additional-Code/planta/internal/service/order"
	transporthttp "github.com/Additional-Code/planta/internal/transport/http"
	"github.com/Additional-Code/planta/internal/worker"
	workerevent "github.com/Additional-Code/planta/internal/worker/event"
)

// Infra provides configuration, logging and the database; enough for the
// migrate and seed commands.
var Infra = fx.Options(
	config.Module,
	logger.Module,
	fxLogger,
	database.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Infra,
	cache.Module,
	messaging.Module,
	event.Module,
	observability.Module,
	repositorycatalog.Module,
	repositoryinspection.Module,
	repositoryorder.Module,
	servicecatalog.Module,
	serviceinspection.Module,
	serviceorder.Module,
	fx.Invoke(registerDBStats),
)

// HTTP wires the HTTP transport and the gRPC health endpoint on top of the
// core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background event processing.
var Worker = fx.Options(
	config.Module,
	logger.Module,
	fxLogger,
	messaging.Module,
	observability.Module,
	worker.Module,
	workerevent.Module,
)

// fxLogger routes Fx's own lifecycle events through the service logger.
var fxLogger = fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
})

// Module is the default application wiring (HTTP + gRPC health).
var Module = HTTP

func registerDBStats(obs *observability.Manager, conns *database.Connections) error {
	if err := obs.RegisterDBStats("writer", conns.Writer.DB); err != nil {
		return err
	}
	if conns.Reader != conns.Writer {
		return obs.RegisterDBStats("reader", conns.Reader.DB)
	}
	return nil
}
