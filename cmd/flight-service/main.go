// cmd/flight-service/main.go
package main

import (
	"voyago/internal/pkg/bootstrap"
	"voyago/internal/pkg/database"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/zookeeper"
	"voyago/internal/service/flight/application"
	"voyago/internal/service/flight/infrastructure"
	"voyago/internal/service/flight/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "flight-service"
	servicePort = 8082
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)

	db, err := database.Open(cfg.Infra.MySQL.DSN)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormFlightRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to migrate flights table")
	}

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to zookeeper")
	}
	locker := zookeeper.NewZKLocker(zkConn)

	service := application.NewFlightService(repo, locker, otel.Tracer(serviceName))
	handler := interfaces.NewFlightHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
