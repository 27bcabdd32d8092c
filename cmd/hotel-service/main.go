// cmd/hotel-service/main.go
package main

import (
	"voyago/internal/pkg/bootstrap"
	"voyago/internal/pkg/database"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/zookeeper"
	"voyago/internal/service/hotel/application"
	"voyago/internal/service/hotel/infrastructure"
	"voyago/internal/service/hotel/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "hotel-service"
	servicePort = 8083
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)

	db, err := database.Open(cfg.Infra.MySQL.DSN)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormHotelRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to migrate hotels table")
	}

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to zookeeper")
	}
	locker := zookeeper.NewZKLocker(zkConn)

	service := application.NewHotelService(repo, locker, otel.Tracer(serviceName))
	handler := interfaces.NewHotelHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
