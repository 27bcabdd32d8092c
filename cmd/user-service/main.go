// cmd/user-service/main.go
package main

import (
	"voyago/internal/pkg/bootstrap"
	"voyago/internal/pkg/database"
	"voyago/internal/pkg/logger"
	"voyago/internal/service/user/infrastructure"
	"voyago/internal/service/user/interfaces"
)

const (
	serviceName = "user-service"
	servicePort = 8084
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)

	db, err := database.Open(cfg.Infra.MySQL.DSN)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormUserRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to migrate users table")
	}

	handler := interfaces.NewUserHandler(repo)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
