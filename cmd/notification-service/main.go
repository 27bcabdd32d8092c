// cmd/notification-service/main.go
package main

import (
	"context"
	"net/http"
	"strings"

	"voyago/internal/pkg/bootstrap"
	"voyago/internal/pkg/database"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/mq"
	"voyago/internal/service/notification/application"
	"voyago/internal/service/notification/infrastructure"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

const (
	serviceName     = "notification-service"
	servicePort     = 8085
	consumerGroupID = "notification-group"
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)

	db, err := database.Open(cfg.Infra.MySQL.DSN)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormNotificationRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to migrate notifications table")
	}

	reader := mq.NewKafkaReader(
		strings.Split(cfg.Infra.Kafka.Brokers, ","),
		cfg.Infra.Kafka.NotificationTopic,
		consumerGroupID,
	)
	consumer := application.NewConsumer(reader, repo, otel.Tracer(serviceName))

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Run(consumerCtx); err != nil && consumerCtx.Err() == nil {
			logger.Logger().Fatal().Err(err).Msg("notification consumer stopped")
		}
	}()

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
		OnShutdown: []func(ctx context.Context){
			func(ctx context.Context) {
				stopConsumer()
				if err := reader.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("error closing kafka reader")
				}
			},
		},
	})
}
