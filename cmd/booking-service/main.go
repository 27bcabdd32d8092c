// cmd/booking-service/main.go
package main

import (
	"context"
	"strings"

	"voyago/internal/pkg/bootstrap"
	"voyago/internal/pkg/database"
	"voyago/internal/pkg/httpclient"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/mq"
	"voyago/internal/pkg/redis"
	"voyago/internal/service/booking/application"
	"voyago/internal/service/booking/infrastructure"
	"voyago/internal/service/booking/infrastructure/adapter"
	"voyago/internal/service/booking/infrastructure/rule"
	"voyago/internal/service/booking/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "booking-service"
	servicePort = 8081
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)
	tracer := otel.Tracer(serviceName)

	db, err := database.Open(cfg.Infra.MySQL.DSN)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormBookingRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to migrate bookings table")
	}

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to redis")
	}
	sequencer := adapter.NewReferenceRedisAdapter(redisClient)

	writer := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), cfg.Infra.Kafka.NotificationTopic)
	notifier := adapter.NewNotificationKafkaAdapter(writer)

	policy, err := rule.NewCELPolicy(cfg.App.BookingPolicies)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("invalid booking policy rules")
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			// 下游地址解析：优先 Nacos，静态表兜底
			resolver := httpclient.NewNacosResolver(appCtx.Nacos, httpclient.StaticResolver(cfg.Infra.Services))
			client := httpclient.NewClient(tracer, resolver, cfg.RemoteTimeout())

			service := application.NewBookingService(
				repo,
				adapter.NewFlightHTTPAdapter(client),
				adapter.NewHotelHTTPAdapter(client),
				adapter.NewUserHTTPAdapter(client),
				notifier,
				sequencer,
				policy,
				tracer,
			)
			interfaces.NewBookingHandler(service).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: []func(ctx context.Context){
			func(ctx context.Context) {
				if err := notifier.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("error closing kafka writer")
				}
			},
			func(ctx context.Context) {
				if err := redisClient.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("error closing redis client")
				}
			},
		},
	})
}
