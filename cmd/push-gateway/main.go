// cmd/push-gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"voyago/internal/pkg/bootstrap"
	"voyago/internal/pkg/logger"
	"voyago/internal/pkg/mq"
	"voyago/internal/service/push"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serviceName     = "push-gateway"
	servicePort     = 8088
	consumerGroupID = "push-gateway-group"
)

// bookingEvent 只取路由需要的字段，其余原样透传给客户端。
type bookingEvent struct {
	UserID uint64 `json:"userId"`
}

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	logger.Init(serviceName)

	hub := push.NewHub()
	go hub.Run()

	reader := mq.NewKafkaReader(
		strings.Split(cfg.Infra.Kafka.Brokers, ","),
		cfg.Infra.Kafka.NotificationTopic,
		consumerGroupID,
	)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		for {
			msg, err := reader.ReadMessage(consumerCtx)
			if err != nil {
				if consumerCtx.Err() != nil {
					return
				}
				logger.Logger().Error().Err(err).Msg("could not read message")
				continue
			}
			var event bookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Logger().Warn().Err(err).Msg("skipping malformed event")
				continue
			}
			delivered := hub.Push(strconv.FormatUint(event.UserID, 10), msg.Value)
			logger.Logger().Debug().
				Uint64("user_id", event.UserID).
				Bool("delivered", delivered).
				Msg("push processed")
		}
	}()

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/ws", hub.ServeWs)
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
