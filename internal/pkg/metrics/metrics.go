// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 预留/释放的结果标签值。
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// ReservationsTotal 统计各资源 ledger 的预留尝试。
	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_reservations_total",
		Help: "Inventory reservation attempts by resource kind and outcome.",
	}, []string{"resource", "outcome"})

	// ReleasesTotal 统计释放操作。
	ReleasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_releases_total",
		Help: "Inventory release attempts by resource kind and outcome.",
	}, []string{"resource", "outcome"})

	// CompensationsTotal 统计 saga 触发的补偿动作。
	CompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_saga_compensations_total",
		Help: "Saga compensation actions by resource kind.",
	}, []string{"resource"})

	// CompensationFailures 补偿失败意味着库存泄漏，必须告警。
	CompensationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_saga_compensation_failures_total",
		Help: "Failed compensations leaving inventory leaked; alert on any increase.",
	}, []string{"resource"})

	// BookingsTotal 按终态统计预订创建结果。
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_bookings_total",
		Help: "Booking creation outcomes by terminal status.",
	}, []string{"status"})

	// NotificationFailures 通知是尽力而为的，这里只计数不报错。
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voyago_notification_failures_total",
		Help: "Notifications that could not be published or delivered.",
	})

	// InconsistencyTotal 记录不变量被破坏的次数（如释放溢出）。
	InconsistencyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_inconsistency_total",
		Help: "Invariant violations detected by the ledgers; always a defect.",
	}, []string{"resource"})
)
