// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构，从 yaml 加载，关键项可被环境变量覆盖。
type Config struct {
	App struct {
		SagaTimeoutSeconds   int      `yaml:"sagaTimeoutSeconds"`
		RemoteTimeoutSeconds int      `yaml:"remoteTimeoutSeconds"`
		BookingPolicies      []string `yaml:"bookingPolicies"`
	} `yaml:"app"`

	Infra struct {
		MySQL struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Kafka struct {
			Brokers           string `yaml:"brokers"`
			NotificationTopic string `yaml:"notificationTopic"`
		} `yaml:"kafka"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Zookeeper struct {
			Servers string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Nacos struct {
			Addrs     string `yaml:"addrs"`
			Namespace string `yaml:"namespace"`
			Group     string `yaml:"group"`
		} `yaml:"nacos"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		// Services 是 Nacos 不可用时的静态地址兜底，service name -> base URL。
		Services map[string]string `yaml:"services"`
	} `yaml:"infra"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init 加载配置。路径取 VOYAGO_CONFIG，默认 ./configs/config.yaml；
// 文件缺失时退回到内置默认值，方便本地直接起进程。
func Init() {
	configOnce.Do(func() {
		currentConfig = defaultConfig()

		path := getEnv("VOYAGO_CONFIG", "configs/config.yaml")
		data, err := os.ReadFile(path)
		if err == nil {
			// 配置文件覆盖默认值
			_ = yaml.Unmarshal(data, &currentConfig)
		}

		applyEnvOverrides(&currentConfig)
	})
}

// GetCurrentConfig 返回进程级配置。必须先调用 Init。
func GetCurrentConfig() *Config {
	return &currentConfig
}

// SagaTimeout 单次预订编排的超时上限。
func (c *Config) SagaTimeout() time.Duration {
	if c.App.SagaTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.App.SagaTimeoutSeconds) * time.Second
}

// RemoteTimeout 单次下游调用的超时上限。
func (c *Config) RemoteTimeout() time.Duration {
	if c.App.RemoteTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.App.RemoteTimeoutSeconds) * time.Second
}

func defaultConfig() Config {
	var c Config
	c.App.SagaTimeoutSeconds = 30
	c.App.RemoteTimeoutSeconds = 5
	c.Infra.MySQL.DSN = "root:root@tcp(localhost:3306)/voyago?charset=utf8mb4&parseTime=True&loc=Local"
	c.Infra.Kafka.Brokers = "localhost:9092"
	c.Infra.Kafka.NotificationTopic = "booking-notifications"
	c.Infra.Redis.Addrs = "localhost:6379"
	c.Infra.Zookeeper.Servers = "localhost:2181"
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	c.Infra.Services = map[string]string{
		"flight-service": "http://localhost:8082",
		"hotel-service":  "http://localhost:8083",
		"user-service":   "http://localhost:8084",
	}
	return c
}

func applyEnvOverrides(c *Config) {
	c.Infra.MySQL.DSN = getEnv("MYSQL_DSN", c.Infra.MySQL.DSN)
	c.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", c.Infra.Kafka.Brokers)
	c.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", c.Infra.Redis.Addrs)
	c.Infra.Zookeeper.Servers = getEnv("ZK_SERVERS", c.Infra.Zookeeper.Servers)
	c.Infra.Nacos.Addrs = getEnv("NACOS_SERVER_ADDRS", c.Infra.Nacos.Addrs)
	c.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", c.Infra.Nacos.Namespace)
	c.Infra.Nacos.Group = getEnv("NACOS_GROUP", c.Infra.Nacos.Group)
	c.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", c.Infra.Jaeger.Endpoint)
}

// getEnv 从环境变量读取配置，带默认值。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
