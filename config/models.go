package config

import "time"

type AuthConfig struct {
	Secret            string `mapstructure:"secret" validate:"omitempty,min=16"`
	ExpiryMin         int    `mapstructure:"expiry_min" validate:"gte=1"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}

// EndpointConfig is one probe target. Mode is "fetch" or "beacon".
type EndpointConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	URL  string `mapstructure:"url" validate:"required,url"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=fetch beacon"`
}

type MonitorConfig struct {
	Interval          time.Duration    `mapstructure:"interval" validate:"gt=0"`
	ProbeTimeout      time.Duration    `mapstructure:"probe_timeout" validate:"gt=0"`
	HistoryCapacity   int              `mapstructure:"history_capacity" validate:"gte=1"`
	StatusWindow      int              `mapstructure:"status_window" validate:"gte=1"`
	MinSuccessRate    float64          `mapstructure:"min_success_rate" validate:"gte=0,lte=1"`
	DegradedLatencyMs int              `mapstructure:"degraded_latency_ms" validate:"gte=1"`
	OutageThreshold   int              `mapstructure:"outage_threshold" validate:"gte=1"`
	Autostart         bool             `mapstructure:"autostart"`
	Endpoints         []EndpointConfig `mapstructure:"endpoints" validate:"required,min=1,dive"`
}

type DiagnosticsConfig struct {
	Timeout       time.Duration    `mapstructure:"timeout" validate:"gt=0"`
	ProbeTimeout  time.Duration    `mapstructure:"probe_timeout" validate:"gt=0"`
	DNSSlowMs     int              `mapstructure:"dns_slow_ms" validate:"gte=1"`
	ConnectSlowMs int              `mapstructure:"connect_slow_ms" validate:"gte=1"`
	RunOnOutage   bool             `mapstructure:"run_on_outage"`
	Endpoints     []EndpointConfig `mapstructure:"endpoints" validate:"required,min=1,dive"`
}

// RedisConfig is optional; an empty URL disables the live state mirror.
type RedisConfig struct {
	URL            string        `mapstructure:"url"`
	DiagnosticsTTL time.Duration `mapstructure:"diagnostics_ttl"`
}

// DBConfig is optional; an empty URL disables incident persistence.
type DBConfig struct {
	URL               string        `mapstructure:"url"`
	MaxOpenConns      int32         `mapstructure:"max_open_conns"`
	MinIdleConns      int32         `mapstructure:"min_idle_conns"`
	ConnMaxLifetime   time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime   time.Duration `mapstructure:"conn_max_idle_time"`
	HealthTimeout     time.Duration `mapstructure:"health_timeout"`
	IncidentRetention time.Duration `mapstructure:"incident_retention"`
}

// RabbitMQConfig is optional; an empty BrokerLink disables AMQP.
type RabbitMQConfig struct {
	BrokerLink        string `mapstructure:"broker_link"`
	ExchangeName      string `mapstructure:"exchange_name"`
	ExchangeType      string `mapstructure:"exchange_type"`
	QueueName         string `mapstructure:"queue_name"`
	RoutingKey        string `mapstructure:"routing_key"`
	CommandRoutingKey string `mapstructure:"command_routing_key"`
	WorkerCount       int    `mapstructure:"worker_count"`
}

type Config struct {
	Port        int                `mapstructure:"port" validate:"gte=1,lte=65535"`
	Env         string             `mapstructure:"env"`
	ServiceName string             `mapstructure:"service_name"`
	Monitor     *MonitorConfig     `mapstructure:"monitor" validate:"required"`
	Diagnostics *DiagnosticsConfig `mapstructure:"diagnostics" validate:"required"`
	Auth        *AuthConfig        `mapstructure:"auth" validate:"required"`
	Redis       *RedisConfig       `mapstructure:"redis"`
	DB          *DBConfig          `mapstructure:"db"`
	RabbitMQ    *RabbitMQConfig    `mapstructure:"rabbitmq"`
}
