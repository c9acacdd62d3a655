package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig reads the YAML file at path (optional when empty), overlays
// environment variables and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// default first
	setDefaults(v)

	// Env Config
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var defaultPollEndpoints = []map[string]any{
	{"name": "cloudflare", "url": "https://www.cloudflare.com/cdn-cgi/trace", "mode": "fetch"},
	{"name": "google", "url": "https://www.google.com/generate_204", "mode": "fetch"},
	{"name": "one.one.one.one", "url": "https://one.one.one.one/cdn-cgi/trace", "mode": "fetch"},
}

var defaultDiagnosticsEndpoints = []map[string]any{
	{"name": "cloudflare", "url": "https://www.cloudflare.com/cdn-cgi/trace", "mode": "fetch"},
	{"name": "google", "url": "https://www.google.com/generate_204", "mode": "fetch"},
	{"name": "one.one.one.one", "url": "https://one.one.one.one/cdn-cgi/trace", "mode": "fetch"},
	{"name": "google-favicon", "url": "https://www.google.com/favicon.ico", "mode": "beacon"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("service_name", "connwatch")
	v.SetDefault("port", 8080)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.expiry_min", 30)
	v.SetDefault("auth.admin_password_hash", "")

	v.SetDefault("monitor.interval", "5s")
	v.SetDefault("monitor.probe_timeout", "5s")
	v.SetDefault("monitor.history_capacity", 600)
	v.SetDefault("monitor.status_window", 30)
	v.SetDefault("monitor.min_success_rate", 0.7)
	v.SetDefault("monitor.degraded_latency_ms", 300)
	v.SetDefault("monitor.outage_threshold", 3)
	v.SetDefault("monitor.autostart", true)
	v.SetDefault("monitor.endpoints", defaultPollEndpoints)

	v.SetDefault("diagnostics.timeout", "8s")
	v.SetDefault("diagnostics.probe_timeout", "5s")
	v.SetDefault("diagnostics.dns_slow_ms", 100)
	v.SetDefault("diagnostics.connect_slow_ms", 200)
	v.SetDefault("diagnostics.run_on_outage", true)
	v.SetDefault("diagnostics.endpoints", defaultDiagnosticsEndpoints)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.diagnostics_ttl", "24h")

	v.SetDefault("db.url", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.min_idle_conns", 1)
	v.SetDefault("db.conn_max_lifetime", "1h")
	v.SetDefault("db.conn_max_idle_time", "30m")
	v.SetDefault("db.health_timeout", "5s")
	v.SetDefault("db.incident_retention", "720h")

	v.SetDefault("rabbitmq.broker_link", "")
	v.SetDefault("rabbitmq.exchange_name", "connwatch")
	v.SetDefault("rabbitmq.exchange_type", "topic")
	v.SetDefault("rabbitmq.queue_name", "connwatch.commands")
	v.SetDefault("rabbitmq.routing_key", "connwatch.events")
	v.SetDefault("rabbitmq.command_routing_key", "connwatch.commands")
	v.SetDefault("rabbitmq.worker_count", 2)
}

func validateConfig(cfg *Config) error {

	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return formatValidationErrors(ve)
		}
		return err
	}
	return nil
}

func formatValidationErrors(ve validator.ValidationErrors) error {
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")

	for _, fe := range ve {
		fmt.Fprintf(&sb, "- field '%s' failed on '%s'\n", fe.Namespace(), fe.Tag())
	}
	return errors.New(sb.String())
}
