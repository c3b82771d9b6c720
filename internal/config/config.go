package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/RicardoFlores201/appUni-sub000/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MustInit loads .env if present, reads config.yaml and installs the default logger.
// Every key can be overridden with an APPUNI_ variable, e.g. APPUNI_SERVER_HTTP_PORT.
func MustInit() {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/appuni")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("APPUNI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}

	SetupLogger()
}

// SetDefaults registers the values used when neither config.yaml nor the environment
// sets a key.
func SetDefaults() {
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.read_header_timeout_seconds", 10)
	viper.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	viper.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("server.http.cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Request-Id"})
	viper.SetDefault("server.http.cors.exposed_headers", []string{"Location", "X-Request-Id"})
	viper.SetDefault("server.http.cors.max_age", 300)
	viper.SetDefault("server.grpc.port", "9090")
	viper.SetDefault("server.grpc.keepalive.max_connection_idle", 15)
	viper.SetDefault("server.grpc.keepalive.time", 30)
	viper.SetDefault("server.grpc.keepalive.timeout", 10)
	viper.SetDefault("server.grpc.keepalive.min_time", 10)
	viper.SetDefault("server.grpc.keepalive.permit_without_stream", true)
	viper.SetDefault("server.shutdown_timeout_seconds", 10)

	viper.SetDefault("postgres.migrations_path", "./migrations")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("feed.driver", "memory")
	viper.SetDefault("feed.redis_prefix", "appuni:")
	viper.SetDefault("events.broker", "none")
	viper.SetDefault("events.topic", "appuni.orders")
	viper.SetDefault("outbox.max_retries", 10)
	viper.SetDefault("rabbitmq.consumer_concurrency", 50)
	viper.SetDefault("kafka.group_id", "appuni-feed")

	viper.SetDefault("auth.dev_token.ttl", "12h")

	viper.SetDefault("orders.delivery_fee", "30.00")
	viper.SetDefault("orders.currency", "MXN")
	viper.SetDefault("orders.strict_transitions", false)
	viper.SetDefault("cart.session_ttl", "2h")
	viper.SetDefault("public_base_url", "http://localhost:8080")

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.service_name", "appuni-orders")
	viper.SetDefault("tracing.sample_ratio", 1.0)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", logger.FormatJSON)
}

// SetupLogger installs the process-wide slog logger described by logger.*.
func SetupLogger() {
	handler := logger.NewHandler(os.Stdout, viper.GetString("logger.format"), &slog.HandlerOptions{
		Level: logger.ParseLevel(viper.GetString("logger.level")),
	})
	log := slog.New(handler).With("service", viper.GetString("tracing.service_name"))
	slog.SetDefault(log)
}
