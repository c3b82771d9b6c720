package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/feed/memory"
	redisfeed "github.com/RicardoFlores201/appUni-sub000/internal/dal/feed/redis"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ipublisher"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/kafka"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/postgres"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/rabbitmq"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/redis"
	kafkaevents "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/events/kafka"
	rabbitevents "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/events/rabbitmq"
	menurepo "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/menuitem/postgres"
	outboxrepo "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/outbox/postgres"
	restaurantrepo "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/restaurant/postgres"
	statuslogrepo "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/statuslog/postgres"
	"github.com/RicardoFlores201/appUni-sub000/internal/otel"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/currency"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/cartsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/eventsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/watchsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/auth"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/consumer"
	grpctransport "github.com/RicardoFlores201/appUni-sub000/internal/transport/grpc"
	httptransport "github.com/RicardoFlores201/appUni-sub000/internal/transport/http"
	"github.com/RicardoFlores201/appUni-sub000/internal/worker/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	brokerRabbitMQ = "rabbitmq"
	brokerKafka    = "kafka"
	brokerNone     = "none"

	feedRedis  = "redis"
	feedMemory = "memory"
)

type closableFeed interface {
	ifeed.IFeed
	Close()
}

type runner interface {
	Run(ctx context.Context) error
	Shutdown() error
}

// App represents the application.
type App struct {
	otel           *otel.OtelController
	postgresClient *postgres.Client
	redisClient    *redis.Client
	rabbitClient   *rabbitmq.Client
	kafkaClient    *kafka.Client

	feed         closableFeed
	cartSvc      *cartsvc.CartService
	outboxWorker *outbox.Worker
	consumer     runner

	httpTransport *httptransport.HTTPTransport
	grpcTransport *grpctransport.GRPCTransport
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	a := &App{
		otel:           otel.MustInitOtel(),
		postgresClient: postgres.MustNewClient(),
	}
	db := a.postgresClient.DB()

	a.feed = a.mustNewFeed()

	a.cartSvc = cartsvc.MustNewCartService(
		cartsvc.WithMenuRepository(menurepo.NewMenuRepository(db)),
		cartsvc.WithSessionTTL(viper.GetDuration("cart.session_ttl")),
	)

	statusLog := statuslogrepo.NewStatusLogRepository(db)
	eventSvc := eventsvc.MustNewEventService(
		eventsvc.WithStatusLogRepository(statusLog),
		eventsvc.WithFeed(a.feed),
	)

	// An empty events topic keeps order writes out of the outbox.
	var eventsTopic string
	if publisher := a.mustNewBroker(viper.GetString("events.topic"), eventSvc); publisher != nil {
		eventsTopic = viper.GetString("events.topic")
		a.outboxWorker = outbox.NewWorker(outboxrepo.NewOutboxRepository(db), publisher)
	}

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(a.postgresClient),
		ordersvc.WithFeed(a.feed),
		ordersvc.WithCartStore(a.cartSvc),
		ordersvc.WithRestaurantRepository(restaurantrepo.NewRestaurantRepository(db)),
		ordersvc.WithStatusLogRepository(statusLog),
		ordersvc.WithDeliveryFee(mustDecimal(viper.GetString("orders.delivery_fee"))),
		ordersvc.WithCurrency(mustCurrency(viper.GetString("orders.currency"))),
		ordersvc.WithStrictTransitions(viper.GetBool("orders.strict_transitions")),
		ordersvc.WithEvents(eventsTopic, viper.GetInt("outbox.max_retries")),
	)
	watchSvc := watchsvc.MustNewWatchService(
		watchsvc.WithFeed(a.feed),
		watchsvc.WithOrderSource(orderSvc),
	)

	verifier := auth.NewVerifier(mustSecret())
	logDevToken(verifier)

	a.httpTransport = httptransport.NewHTTPTransport(orderSvc, a.cartSvc, watchSvc, verifier)
	a.httpTransport.RegisterRoutes()
	a.grpcTransport = grpctransport.NewGRPCTransport(orderSvc, watchSvc, verifier)

	return a
}

func (a *App) mustNewFeed() closableFeed {
	switch driver := viper.GetString("feed.driver"); driver {
	case feedRedis:
		a.redisClient = redis.MustNewClient()

		return redisfeed.NewFeed(a.redisClient.Redis(), viper.GetString("feed.redis_prefix"))
	case feedMemory, "":
		return memory.NewFeed()
	default:
		panic("unknown feed.driver: " + driver)
	}
}

// mustNewBroker connects to the configured broker and returns the outbox publisher, or nil
// when events are disabled. Every instance consumes all events so that status history and
// change notifications reach it whichever instance wrote the order.
func (a *App) mustNewBroker(topic string, eventSvc *eventsvc.EventService) ipublisher.IEventPublisher {
	switch broker := viper.GetString("events.broker"); broker {
	case brokerRabbitMQ:
		a.rabbitClient = rabbitmq.MustNewClient()
		publisher := rabbitevents.NewEventRabbitMQRepository(a.rabbitClient, topic)
		a.consumer = consumer.NewConsumer(a.rabbitClient, eventSvc, topic)

		return publisher
	case brokerKafka:
		a.kafkaClient = kafka.MustNewClient()
		groupID := viper.GetString("kafka.group_id") + "-" + uuid.NewString()
		a.consumer = consumer.NewKafkaConsumer(a.kafkaClient.NewReader(topic, groupID), eventSvc)

		return kafkaevents.NewEventKafkaRepository(a.kafkaClient.Writer())
	case brokerNone, "":
		return nil
	default:
		panic("unknown events.broker: " + broker)
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.cartSvc.Start(ctx)

	if a.outboxWorker != nil {
		go a.outboxWorker.Start(ctx)
	}

	if a.consumer != nil {
		go func() {
			slog.Info("Starting event consumer", "broker", viper.GetString("events.broker"))
			if err := a.consumer.Run(ctx); err != nil {
				slog.Error("Event consumer error", "error", err)
			}
		}()
	}

	go func() {
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	a.shutdown(cancel)
}

// shutdown stops intake first, then ends live watches by closing the feed, then releases
// the connections.
func (a *App) shutdown(cancel context.CancelFunc) {
	timeout := time.Duration(viper.GetInt("server.shutdown_timeout_seconds")) * time.Second
	ctx, cancelTimeout := context.WithTimeout(context.Background(), timeout)
	defer cancelTimeout()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if a.consumer != nil {
		if err := a.consumer.Shutdown(); err != nil {
			slog.Error("Event consumer shutdown error", "error", err)
		}
	}
	if a.outboxWorker != nil {
		a.outboxWorker.Stop()
	}
	a.cartSvc.Stop()

	a.feed.Close()

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	cancel()

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}
	if a.kafkaClient != nil {
		if err := a.kafkaClient.Close(); err != nil {
			slog.Error("Kafka writer close error", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Error("Redis connection close error", "error", err)
		}
	}

	if err := a.postgresClient.Close(); err != nil {
		slog.Error("Database connection close error", "error", err)
	} else {
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid orders.delivery_fee: " + err.Error())
	}

	return d
}

func mustCurrency(s string) currency.Currency {
	c, err := currency.ParseCurrency(s)
	if err != nil {
		panic("invalid orders.currency: " + err.Error())
	}

	return c
}

// devToken signs a token for auth.dev_token.user_id so a local stack can be driven without
// an identity provider. It returns "" when no user is configured.
func devToken(verifier *auth.Verifier) (string, error) {
	userID := viper.GetString("auth.dev_token.user_id")
	if userID == "" {
		return "", nil
	}

	return verifier.Issue(identity.Identity{
		UserID: userID,
		Name:   viper.GetString("auth.dev_token.name"),
		Email:  viper.GetString("auth.dev_token.email"),
	}, viper.GetDuration("auth.dev_token.ttl"))
}

func logDevToken(verifier *auth.Verifier) {
	token, err := devToken(verifier)
	if err != nil {
		slog.Error("Failed to issue development token", "error", err)

		return
	}
	if token != "" {
		slog.Warn("Issued development token, unset auth.dev_token.user_id outside local setups",
			"user_id", viper.GetString("auth.dev_token.user_id"),
			"token", token,
		)
	}
}

func mustSecret() string {
	secret := viper.GetString("auth.jwt_secret")
	if secret == "" {
		panic("auth.jwt_secret is not set")
	}

	return secret
}
