package grpctransport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/watchsvc"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

type orderService interface {
	GetOrder(ctx context.Context, viewer identity.Identity, id string) (order.Order, error)
	AuthorizeRestaurant(ctx context.Context, user identity.Identity, restaurantID string) error
}

type watchService interface {
	WatchCustomer(ctx context.Context, customerID string, filter order.ListFilter) (*watchsvc.Watch, error)
	WatchRestaurant(ctx context.Context, restaurantID string, filter order.ListFilter) (*watchsvc.Watch, error)
}

// GRPCTransport represents the gRPC transport layer.
type GRPCTransport struct {
	server          *grpc.Server
	listener        net.Listener
	health          *health.Server
	orderFeedServer *OrderFeedServer
}

// NewGRPCTransport creates a new GRPCTransport listening on server.grpc.port.
func NewGRPCTransport(orders orderService, watches watchService, v verifier) *GRPCTransport {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		panic(err)
	}

	return newGRPCTransport(listener, orders, watches, v)
}

func newGRPCTransport(listener net.Listener, orders orderService, watches watchService, v verifier) *GRPCTransport {
	return &GRPCTransport{
		server:          newGRPCServer(v),
		listener:        listener,
		health:          health.NewServer(),
		orderFeedServer: NewOrderFeedServer(orders, watches),
	}
}

// Run starts the gRPC server.
func (g *GRPCTransport) Run() error {
	g.RegisterServices()
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown reports NOT_SERVING to health checks and gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	g.server.RegisterService(&orderFeedServiceDesc, g.orderFeedServer)
	healthpb.RegisterHealthServer(g.server, g.health)
	g.health.SetServingStatus(OrderFeedServiceName, healthpb.HealthCheckResponse_SERVING)
}

// newGRPCServer creates a new gRPC server with keepalive settings from the config.
func newGRPCServer(v verifier) *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_idle"),
		) * time.Minute,
		MaxConnectionAge: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age"),
		) * time.Minute,
		MaxConnectionAgeGrace: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age_grace"),
		) * time.Second,
		Time: time.Duration(
			viper.GetInt("server.grpc.keepalive.time"),
		) * time.Second,
		Timeout: time.Duration(
			viper.GetInt("server.grpc.keepalive.timeout"),
		) * time.Second,
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime: time.Duration(
			viper.GetInt("server.grpc.keepalive.min_time"),
		) * time.Second,
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
		grpc.ChainUnaryInterceptor(unaryAuthInterceptor(v)),
		grpc.ChainStreamInterceptor(streamAuthInterceptor(v)),
	}

	return grpc.NewServer(opts...)
}
