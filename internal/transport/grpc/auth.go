package grpctransport

import (
	"context"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type verifier interface {
	Verify(token string) (identity.Identity, error)
}

// authenticate puts the identity of the bearer token found in the "authorization"
// metadata into ctx. Calls without a token stay anonymous.
func authenticate(ctx context.Context, v verifier) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, nil
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return ctx, nil
	}

	token := auth.BearerToken(values[0])
	if token == "" {
		return ctx, nil
	}

	id, err := v.Verify(token)
	if err != nil {
		return nil, toStatus(err)
	}

	return identity.WithIdentity(ctx, id), nil
}

func unaryAuthInterceptor(v verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := authenticate(ctx, v)
		if err != nil {
			return nil, err
		}

		return handler(ctx, req)
	}
}

func streamAuthInterceptor(v verifier) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := authenticate(ss.Context(), v)
		if err != nil {
			return err
		}

		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: ctx})
	}
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
