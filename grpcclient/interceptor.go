package grpcclient

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/harscoet/go-keycloakauth/keycloakauth"
)

// UnaryClientInterceptor returns a gRPC unary client interceptor that
// automatically adds the Keycloak bearer credential to request metadata.
//
// The interceptor waits until the handle has a valid credential (honoring the
// RPC context's cancellation and deadline) and adds it as
// "authorization: <tokenType> <accessToken>" to the outgoing metadata. If no
// credential can be obtained, the RPC is aborted with an error.
func UnaryClientInterceptor(h *keycloakauth.Handle) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx, err := stampContext(ctx, h)
		if err != nil {
			return err
		}

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor returns a gRPC stream client interceptor that
// automatically adds the Keycloak bearer credential to request metadata.
//
// If no credential can be obtained, stream creation is aborted with an error.
func StreamClientInterceptor(h *keycloakauth.Handle) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		ctx, err := stampContext(ctx, h)
		if err != nil {
			return nil, err
		}

		return streamer(ctx, desc, cc, method, opts...)
	}
}

// stampContext waits for a valid credential and appends it to the outgoing
// metadata of ctx.
func stampContext(ctx context.Context, h *keycloakauth.Handle) (context.Context, error) {
	if err := h.WaitUntilReady(ctx); err != nil {
		return nil, fmt.Errorf("grpcclient: failed to get credential: %w", err)
	}

	value, err := h.HeaderValue()
	if err != nil {
		return nil, fmt.Errorf("grpcclient: failed to get credential: %w", err)
	}

	return metadata.AppendToOutgoingContext(ctx, "authorization", value), nil
}
