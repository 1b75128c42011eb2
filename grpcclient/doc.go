// Package grpcclient attaches Keycloak bearer credentials to outgoing gRPC
// calls.
//
// It provides unary and stream client interceptors that wait for a valid
// credential from a keycloakauth.Handle and add it to the outgoing
// "authorization" metadata, plus a fluent Builder for connections with
// authentication and TLS/mTLS configured together.
//
// # Quick Start
//
//	conn, err := grpcclient.NewBuilder().
//	    WithAddress("server.example.com:9090").
//	    WithKeycloak(
//	        "https://keycloak.example.com",
//	        "my-realm",
//	        "client-id",
//	        "client-secret",
//	    ).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
// # Sharing a Handle
//
//	handle, err := keycloakauth.NewFromConfig(serverURL, realm, clientID, clientSecret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conn, err := grpc.NewClient(
//	    "server:9090",
//	    grpc.WithUnaryInterceptor(grpcclient.UnaryClientInterceptor(handle)),
//	)
//
// Interceptors sharing one handle share one credential stream and one
// in-flight token fetch, across gRPC and HTTP clients alike.
package grpcclient
