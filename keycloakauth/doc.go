// Package keycloakauth maintains a valid bearer credential for one OAuth2
// client-credentials flow and exposes it through a non-blocking readiness
// protocol.
//
// A Handle owns a small credential state machine (not fetched, fetching,
// refetching, fetched) driven entirely by Ready probes: a probe may start a
// fetch, observe one in flight, or install a completed result, but it never
// blocks the caller on network I/O. The exclusive lock around state
// transitions is what enforces single-flight fetches: concurrent probes that
// all observe an expired credential trigger exactly one fetch between them.
//
// # Features
//
//   - Non-blocking Ready probe; WaitUntilReady for blocking adapters
//   - Single in-flight fetch across all users of a handle
//   - Buffered expiry: credentials refresh before they actually expire
//   - Previous credential stays usable for stamping while a refresh runs
//   - Fetch failures reset the lifecycle so the next probe retries cleanly
//   - Optional logging (WithLogger, WithLoggingEnabled)
//
// # Quick Start
//
//	handle, err := keycloakauth.NewFromConfig(
//	    "https://keycloak.example.com",
//	    "my-realm",
//	    "client-id",
//	    "client-secret",
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    ready, err := handle.Ready(ctx)
//	    if err != nil {
//	        return err // fetch failed; the next probe starts over
//	    }
//	    if ready {
//	        break
//	    }
//	    // do other work; a token fetch is in flight
//	}
//	if err := handle.Stamp(req); err != nil {
//	    return err
//	}
//
// Most callers do not drive the protocol by hand: httpclient and grpcclient
// wrap a Handle into transports and interceptors.
package keycloakauth
