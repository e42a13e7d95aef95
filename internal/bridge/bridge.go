// Package bridge wires the live-reconfiguration core (C7 pollers, C8 state
// machine, C5 tools) to an MCP server and serves it over stdio, SSE, or
// streamable HTTP. It generalizes pkg/graphqlmcp/http_server.go's
// SSETransportManager/GetMux (teacher's mux-based HTTP wiring) from a
// single fixed *MCPGraphQLServer to a server whose tool set is rebuilt
// on the fly, and layers go-chi/chi routing plus C9 auth middleware in
// place of the teacher's manual CORS header-setting.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphql-mcp/bridge/internal/auth"
	"github.com/graphql-mcp/bridge/internal/config"
	"github.com/graphql-mcp/bridge/internal/executor"
	"github.com/graphql-mcp/bridge/internal/schemaconv"
	"github.com/graphql-mcp/bridge/internal/serverstate"
	"github.com/graphql-mcp/bridge/internal/source"
	"github.com/graphql-mcp/bridge/internal/source/collection"
	"github.com/graphql-mcp/bridge/internal/source/localfile"
	"github.com/graphql-mcp/bridge/internal/source/manifest"
	"github.com/graphql-mcp/bridge/internal/source/uplink"
	"github.com/graphql-mcp/bridge/internal/tools"
)

// Implementation identifies this server in the MCP initialize handshake.
var Implementation = &mcp.Implementation{Name: "graphql-mcp-server", Version: "0.1.0"}

// Server binds the state machine, the poller set, and the MCP server
// together and exposes Run to serve over the configured transport.
type Server struct {
	cfg        config.Config
	logger     logr.Logger
	machine    *serverstate.Machine
	mcpServer  *mcp.Server
	authValid  *auth.Validator
	registry   *tools.Registry
}

// New constructs a Server from a fully loaded configuration and the custom
// scalar map cmd/graphql-mcp-server loaded from
// overrides.custom_scalar_config_path (nil is fine: unmapped scalars
// degrade to {} per internal/schemaconv). It does not start any pollers or
// bind any listeners; call Run for that.
func New(cfg config.Config, logger logr.Logger, scalars schemaconv.CustomScalarMap) *Server {
	machine := serverstate.New(cfg.MutationMode(), scalars, logger)
	machine.SetIndexMemoryBytesLimit(cfg.Overrides.IndexMemoryBytes)

	exec := executor.New(cfg.Endpoint, cfg.Headers, logger)

	registry := &tools.Registry{
		Machine:  machine,
		Executor: exec,
		Mode:     cfg.MutationMode(),
		Scalars:  scalars,
		GraphRef: cfg.GraphOS.ApolloGraphRef,
		Logger:   logger,
	}

	mcpServer := mcp.NewServer(Implementation, nil)
	registry.RegisterBuiltins(mcpServer)

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		machine:   machine,
		mcpServer: mcpServer,
		registry:  registry,
	}

	// Re-register per-operation tools, and nothing else, on every rebuild.
	// Built-ins stay registered once since their handlers read the live
	// ToolSet at call time (internal/tools.Registry.RegisterBuiltins).
	machine.SetOnRebuild(func(ts *serverstate.ToolSet) {
		registry.RegisterOperations(mcpServer, ts)
	})

	if cfg.Auth.Resource != "" || len(cfg.Auth.Servers) > 0 {
		s.authValid = auth.NewValidator(authConfig(cfg))
	}

	return s
}

func authConfig(cfg config.Config) auth.Config {
	return auth.Config{
		Servers:                     cfg.Auth.Servers,
		Audiences:                   cfg.Auth.Audiences,
		Resource:                    cfg.Auth.Resource,
		ResourceDocumentation:       cfg.Auth.ResourceDocumentation,
		Scopes:                      cfg.Auth.Scopes,
		DisableAuthTokenPassthrough: cfg.Auth.DisableAuthTokenPassthrough,
	}
}

// Run starts the configured source pollers, the state machine, and the
// chosen transport, blocking until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	events := s.startPollers(ctx)

	machineErrCh := make(chan error, 1)
	go func() { machineErrCh <- s.machine.Run(ctx, events) }()

	transportErrCh := make(chan error, 1)
	go func() { transportErrCh <- s.serveTransport(ctx) }()

	select {
	case err := <-machineErrCh:
		return err
	case err := <-transportErrCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startPollers constructs the merged event stream from whichever
// schema/operations sources cfg selects. Each poller closes its own channel
// when ctx is canceled (localfile also when its watcher cannot start);
// the uplink, collection and manifest pollers log a failed fetch and keep
// polling rather than stopping. source.Merge closes the merged channel once
// every poller has stopped, which drives the state machine to terminate via
// its events-channel-closed path.
func (s *Server) startPollers(ctx context.Context) <-chan serverstate.Event {
	var streams []<-chan serverstate.Event

	switch s.cfg.Schema.Kind {
	case "local":
		out := make(chan serverstate.Event, 8)
		go localfile.Watch(ctx, localfile.Config{SchemaPath: s.cfg.Schema.Path}, out, s.logger)
		streams = append(streams, out)
	default:
		out := make(chan serverstate.Event, 8)
		go uplink.Poll(ctx, uplink.Config{
			URL:      s.cfg.GraphOS.ApolloRegistryURL,
			APIKey:   s.cfg.GraphOS.ApolloKey,
			GraphRef: s.cfg.GraphOS.ApolloGraphRef,
		}, out, s.logger)
		streams = append(streams, out)
	}

	switch s.cfg.Operations.Kind {
	case "local":
		out := make(chan serverstate.Event, 8)
		go localfile.Watch(ctx, localfile.Config{OperationsDir: firstOrEmpty(s.cfg.Operations.Paths)}, out, s.logger)
		streams = append(streams, out)
	case "collection":
		out := make(chan serverstate.Event, 8)
		go collection.Poll(ctx, collection.Config{
			URL:          s.cfg.GraphOS.ApolloRegistryURL,
			APIKey:       s.cfg.GraphOS.ApolloKey,
			CollectionID: s.cfg.Operations.ID,
		}, out, s.logger)
		streams = append(streams, out)
	case "manifest":
		out := make(chan serverstate.Event, 8)
		go manifest.Poll(ctx, manifest.Config{URL: s.cfg.Operations.Path}, out, s.logger)
		streams = append(streams, out)
	default:
		// Any other kind ("infer", "introspect", "uplink", ...): no
		// pre-authored operations are loaded; the schema events alone drive
		// rebuilds, with an empty operations set.
		out := make(chan serverstate.Event, 1)
		out <- serverstate.OperationsUpdated{Operations: nil}
		close(out)
		streams = append(streams, out)
	}

	return source.Merge(streams...)
}

func firstOrEmpty(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// serveTransport binds the transport spec.md §6's transport.kind selects.
func (s *Server) serveTransport(ctx context.Context) error {
	switch s.cfg.Transport.Kind {
	case "", "stdio":
		return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	case "sse", "streamable_http":
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("bridge: unknown transport kind %q", s.cfg.Transport.Kind)
	}
}

func (s *Server) serveHTTP(ctx context.Context) error {
	r := chi.NewRouter()

	if s.authValid != nil {
		auth.Mount(r, authConfig(s.cfg), s.authValid)
	}

	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	r.Handle("/mcp", mcpHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "graphql-mcp-server"})
	})

	addr := fmt.Sprintf("%s:%d", s.cfg.Transport.Address, s.cfg.Transport.Port)
	httpServer := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving MCP over HTTP", "address", addr, "kind", s.cfg.Transport.Kind)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
