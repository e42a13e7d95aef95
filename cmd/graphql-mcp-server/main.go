// Command graphql-mcp-server runs the bridge as a standalone process,
// generalizing example/full-demo/main.go's flat flag-parsing entrypoint
// (teacher) into the urfave/cli/v2-driven command cmd/server/main.go (the
// rest of the pack) uses, with config-file-plus-env-var configuration in
// place of the teacher's command-line-only setup.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/graphql-mcp/bridge/internal/bridge"
	"github.com/graphql-mcp/bridge/internal/config"
	"github.com/graphql-mcp/bridge/internal/obslog"
	"github.com/graphql-mcp/bridge/internal/schemaconv"
)

func main() {
	app := &cli.App{
		Name:  "graphql-mcp-server",
		Usage: "Expose a GraphQL API as a set of MCP tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML configuration document",
				EnvVars: []string{"GRAPHQL_MCP_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override logging.level from the configuration document",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	scalars, err := loadCustomScalars(cfg.Overrides.CustomScalarConfigPath)
	if err != nil {
		return fmt.Errorf("load custom scalar config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	server := bridge.New(cfg, logger, scalars)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// newLogger picks Configure or ConfigureRotating per internal/obslog's
// documented Open Question resolution: a rotating file sink when
// logging.path is set, stdout otherwise.
func newLogger(cfg config.LoggingConfig) (logr.Logger, error) {
	obsCfg := obslog.Config{
		Level: obslog.Level(cfg.Level),
		JSON:  cfg.JSON,
		Path:  cfg.Path,
	}
	if cfg.Path != "" {
		return obslog.ConfigureRotating(obsCfg)
	}
	return obslog.Configure(obsCfg), nil
}

// loadCustomScalars reads overrides.custom_scalar_config_path, a YAML
// document mapping scalar name to a JSON-Schema fragment, per SPEC_FULL.md
// §4.12. An empty path yields a nil map (every custom scalar degrades to
// {}, schemaconv's documented fallback).
func loadCustomScalars(path string) (schemaconv.CustomScalarMap, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var scalars schemaconv.CustomScalarMap
	if err := yaml.Unmarshal(data, &scalars); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return scalars, nil
}
