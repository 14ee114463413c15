package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tournevent/shipkit/internal/config"
	"github.com/tournevent/shipkit/internal/credstore"
	"github.com/tournevent/shipkit/internal/filter"
	"github.com/tournevent/shipkit/internal/telemetry"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// app carries the state shared by every shipctl command.
type app struct {
	query    string
	output   string
	pageSize int
	pages    int
	profile  string

	cfg      *config.Config
	logger   *otelzap.Logger
	tracer   trace.Tracer
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	store    *credstore.Store
	api      *shipapi.Client

	// clientOpts are appended when the API client is built.
	clientOpts []shipapi.Option

	shutdownTracer func(context.Context) error
}

func (a *app) setup(ctx context.Context) error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.logger == nil {
		logger, err := telemetry.NewLogger(a.cfg.LogLevel)
		if err != nil {
			return err
		}
		a.logger = logger
	}

	if a.cfg.OTELEnabled && a.tracer == nil {
		tracer, shutdown, err := telemetry.InitTracer(ctx, a.cfg.OTELEndpoint, a.cfg.ServiceName, a.cfg.Version)
		if err != nil {
			a.logger.Warn("Failed to initialize tracer", zap.Error(err))
		} else {
			a.tracer = tracer
			a.shutdownTracer = shutdown
		}
	}

	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.metrics = telemetry.NewMetrics(a.registry)
	}
	if a.store == nil {
		a.store = credstore.New(a.cfg.KeyringBackend)
	}
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.shutdownTracer != nil {
		return a.shutdownTracer(ctx)
	}
	return nil
}

// client builds the API client on first use so that commands which never
// talk to the API do not need a key.
func (a *app) client() (*shipapi.Client, error) {
	if a.api != nil {
		return a.api, nil
	}

	apiKey, err := a.store.Resolve(a.cfg.APIKey, a.profile)
	if err != nil {
		return nil, err
	}

	opts := []shipapi.Option{
		shipapi.WithBaseURL(a.cfg.BaseURL),
		shipapi.WithTimeout(a.cfg.Timeout),
		shipapi.WithUserAgent("shipctl/" + version),
		shipapi.WithLogger(a.logger),
		shipapi.WithObserver(a.metrics),
	}
	if a.tracer != nil {
		opts = append(opts, shipapi.WithTracer(a.tracer))
	}
	opts = append(opts, a.clientOpts...)

	api, err := shipapi.New(apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	a.api = api
	return api, nil
}

func (a *app) pageSizePtr() *int {
	if a.pageSize <= 0 {
		return nil
	}
	size := a.pageSize
	return &size
}

// print writes v as indented JSON or YAML, filtered through --query when set.
func (a *app) print(w io.Writer, v any) error {
	out := v
	if a.query != "" || a.output == "yaml" {
		// YAML is rendered from the JSON form so keys keep their API names.
		filtered, err := filter.ApplyValue(v, a.query)
		if err != nil {
			return err
		}
		out = filtered
	}

	switch a.output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown output format %q (use json or yaml)", a.output)
	}
}
