package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/c360studio/belhisfirm/config"
	"github.com/c360studio/belhisfirm/endpoint"
	"github.com/c360studio/belhisfirm/metric"
	"github.com/c360studio/belhisfirm/queries"
	"github.com/c360studio/belhisfirm/sparql"
	"github.com/prometheus/client_golang/prometheus"
)

// app wires configuration, templates and metrics for one command run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *queries.Registry
	promReg  *prometheus.Registry
	metrics  *metric.Metrics
}

// load builds the app on first use and caches it.
func (g *globalOptions) load() (*app, error) {
	if g.app != nil {
		return g.app, nil
	}

	logger := newLogger(g.logLevel)
	slog.SetDefault(logger)

	loader := config.NewLoader(logger)
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = loader.LoadFile(g.configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.templatesDir != "" {
		cfg.Templates.Dir = g.templatesDir
	}

	registry := queries.Default()
	if cfg.Templates.Dir != "" && !g.skipOverrides {
		reg, n, err := queries.LoadOverrides(registry, cfg.Templates.Dir, cfg.Templates.Pattern)
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		logger.Debug("Loaded template overrides", "dir", cfg.Templates.Dir, "files", n)
		registry = reg
	}

	promReg := prometheus.NewRegistry()
	g.app = &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		promReg:  promReg,
		metrics:  metric.NewMetrics(promReg),
	}
	return g.app, nil
}

func (g *globalOptions) writeMetrics() error {
	if g.metricsFile == "" || g.app == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(g.metricsFile, g.app.promReg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// client returns an endpoint client for url using the configured method,
// timeout and retry count.
func (a *app) client(url string) *endpoint.Client {
	rc := endpoint.DefaultRetryConfig()
	rc.MaxAttempts = a.cfg.Endpoint.MaxAttempts
	return endpoint.NewClient(url,
		endpoint.WithHTTPClient(&http.Client{Timeout: a.cfg.Endpoint.Timeout}),
		endpoint.WithMethod(a.cfg.Endpoint.Method),
		endpoint.WithRetryConfig(rc),
		endpoint.WithLogger(a.logger),
		endpoint.WithMetrics(a.metrics))
}

// bindingFlags are the placeholder flags of render and query.
type bindingFlags struct {
	id                  string
	facetClassPredicate string
	set                 []string
}

func (b *bindingFlags) register(flags interface {
	StringVar(p *string, name, value, usage string)
	StringArrayVar(p *[]string, name string, value []string, usage string)
}) {
	flags.StringVar(&b.id, "id", "", "IRI bound to <ID>")
	flags.StringVar(&b.facetClassPredicate, "facet-class-predicate", "", "IRI bound to <FACET_CLASS_PREDICATE>")
	flags.StringArrayVar(&b.set, "set", nil, "Fragment placeholder as NAME=SPARQL (repeatable)")
}

// bindings validates the flags. Term placeholders must be IRIs; fragments are
// passed through verbatim.
func (b *bindingFlags) bindings() (sparql.Bindings, error) {
	out := sparql.Bindings{}
	for name, raw := range map[string]string{
		sparql.PlaceholderID:                  b.id,
		sparql.PlaceholderFacetClassPredicate: b.facetClassPredicate,
	} {
		if raw == "" {
			continue
		}
		iri, err := sparql.IRI(raw)
		if err != nil {
			return nil, fmt.Errorf("<%s>: %w", name, err)
		}
		out[name] = iri
	}
	for _, kv := range b.set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected NAME=VALUE", kv)
		}
		name = strings.Trim(strings.TrimSpace(name), "<>")
		kind, known := sparql.KindOf(name)
		if !known {
			return nil, fmt.Errorf("%w: <%s>", sparql.ErrUnknownPlaceholder, name)
		}
		if kind == sparql.PlaceholderTerm {
			iri, err := sparql.IRI(value)
			if err != nil {
				return nil, fmt.Errorf("<%s>: %w", name, err)
			}
			value = iri
		}
		out[name] = value
	}
	return out, nil
}
