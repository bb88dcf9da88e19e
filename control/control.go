// Package control implements the RESTful control surface spec.md sections
// 1 and 6 call for but leave unspecified at the wire level: an HTTP API
// over package procs' registry, following the same Config/validate/Service
// shape the teacher's front-end service uses.
package control

import (
	"context"
	"io/ioutil"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/mediaprocessors/core/procs"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for configuring the control service.
type Config struct {
	// Registry is the processor registry this service exposes over HTTP.
	Registry *procs.Registry

	// ListenAddr is the address to listen for incoming requests on.
	ListenAddr string

	// Tracer is used to start a span per request. If nil, tracing
	// middleware is skipped.
	Tracer opentracing.Tracer

	// MetricsGatherer backs the /metrics endpoint. If nil, the default
	// Prometheus registry is gathered.
	MetricsGatherer prometheus.Gatherer

	// Logger is the logger to use. If not defined an output-discarding
	// logger is used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.ListenAddr == "" {
		err = multierror.Append(err, xerrors.Errorf("listen address has not been specified"))
	}
	if cfg.Registry == nil {
		err = multierror.Append(err, xerrors.Errorf("registry has not been provided"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service implements the HTTP control surface for a processor registry.
type Service struct {
	cfg    Config
	router *mux.Router
}

// NewService creates a new control service instance with the specified
// config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("control service: config validation failed: %w", err)
	}

	svc := &Service{cfg: cfg, router: mux.NewRouter()}

	svc.router.HandleFunc("/procs/{type}", svc.createProc).Methods("POST")
	svc.router.HandleFunc("/procs", svc.listProcs).Methods("GET")
	svc.router.HandleFunc("/procs/{id}", svc.getProc).Methods("GET")
	svc.router.HandleFunc("/procs/{id}", svc.putProc).Methods("PUT")
	svc.router.HandleFunc("/procs/{id}", svc.deleteProc).Methods("DELETE")
	svc.router.HandleFunc("/types", svc.listTypes).Methods("GET")

	gatherer := cfg.MetricsGatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	svc.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	svc.router.Use(svc.requestIDMiddleware, svc.tracingMiddleware)
	return svc, nil
}

// Name implements the teacher's service.Service convention.
func (svc *Service) Name() string { return "mediaprocessors-control" }

// Handler exposes the configured router directly, for embedding behind a
// test server or an external http.Server managed by the caller.
func (svc *Service) Handler() http.Handler { return svc.router }

// Run starts serving HTTP requests and blocks until ctx is cancelled or the
// server fails.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{Addr: svc.cfg.ListenAddr, Handler: svc.router}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	svc.cfg.Logger.WithField("addr", svc.cfg.ListenAddr).Info("starting control server")
	if err = srv.Serve(l); err == http.ErrServerClosed {
		err = nil
	}
	return err
}
