package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mediaprocessors/core/control"
	"github.com/mediaprocessors/core/proc"
	"github.com/mediaprocessors/core/processors/bypass"
	"github.com/mediaprocessors/core/processors/genaudiodec"
	"github.com/mediaprocessors/core/processors/genaudioenc"
	"github.com/mediaprocessors/core/processors/genvideoenc"
	"github.com/mediaprocessors/core/procs"
	"github.com/mediaprocessors/core/status"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var (
	appName = "mediaprocessord"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:   "control-port",
			Value:  8080,
			EnvVar: "CONTROL_PORT",
			Usage:  "The port for exposing the control REST API",
		},
		cli.IntFlag{
			Name:   "pprof-port",
			Value:  6060,
			EnvVar: "PPROF_PORT",
			Usage:  "The port for exposing pprof endpoints",
		},
		cli.IntFlag{
			Name:   "fifo-slots",
			Value:  16,
			EnvVar: "FIFO_SLOTS",
			Usage:  "The number of frame slots allocated to each processor instance's input and output queues",
		},
		cli.BoolFlag{
			Name:   "enable-tracing",
			EnvVar: "ENABLE_TRACING",
			Usage:  "Report request spans to a Jaeger agent configured via the standard JAEGER_* environment variables",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	var wg sync.WaitGroup
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	metrics := proc.NewMetrics(prometheus.DefaultRegisterer)
	reg := procs.Open(appCtx.Int("fifo-slots"), logger, metrics)
	defer func() { _ = reg.Close() }()

	if err := registerBuiltinTypes(reg); err != nil {
		return err
	}

	var svcTracer opentracing.Tracer
	if appCtx.Bool("enable-tracing") {
		t, closer, err := control.NewTracer(appName)
		if err != nil {
			return err
		}
		svcTracer = t
		defer func() { _ = closer.Close() }()
	}

	ctlCfg := control.Config{
		Registry:   reg,
		ListenAddr: fmt.Sprintf(":%d", appCtx.Int("control-port")),
		Tracer:     svcTracer,
		Logger:     logger,
	}
	ctlSvc, err := control.NewService(ctlCfg)
	if err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctlSvc.Run(ctx); err != nil {
			logger.WithField("err", err).Error("control service exited with error")
			cancelFn()
		}
	}()

	pprofAddr := fmt.Sprintf(":%d", appCtx.Int("pprof-port"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.WithField("addr", pprofAddr).Info("listening for pprof requests")
		srv := &http.Server{Addr: pprofAddr}
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithField("err", err).Warn("pprof listener exited")
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			logger.WithField("signal", s.String()).Info("shutting down due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	wg.Wait()
	return nil
}

// registerBuiltinTypes installs the generic processor stubs and the bypass
// family, the only processor types this daemon ships with out of the box.
// Deployments that need codec-backed processors register them the same way
// from a separate init path; the registry itself has no compiled-in notion
// of which types are "real".
func registerBuiltinTypes(reg *procs.Registry) error {
	if code := reg.RegisterType(bypass.Descriptor(bypass.TypeName)); code != status.Success {
		return fmt.Errorf("registering %s: status %v", bypass.TypeName, code)
	}
	if code := reg.RegisterType(bypass.Descriptor(bypass.TypeName2)); code != status.Success {
		return fmt.Errorf("registering %s: status %v", bypass.TypeName2, code)
	}
	if code := reg.RegisterType(genaudioenc.Descriptor()); code != status.Success {
		return fmt.Errorf("registering %s: status %v", genaudioenc.TypeName, code)
	}
	if code := reg.RegisterType(genaudiodec.Descriptor()); code != status.Success {
		return fmt.Errorf("registering %s: status %v", genaudiodec.TypeName, code)
	}
	if code := reg.RegisterType(genvideoenc.Descriptor()); code != status.Success {
		return fmt.Errorf("registering %s: status %v", genvideoenc.TypeName, code)
	}
	return nil
}
