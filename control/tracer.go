package control

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// NewTracer builds a Jaeger tracer for serviceName from the standard
// JAEGER_* environment variables, sampling every span so the control
// surface's request/response trace is never thinned by the default
// probabilistic sampler. The returned closer must be closed (flushing
// any buffered spans) before the owning process exits; Config.Tracer
// takes the returned tracer directly.
func NewTracer(serviceName string) (opentracing.Tracer, io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	cfg.Sampler = &jaegercfg.SamplerConfig{
		Type:  jaeger.SamplerTypeConst,
		Param: 1,
	}
	cfg.ServiceName = serviceName
	return cfg.NewTracer()
}
