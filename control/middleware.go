package control

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// requestIDMiddleware stamps every request with a correlation id, both as a
// response header and as a context value later handlers/log lines can pick
// up.
func (svc *Service) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tracingMiddleware wraps every request in an opentracing span named after
// the route, following the same "one span per operation" posture the
// teacher's linksrus services use their tracer.Pool for. It is a no-op if
// no tracer was configured.
func (svc *Service) tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if svc.cfg.Tracer == nil {
			next.ServeHTTP(w, r)
			return
		}
		span := svc.cfg.Tracer.StartSpan(r.Method + " " + r.URL.Path)
		defer span.Finish()
		ctx := opentracing.ContextWithSpan(r.Context(), span)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
