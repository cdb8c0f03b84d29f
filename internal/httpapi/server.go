package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"launchpad/internal/backend"
	"launchpad/internal/gateway"
	"launchpad/internal/launcher"
	"launchpad/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Catalog() []types.CatalogEntry
	Entry(name string) (types.CatalogEntry, error)
	Options(name, format, size string) (types.OptionsResponse, error)
	Launch(ctx context.Context, req types.LaunchRequest) (types.LaunchResponse, error)
	Running(ctx context.Context) (map[string]json.RawMessage, error)
	Terminate(ctx context.Context, uid string) error
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/catalog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.CatalogResponse{Models: svc.Catalog()})
	})

	r.Get("/catalog/{name}", func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.Entry(chi.URLParam(r, "name"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, e)
	})

	r.Get("/catalog/{name}/options", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		resp, err := svc.Options(chi.URLParam(r, "name"), q.Get("format"), q.Get("size"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, resp)
	})

	r.Post("/launch", func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.LaunchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.ModelName) == "" {
			writeJSONError(w, http.StatusBadRequest, "model_name is required")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Str("path", r.URL.Path).Str("model", req.ModelName)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("launch start")
		}
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Launch(joinedCtx, req)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := launchErrorStatus(err)
			if status == http.StatusConflict {
				incrementLaunchRejected("in_flight")
			}
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo && zlog != nil {
				z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Err(err).Msg("launch end")
			}
			return
		}
		writeJSON(w, resp)
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Str("model_uid", resp.ModelUID)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("launch end")
		}
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		running, err := svc.Running(joinedCtx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, running)
	})

	r.Delete("/models/{uid}", func(w http.ResponseWriter, r *http.Request) {
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.Terminate(joinedCtx, chi.URLParam(r, "uid")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// launchErrorStatus maps sequencer errors to HTTP status codes: guard
// rejections to 409, incomplete selections to 400, backend failures to 502.
func launchErrorStatus(err error) int {
	switch {
	case launcher.IsLaunchInProgress(err):
		return http.StatusConflict
	case launcher.IsSelectionIncomplete(err):
		return http.StatusBadRequest
	case gateway.IsModelNotFound(err):
		return http.StatusNotFound
	case backend.IsStatus(err), backend.IsDecodeFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// writeServiceError maps non-launch service errors: catalog misses to 404,
// backend status codes pass through, anything else is a 502.
func writeServiceError(w http.ResponseWriter, err error) {
	if gateway.IsModelNotFound(err) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if he, ok := err.(HTTPError); ok {
		writeJSONError(w, he.StatusCode(), err.Error())
		return
	}
	writeJSONError(w, http.StatusBadGateway, err.Error())
}
