package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cinematch/internal/config"
	"github.com/kailas-cloud/cinematch/internal/dataset"
	logpkg "github.com/kailas-cloud/cinematch/internal/logger"
	"github.com/kailas-cloud/cinematch/internal/metrics"
	chiTransport "github.com/kailas-cloud/cinematch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/cinematch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
	"github.com/kailas-cloud/cinematch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting cinematch API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("dataset_format", cfg.Dataset.Format),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterCorpusMetrics()

	source, err := dataset.NewSource(cfg.Dataset)
	if err != nil {
		logger.Fatal("Invalid dataset configuration", zap.Error(err))
	}

	recommendSvc := recommenduc.New(source, recommenduc.Config{
		AcceptanceThreshold: cfg.Recommend.AcceptanceThreshold,
		CastLimit:           cfg.Recommend.CastLimit,
		DirectorJob:         cfg.Recommend.DirectorJob,
	}, logger)
	healthSvc := healthuc.New(recommendSvc, source)

	// Initial load. A failure keeps the server up in the not-ready state so
	// /health reports it and POST /api/reload can retry.
	ctx := context.Background()
	if st, err := recommendSvc.Reload(ctx); err != nil {
		logger.Error("Initial corpus load failed", zap.Error(err))
	} else {
		logger.Info("Corpus ready", zap.Int("movies", st.EntityCount))
	}

	server := chiTransport.NewServer(recommendSvc, healthSvc, chiTransport.Limits{
		DefaultResults:     cfg.Recommend.DefaultResults,
		MaxResults:         cfg.Recommend.MaxResults,
		DefaultSearchLimit: cfg.Recommend.DefaultSearchLimit,
		MaxSearchLimit:     cfg.Recommend.MaxSearchLimit,
	}, cfg.Recommend.PosterBaseURL, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.HTTP.RateLimitPerMinute > 0 {
		r.Use(httprate.Limit(
			cfg.HTTP.RateLimitPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited),
		))
	}
	r.Use(metrics.Middleware())
	server.Routes(r, chiTransport.BearerAuthMiddleware(cfg.Auth.AdminKeys))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// SIGHUP reloads the corpus; SIGINT/SIGTERM shut down gracefully.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sig := waitForShutdown(quit, func() {
		logger.Info("Received SIGHUP, reloading corpus")
		if _, err := recommendSvc.Reload(ctx); err != nil {
			logger.Error("Corpus reload failed, keeping previous snapshot", zap.Error(err))
		}
	})
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// waitForShutdown blocks until a non-SIGHUP signal arrives. Each SIGHUP runs
// reload on its own goroutine so shutdown is never queued behind a rebuild;
// the recommend service serializes overlapping reloads.
func waitForShutdown(quit <-chan os.Signal, reload func()) os.Signal {
	for sig := range quit {
		if sig != syscall.SIGHUP {
			return sig
		}
		go reload()
	}
	return nil
}

// rateLimited answers throttled requests in the API's JSON error shape.
func rateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
		Code:    chiTransport.ErrorCodeRateLimited,
		Message: "too many requests",
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
