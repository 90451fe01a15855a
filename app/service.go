package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aqcast/api/health"
	"aqcast/api/query"
	"aqcast/config"
	"aqcast/core/predict"
	"aqcast/infra/logger"
	"aqcast/infra/meteostat"
	"aqcast/infra/metrics"
	aqmqtt "aqcast/infra/mqtt"
	"aqcast/infra/openaq"
	"aqcast/infra/openmeteo"
	"aqcast/infra/store"
)

// Service owns the HTTP server and the resources behind it.
type Service struct {
	server    *http.Server
	archive   store.Archive
	publisher aqmqtt.Publisher
	log       logger.Logger
}

// New builds the service from the configuration. Artifact loading happens
// here, once: a missing or malformed bundle is a startup failure, not a
// per-request condition.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	bundle, err := predict.LoadBundle(cfg.Artifacts.Dir)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	var engineOpts []predict.Option
	if cfg.Artifacts.AllowPartialFeatures {
		engineOpts = append(engineOpts, predict.WithPartialFeatures())
	}
	engine := predict.NewEngine(bundle, engineOpts...)

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{log: logg}

	if cfg.Store.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		archive, err := store.Open(ctx, cfg.Store)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		svc.archive = archive
	}
	if cfg.MQTT.Enabled {
		publisher, err := aqmqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = publisher
	}

	handler := query.NewHandler(
		openaq.NewClient(cfg.OpenAQ, nil),
		meteostat.NewClient(cfg.Meteostat, nil),
		openmeteo.NewClient(cfg.OpenMeteo, nil),
		engine,
		sink,
		svc.archive,
		svc.publisher,
		logger.New("query"),
	)

	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Please enter valid URL endpoint"}`))
	}).Methods(http.MethodGet)
	router.Handle("/health", health.NewHandler()).Methods(http.MethodGet)
	handler.RegisterRoutes(router)
	if cfg.Metrics.PrometheusEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	svc.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsMiddleware(cfg.Server.AllowedOrigins, router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}
	return svc, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if s.archive != nil {
		return s.archive.Close()
	}
	return nil
}

// corsMiddleware allows cross-origin requests from the configured origins.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
