package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/dms-converter-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dms-converter-service/internal/adapter/kafka"
	"github.com/couchcryptid/dms-converter-service/internal/adapter/mapbox"
	natsadapter "github.com/couchcryptid/dms-converter-service/internal/adapter/nats"
	"github.com/couchcryptid/dms-converter-service/internal/config"
	"github.com/couchcryptid/dms-converter-service/internal/domain"
	"github.com/couchcryptid/dms-converter-service/internal/observability"
	"github.com/couchcryptid/dms-converter-service/internal/pipeline"
	"github.com/couchcryptid/dms-converter-service/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	converter := service.NewConverter(geocoder, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var checks readinessChecks

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(converter), writer, logger, metrics)
		checks = append(checks, p)

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka pipeline disabled")
	}

	var responder *natsadapter.Responder
	if cfg.NATSURL != "" {
		responder, err = natsadapter.NewResponder(cfg.NATSURL, converter, logger)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		if err := responder.Start(ctx, cfg.NATSSubject, cfg.NATSQueue); err != nil {
			logger.Error("failed to start nats responder", "error", err)
			os.Exit(1)
		}
		checks = append(checks, responder)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, checks, converter, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if responder != nil {
		responder.Close()
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// readinessChecks is ready when every member is. With no members the
// service is ready as soon as HTTP is serving.
type readinessChecks []httpadapter.ReadinessChecker

func (c readinessChecks) CheckReadiness(ctx context.Context) error {
	for _, check := range c {
		if err := check.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
