package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/servicehub/component"
	"github.com/kbukum/servicehub/config"
	"github.com/kbukum/servicehub/gateway"
	"github.com/kbukum/servicehub/logger"
	"github.com/kbukum/servicehub/observability"
	"github.com/kbukum/servicehub/server"
)

func main() {
	var cfg config.GatewayConfig
	if err := config.Load("gateway", &cfg); err != nil {
		logger.Fatal("failed to load configuration", logger.Fields("error", err.Error()))
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", logger.Fields("error", err.Error()))
	}

	logger.Init(cfg.Log, cfg.Name)
	log := logger.GetGlobalLogger()

	ctx := context.Background()
	shutdownTelemetry := initTelemetry(ctx, cfg, log)

	metrics, err := observability.NewMetrics(observability.Meter("gateway"))
	if err != nil {
		log.Fatal("failed to create metric instruments", logger.Fields("error", err.Error()))
	}

	cache := gateway.NewCache(gateway.NewRegistryClient(cfg.Discovery), cfg.Discovery, metrics)
	proxy := gateway.NewProxy(cache, cfg.Proxy, metrics)

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, func(ctx context.Context) []component.Health {
		return []component.Health{srv.Health(ctx), cache.Health(ctx)}
	})
	gateway.NewHandler(cache, proxy, cfg.Discovery.RegistryURL, cfg.Version).RegisterRoutes(srv.GinEngine())

	components := []component.Component{cache, srv}
	for _, comp := range components {
		if err := comp.Start(ctx); err != nil {
			log.Fatal("component failed to start", logger.Fields(
				"component", comp.Name(),
				"error", err.Error(),
			))
		}
	}
	log.Info("api gateway ready", logger.Fields(
		"addr", srv.Addr(),
		"registry_url", cfg.Discovery.RegistryURL,
	))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutdown signal received")
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := len(components) - 1; i >= 0; i-- {
		if err := components[i].Stop(stopCtx); err != nil {
			log.Error("component stop failed", logger.Fields(
				"component", components[i].Name(),
				"error", err.Error(),
			))
		}
	}
	shutdownTelemetry(stopCtx)
	log.Info("shutdown complete")
}

// initTelemetry installs the OTel providers when telemetry is enabled and
// returns the shutdown hook.
func initTelemetry(ctx context.Context, cfg config.GatewayConfig, log *logger.Logger) func(context.Context) {
	if !cfg.Telemetry.Enabled {
		return func(context.Context) {}
	}

	svc := observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}
	tp, err := observability.InitTracer(ctx, svc, cfg.Telemetry)
	if err != nil {
		log.Fatal("failed to initialize tracer", logger.Fields("error", err.Error()))
	}
	mp, err := observability.InitMeter(ctx, svc, cfg.Telemetry)
	if err != nil {
		log.Fatal("failed to initialize meter", logger.Fields("error", err.Error()))
	}

	return func(stopCtx context.Context) {
		if err := tp.Shutdown(stopCtx); err != nil {
			log.Error("tracer shutdown failed", logger.Fields("error", err.Error()))
		}
		if err := mp.Shutdown(stopCtx); err != nil {
			log.Error("meter shutdown failed", logger.Fields("error", err.Error()))
		}
	}
}
