// Package main is the entry point of stickyproxy, a sticky-session reverse proxy for socket.io backends. It loads
// configuration (flags, env and YAML), connects to Redis, starts the node health monitor and serves three
// listeners: the public proxy, the admin API with metrics and, optionally, the gRPC health service. On SIGINT or
// SIGTERM every listener is shut down gracefully with a 10s timeout, then probing stops and pending binding
// refreshes are flushed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stickyproxy/adapters"
	"stickyproxy/adapters/myredis"
	"stickyproxy/handlers"
	"stickyproxy/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	base := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger := withTimestampAndCaller(base)

	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger = withTimestampAndCaller(level.NewFilter(base, levelOption(config.LogLevel)))
	level.Info(logger).Log(
		"msg", "Configuration loaded",
		"service_port_http", config.HTTPPort,
		"admin_address", config.AdminAddress,
		"service_port_grpc", config.GRPCPort,
		"redis_addr", config.Redis.Addr,
		"nodes", len(config.Proxy.Nodes),
		"path", config.Proxy.Path,
	)

	redisClient, err := myredis.NewRedisUniversalClient(config.Redis)
	if err != nil {
		level.Error(logger).Log("msg", "Failed to create Redis client", "err", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			level.Error(logger).Log("msg", "Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Connected to Redis")
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry, config.Proxy.Nodes)

	store := myredis.NewBindingStore(
		redisClient,
		config.Proxy.KeyPrefix,
		config.Proxy.KeyExpiry,
		config.Proxy.StoreTimeout,
		logger,
		myredis.WithWriteHook(metrics.ObserveBinding),
	)

	healthServer := health.NewServer()
	monitor := service.NewHealthMonitor(
		adapters.HTTPProber(&http.Client{}),
		logger,
		metrics,
		service.NewGRPCHealthReporter(healthServer),
	)
	if err := monitor.Start(config.Proxy.Nodes, config.Proxy.CheckInterval, config.Proxy.CheckTimeout); err != nil {
		level.Error(logger).Log("msg", "Failed to start health monitor", "err", err)
		os.Exit(1)
	}

	// Public proxy
	var proxyServer *http.Server
	{
		errHandler := service.NewHTTPErrorHandler(service.NewErrorCodeToStatusCodeMaps(), logger)
		router := service.NewRouter(config.Proxy.Path, monitor, store, logger)
		transport := http.DefaultTransport.(*http.Transport).Clone()
		forwarder := service.NewForwarder(router, transport, errHandler, metrics, logger)
		proxyServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", config.HTTPPort),
			Handler:           service.NewProxy(router, forwarder, errHandler, metrics),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	// Admin API (Echo)
	var e *echo.Echo
	{
		e = echo.New()
		e.HideBanner = true
		e.HidePort = true
		service.RegisterErrorHandler(e, logger)
		handlers.RegisterHandlers(e, handlers.NewAdminServer(monitor, store, logger), config.TelemetryPath, registry)
	}

	// gRPC health
	var grpcServer *grpc.Server
	if config.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", config.GRPCPort))
		if err != nil {
			level.Error(logger).Log("msg", "Failed to listen for gRPC health", "err", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		go func() {
			level.Info(logger).Log("msg", "Starting gRPC health server", "addr", lis.Addr().String())
			if err := grpcServer.Serve(lis); err != nil {
				level.Error(logger).Log("msg", "gRPC health server error", "err", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		level.Info(logger).Log("msg", "Starting proxy server", "addr", proxyServer.Addr)
		if err := proxyServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "Proxy server error", "err", err)
			quit <- syscall.SIGTERM
		}
	}()
	go func() {
		level.Info(logger).Log("msg", "Starting admin server", "addr", config.AdminAddress)
		if err := e.Start(config.AdminAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "Admin server error", "err", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	level.Info(logger).Log("msg", "Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := proxyServer.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error during proxy shutdown", "err", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error during admin shutdown", "err", err)
	}
	if grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
	}

	monitor.Stop()
	store.Wait()
	level.Info(logger).Log("msg", "Server stopped")
}

func withTimestampAndCaller(logger log.Logger) log.Logger {
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	return log.WithPrefix(logger, "caller", log.DefaultCaller)
}

// levelOption maps the --log.level value to a go-kit level filter.
func levelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
