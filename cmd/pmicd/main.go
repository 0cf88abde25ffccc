package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptime-industries/pmic-agent/internal/monitor"
	"github.com/uptime-industries/pmic-agent/pkg/log"
	"github.com/uptime-industries/pmic-agent/pkg/pmicapi"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	var wg sync.WaitGroup

	configPath := flag.String("config", "", "path to the config file, searched in /etc/pmicd and . when empty")
	flag.Parse()

	// setup logger
	zapLogger := zap.Must(zap.NewDevelopment()).With(zap.String("app", "pmicd"))
	_ = zap.ReplaceGlobals(zapLogger.With(zap.String("scope", "global")))
	baseCtx := log.IntoContext(context.Background(), zapLogger)

	ctx, cancelCtx := context.WithCancelCause(baseCtx)
	defer cancelCtx(context.Canceled)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.FromContext(ctx).Fatal("Invalid configuration", zap.Error(err))
	}

	transport, err := monitor.OpenTransport(ctx, cfg)
	if err != nil {
		log.FromContext(ctx).Fatal("Failed to open charger transport", zap.Error(err))
	}

	mon, err := monitor.New(cfg, transport.Bus, transport.IRQ, nil)
	if err != nil {
		log.FromContext(ctx).Fatal("Failed to create monitor", zap.Error(err))
	}

	// setup stop signal handlers
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Wait for context cancel or signal
		select {
		case <-ctx.Done():
		case sig := <-sigs:
			// On signal, cancel context
			cancelCtx(fmt.Errorf("signal %s received", sig))
		}
	}()

	// Run transport receive loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := transport.Run(log.Named(ctx, "transport"))
		if err != nil && !errors.Is(err, context.Canceled) {
			log.FromContext(ctx).Error("Charger transport failed", zap.Error(err))
			cancelCtx(err)
		}
	}()

	// Run monitor
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := mon.Run(log.Named(ctx, "monitor"))
		if err != nil && !errors.Is(err, context.Canceled) {
			log.FromContext(ctx).Error("Failed to run monitor", zap.Error(err))
			cancelCtx(err)
		}
	}()

	// setup gRPC endpoint
	listener, err := listen(cfg.Listen.Grpc)
	if err != nil {
		log.FromContext(ctx).Error("Failed to listen for gRPC", zap.Error(err))
		cancelCtx(err)
	} else {
		grpcServer := grpc.NewServer()
		pmicapi.RegisterChargerServiceServer(grpcServer, monitor.NewGrpcServiceFor(mon))
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.FromContext(ctx).Info("Starting gRPC server", zap.String("addr", cfg.Listen.Grpc))
			if err := grpcServer.Serve(listener); err != nil {
				log.FromContext(ctx).Error("Failed to serve gRPC", zap.Error(err))
				cancelCtx(err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			grpcServer.GracefulStop()
		}()
	}

	// setup prometheus endpoint
	promHandler := http.NewServeMux()
	promHandler.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.Listen.Metrics, Handler: promHandler}
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.FromContext(ctx).Error("Failed to start prometheus server", zap.Error(err))
			cancelCtx(err)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.FromContext(ctx).Error("Failed to shutdown prometheus server", zap.Error(err))
		}
	}()

	// Wait for context cancel
	wg.Wait()
	if err := transport.Close(); err != nil {
		log.FromContext(ctx).Error("Failed to close charger transport", zap.Error(err))
	}
	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.FromContext(ctx).Error("Exiting", zap.Error(err))
		os.Exit(1)
	}
	log.FromContext(ctx).Info("Exiting")
}

// listen opens a gRPC listener for "unix:///path" or "host:port". A stale
// unix socket left by a previous run is removed first.
func listen(addr string) (net.Listener, error) {
	if path, ok := strings.CutPrefix(addr, "unix://"); ok {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
		return net.Listen("unix", path)
	}
	return net.Listen("tcp", addr)
}
