// Command kde-server boots the gRPC service and, if enabled, a REST
// gateway proxying to it, adapted from the teacher's cmd/server (which
// booted a VectorDB gRPC service plus optional REST gateway the same
// way).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcserver "github.com/arimanyus/meanshift/pkg/api/grpc"
	"github.com/arimanyus/meanshift/pkg/api/rest"
	"github.com/arimanyus/meanshift/pkg/api/rest/middleware"
	"github.com/arimanyus/meanshift/pkg/config"
	"github.com/arimanyus/meanshift/pkg/observability"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		host        = flag.String("host", "", "gRPC server host (overrides config/env)")
		port        = flag.Int("port", 0, "gRPC server port (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("KDE server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}
	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	logger := observability.NewDefaultLogger()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	metrics := observability.NewMetrics()

	logger.Info("Initializing KDE server...")
	grpcServer, err := grpcserver.NewServer(cfg, metrics, logger)
	if err != nil {
		logger.Fatalf("failed to create gRPC server: %v", err)
	}

	printStartupInfo(cfg)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting gRPC server...")
		if err := grpcServer.Start(); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	var restServer *rest.Server
	if cfg.REST.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()

			time.Sleep(500 * time.Millisecond)

			restConfig := rest.Config{
				Host:        cfg.REST.Host,
				Port:        cfg.REST.Port,
				GRPCAddress: cfg.Server.Address(),
				CORSEnabled: cfg.REST.CORSEnabled,
				CORSOrigins: cfg.REST.CORSOrigins,
				Auth: middleware.AuthConfig{
					Enabled:     cfg.REST.AuthEnabled,
					JWTSecret:   cfg.REST.JWTSecret,
					PublicPaths: cfg.REST.PublicPaths,
					AdminPaths:  cfg.REST.AdminPaths,
				},
				RateLimit: middleware.RateLimitConfig{
					Enabled:        cfg.REST.RateLimitEnabled,
					RequestsPerSec: cfg.REST.RateLimitPerSec,
					Burst:          cfg.REST.RateLimitBurst,
					PerIP:          cfg.REST.RateLimitPerIP,
					PerUser:        cfg.REST.RateLimitPerUser,
					GlobalLimit:    cfg.REST.RateLimitGlobal,
				},
			}

			var err error
			restServer, err = rest.NewServer(restConfig)
			if err != nil {
				errChan <- fmt.Errorf("failed to create REST server: %w", err)
				return
			}

			logger.Info("Starting REST gateway...")
			if err := restServer.Start(); err != nil {
				errChan <- fmt.Errorf("REST server error: %w", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	logger.Info("Servers are ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		logger.Info("Received signal", map[string]interface{}{"signal": sig.String()})
	case err := <-errChan:
		logger.Error("Server error", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if restServer != nil {
		if err := restServer.Stop(ctx); err != nil {
			logger.Error("error stopping REST server", map[string]interface{}{"error": err.Error()})
		}
	}

	if err := grpcServer.Stop(); err != nil {
		logger.Error("error stopping gRPC server", map[string]interface{}{"error": err.Error()})
	}

	wg.Wait()

	logger.Info("Servers stopped. Goodbye!")
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                             ║
║   _  ______  ______                                        ║
║  | |/ /  _ \|  ____|                                        ║
║  | ' /| | | | |__   engine                                  ║
║  |  < | | | |  __|                                          ║
║  | . \| |_| | |____                                         ║
║  |_|\_\____/|______|                                        ║
║                                                             ║
║   Kernel density estimation and mean-shift clustering       ║
║                                                             ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║            gRPC Server Configuration                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Printf("║ Max Connections:  %-35d ║\n", cfg.Server.MaxConnections)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            REST Gateway Configuration                  ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.REST.Enabled)
	if cfg.REST.Enabled {
		fmt.Printf("║ Address:          %-35s ║\n", fmt.Sprintf("%s:%d", cfg.REST.Host, cfg.REST.Port))
		fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.REST.AuthEnabled)
		fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.REST.CORSEnabled)
		fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.REST.RateLimitEnabled)
	}
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            Default KDE Configuration                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Kernel:           %-35s ║\n", cfg.KDE.Kernel)
	fmt.Printf("║ Spatial:          %-35s ║\n", cfg.KDE.Spatial)
	fmt.Printf("║ Balls:            %-35s ║\n", cfg.KDE.Balls)
	fmt.Printf("║ Quality:          %-35v ║\n", cfg.KDE.Quality)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            Cache Configuration                         ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.Cache.Enabled)
	fmt.Printf("║ Capacity:         %-35d ║\n", cfg.Cache.Capacity)
	fmt.Printf("║ TTL:              %-35s ║\n", cfg.Cache.TTL)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("KDE server - kernel density estimation and mean-shift clustering service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kde-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -host HOST        gRPC server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        gRPC server port (default: 50051)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  KDE_HOST, KDE_PORT, KDE_MAX_CONNECTIONS, KDE_REQUEST_TIMEOUT")
	fmt.Println("  KDE_ENABLE_TLS, KDE_TLS_CERT, KDE_TLS_KEY")
	fmt.Println("  KDE_REST_ENABLED, KDE_REST_HOST, KDE_REST_PORT")
	fmt.Println("  KDE_REST_AUTH_ENABLED, KDE_REST_JWT_SECRET")
	fmt.Println("  KDE_KERNEL, KDE_SPATIAL, KDE_BALLS, KDE_QUALITY, KDE_EPSILON")
	fmt.Println("  KDE_ITER_CAP, KDE_IDENT_DIST, KDE_MERGE_RANGE, KDE_MERGE_CHECK_STEP")
	fmt.Println("  KDE_CACHE_ENABLED, KDE_CACHE_CAPACITY, KDE_CACHE_TTL")
	fmt.Println("  KDE_MAX_MODELS, KDE_MAX_EXEMPLARS, KDE_MAX_DIMENSIONS, KDE_RATE_LIMIT_QPS")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  kde-server")
	fmt.Println("  kde-server -port 9090")
	fmt.Println("  KDE_PORT=9090 kde-server")
	fmt.Println()
}
