// Command blueprintd serves blueprint generation over REST and MCP.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/api"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/config"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/generator"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/logging"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/mcp"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/tls"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

func main() {
	// Parse command line flags
	cfgFile := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*cfgFile)
	if err != nil {
		log.Fatalf("Configuration loading failed: %v", err)
	}

	// Initialize logging
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	logger.Info("Starting Solution Blueprint Service",
		"environment", cfg.Dataverse.URL,
		"log_level", cfg.Log.Level,
	)

	if err := cfg.ValidateDataverse(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Initialize the metadata client
	client, err := dataverse.NewWebAPIClient(dataverse.Config{
		URL:          cfg.Dataverse.URL,
		TenantID:     cfg.Dataverse.TenantID,
		ClientID:     cfg.Dataverse.ClientID,
		ClientSecret: cfg.Dataverse.ClientSecret,
	})
	if err != nil {
		logger.Error("Failed to initialize metadata client", "error", err)
		log.Fatalf("Metadata client initialization failed: %v", err)
	}

	// Initialize the generation pipeline; progress lands in the debug log
	gen := generator.New(client, logger, generator.Options{
		SchemaDelay: cfg.SchemaDelay(),
		OnProgress: func(p blueprint.Progress) {
			logger.Debug("generation progress",
				"phase", p.Phase, "current", p.Current, "total", p.Total,
				"entity", p.EntityName, "message", p.Message)
		},
	})

	logger.Info("Generation pipeline initialized")

	// Create Echo server
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.NewProblemHandler()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("blueprintd"))

	// Health endpoint
	e.GET("/health", echo.WrapHandler(http.HandlerFunc(api.HandleHealth)))

	// Mount REST API handlers
	apiGroup := e.Group("/api/v1")
	api.NewServer(gen, client).RegisterRoutes(apiGroup)

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(gen, client)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	// expose OpenAPI spec and Swagger UI
	e.GET("/openapi.yaml", echo.WrapHandler(api.SpecHandler()))
	e.GET("/docs", echo.WrapHandler(api.SwaggerHandler()))

	// Create HTTP server
	addr := ":8080"
	if cfg.TLS.Enable {
		// use TLS port 8443
		addr = ":8443"
	}
	// Write timeout must outlast a full generation run: POST /blueprints
	// holds the response open while the pipeline walks the environment.
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			// ensure certificate exists if requested
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert", "error", err)
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}
