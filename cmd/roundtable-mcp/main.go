package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/browsium/roundtable-mcp/internal/config"
	"github.com/browsium/roundtable-mcp/internal/handler"
	"github.com/browsium/roundtable-mcp/internal/mcp"
	"github.com/browsium/roundtable-mcp/internal/service/focusgroup"
	"github.com/browsium/roundtable-mcp/internal/service/roundtable"
	"github.com/browsium/roundtable-mcp/pkg/utils"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Logs go to stderr; on stdio transport stdout belongs to the
	// protocol.
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	utils.SetLogger(logger)

	client := roundtable.NewClient(cfg.Remote, logger.Named("roundtable"))
	workflow := focusgroup.NewService(client, cfg.Workflow, logger.Named("focusgroup"))
	server := mcp.NewServer(client, workflow, version, logger.Named("mcp"))

	switch cfg.Server.Transport {
	case config.TransportStdio:
		logger.Info("serving on stdio")
		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("stdio server error", zap.Error(err))
		}
	case config.TransportHTTP:
		serveHTTP(ctx, cfg, server, logger)
	default:
		logger.Fatal("unknown transport", zap.String("transport", cfg.Server.Transport))
	}
}

func newLogger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func serveHTTP(ctx context.Context, cfg *config.Config, server *mcp.Server, logger *zap.Logger) {
	registry := handler.NewRegistry(cfg.Sessions, logger.Named("sessions"))
	go registry.Run(ctx)

	router := handler.NewRouter(handler.RouterConfig{
		Path: cfg.Server.Path,
		Auth: cfg.Auth,
		NewSession: func(ctx context.Context, sessionID string) (http.Handler, io.Closer, error) {
			transport := sdk.NewStreamableServerTransport(sessionID, nil)
			session, err := server.Connect(ctx, transport)
			if err != nil {
				return nil, nil, err
			}
			return transport, session, nil
		},
		Registry: registry,
		Logger:   logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("serving on http",
		zap.String("addr", cfg.Server.Addr),
		zap.String("path", cfg.Server.Path))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
