package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"github.com/datasaur/datasaur-mcp/internal/logger"
	"github.com/datasaur/datasaur-mcp/internal/relay"
	"github.com/datasaur/datasaur-mcp/internal/server"
	"github.com/datasaur/datasaur-mcp/internal/storage"
	"github.com/datasaur/datasaur-mcp/internal/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const logBufferSize = 500

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP tool server",
	Long:  `Start the MCP tool server on stdio (default) or streamable HTTP`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("transport", "", "transport (stdio/http), overrides TRANSPORT")
	serveCmd.Flags().String("host", "127.0.0.1", "HTTP host")
	serveCmd.Flags().Int("port", 8000, "HTTP port")
	serveCmd.Flags().String("mode", "release", "gin mode (debug/release/test)")

	_ = viper.BindPFlag("transport", serveCmd.Flags().Lookup("transport"))
	_ = viper.BindPFlag("http.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("http.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("http.mode", serveCmd.Flags().Lookup("mode"))

	// the same flags work without the subcommand
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	buffer := logger.NewLogBuffer(logBufferSize)
	log, err := logger.New(cfg.Logging, buffer)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting Datasaur MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("transport", cfg.Transport),
	)
	logEndpointStatus(log, cfg)

	svc := tools.NewService(relay.New(log), cfg, log)
	var usage *storage.UsageStore
	if cfg.Storage.UsageDir != "" {
		usage = storage.NewUsageStore(cfg.Storage.UsageDir)
		svc.WithUsage(usage)
		log.Info("Recording endpoint usage", zap.String("dir", cfg.Storage.UsageDir))
	}

	srv, err := server.New(cfg, log, svc, buffer, Version)
	if err != nil {
		log.Error("Failed to create server", zap.Error(err))
		return err
	}
	if usage != nil {
		srv.WithUsage(usage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Transport {
	case config.TransportStdio:
		return srv.RunStdio(ctx)
	case config.TransportHTTP:
		return serveHTTP(ctx, srv, log)
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Transport)
	}
}

func serveHTTP(ctx context.Context, srv *server.Server, log *zap.Logger) error {
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server started", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error("Server failed", zap.Error(err))
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}

// logEndpointStatus reports which catalog entries can be called. Missing
// settings are not fatal; the affected tools answer with a configuration error.
func logEndpointStatus(log *zap.Logger, cfg *config.Config) {
	if cfg.Datasaur.APIKey == "" {
		log.Warn("DATASAUR_API_KEY is not set, every model tool will report a configuration error")
	} else {
		log.Info("Datasaur API key is set", zap.String("key_prefix", maskAPIKey(cfg.Datasaur.APIKey)))
	}

	for _, spec := range config.AllSpecs() {
		ep := cfg.Endpoint(spec.Name)
		if !ep.Configured() {
			log.Warn("Endpoint not configured",
				zap.String("endpoint", spec.Name),
				zap.String("env", spec.URLEnv))
			continue
		}
		log.Debug("Endpoint configured",
			zap.String("endpoint", spec.Name),
			zap.Duration("timeout", ep.Timeout))
	}
}
