package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/assistd-ai/assistd/internal/chat"
	"github.com/assistd-ai/assistd/internal/event"
	"github.com/assistd-ai/assistd/internal/logging"
	"github.com/assistd-ai/assistd/internal/provider"
	"github.com/assistd-ai/assistd/internal/server"
	"github.com/assistd-ai/assistd/internal/tool"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistd HTTP server",
	Long: `Start assistd as an HTTP server exposing the chat and tool API.

The server keeps running even when the inference backend is down; chat
requests fail with a provider error until the backend comes back.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logging.Info().
		Str("version", Version).
		Str("model", cfg.LLM.Model).
		Str("sandbox", cfg.Sandbox.Path).
		Msg("starting assistd")

	bus := event.NewBus()

	llm := provider.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model)
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := llm.Initialize(initCtx); err != nil {
		logging.Warn().Err(err).Msg("inference backend unavailable, starting degraded")
	}
	cancelInit()

	registry := tool.DefaultRegistry(cfg)
	sandbox := tool.NewSandbox(cfg.Sandbox.Path, cfg.MaxUploadBytes(), cfg.Sandbox.AllowedExtensions)
	executor := tool.NewExecutor(registry, sandbox, cfg.Commands, bus)

	manager := chat.NewManager(chat.NewStore(), bus, cfg.SessionTimeout(), cfg.SweepInterval())
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	manager.Start(sweepCtx)

	orchestrator := chat.NewOrchestrator(manager, executor, llm, cfg)

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	srvCfg.CORSOrigins = cfg.Server.CORSOrigins

	srv := server.New(srvCfg, cfg, orchestrator, llm, bus)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("host", srvCfg.Host).
			Int("port", srvCfg.Port).
			Msg("listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
	}

	manager.Stop()
	bus.Close()

	logging.Info().Msg("stopped")
	return nil
}
