package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/bots"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/logging"
	"github.com/ziadkadry99/blogsmith/internal/pipeline"
	"github.com/ziadkadry99/blogsmith/internal/server"
	"github.com/ziadkadry99/blogsmith/internal/session"
	"github.com/ziadkadry99/blogsmith/internal/wizard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot: Telegram polling, WebSocket chat and the HTTP server",
	Long: `Starts the full service: the Telegram bot (when a token is configured),
the WebSocket development chat, the article generation worker pool and the
HTTP server with health, status and article preview endpoints.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	serveCmd.Flags().Bool("no-telegram", false, "do not start the Telegram bot even if a token is configured")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogFile, verbose)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := newLLMProvider(cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	verifier, err := newVerifier(cfg, log)
	if err != nil {
		return err
	}

	builder := knowledge.NewToolBuilder(embedder)
	sessions := session.NewStore(func() *knowledge.Registry {
		return knowledge.NewRegistry(builder, log)
	})
	intake, err := knowledge.NewIntake(cfg.DocumentsDir)
	if err != nil {
		return fmt.Errorf("preparing documents directory: %w", err)
	}
	archive, err := session.OpenArchive(filepath.Join(cfg.DataDir, "blogsmith.db"))
	if err != nil {
		return fmt.Errorf("opening transcript archive: %w", err)
	}
	defer archive.Close()

	// The sender map is filled below once the platform adapters exist; the
	// router holds a reference, so later inserts are visible to it.
	senders := make(map[bots.Platform]bots.Sender)
	router := bots.NewSenderRouter(senders)

	crew := pipeline.NewCrew(provider, cfg.Model, verifier, log)
	runner := pipeline.NewRunner(crew, router, archive,
		cfg.Pipeline.Workers,
		time.Duration(cfg.Pipeline.TimeoutMinutes)*time.Minute,
		log)
	runner.Start(ctx)

	wiz := wizard.New(sessions, intake, runner, provider, cfg.Model, archive, log)
	gateway := bots.NewGateway(wiz)

	wsChat := bots.NewWebSocketChat(gateway, cfg.MessageLimit, log)
	senders[bots.PlatformWebSocket] = wsChat

	noTelegram, _ := cmd.Flags().GetBool("no-telegram")
	if cfg.TelegramToken != "" && !noTelegram {
		tg, err := bots.NewTelegramBot(cfg.TelegramToken, gateway, cfg.MessageLimit, log)
		if err != nil {
			return fmt.Errorf("starting telegram bot: %w", err)
		}
		senders[bots.PlatformTelegram] = tg
		go func() {
			if err := tg.Run(ctx); err != nil {
				log.Error("telegram bot stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("telegram bot disabled")
	}

	allowAll, _ := cmd.Flags().GetBool("allow-all-origins")
	srv := server.New(server.Config{Port: cfg.ServerPort, AllowAll: allowAll}, sessions, archive, wsChat, log)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
	runner.Wait()
	return nil
}
