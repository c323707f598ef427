package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/libris/pkg/cli/config"
	httpctrl "github.com/secmon-lab/libris/pkg/controller/http"
	"github.com/secmon-lab/libris/pkg/service/embedding"
	"github.com/secmon-lab/libris/pkg/usecase"
	"github.com/secmon-lab/libris/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var settingsCfg config.Settings
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LIBRIS_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, settingsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the Slack-facing HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			settings, err := settingsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load settings")
			}

			repo, err := repoCfg.Configure(ctx, settings.EmbeddingDimension)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}

			ucOpts := []usecase.Option{
				usecase.WithSettings(settings),
				usecase.WithAdminUserID(slackCfg.AdminUserID()),
			}

			if llmClient != nil {
				embedder, err := embedding.New(llmClient, settings.EmbeddingDimension)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize embedding service")
				}
				ucOpts = append(ucOpts, usecase.WithEmbedding(embedder))
				logging.Default().Info("Gemini enabled", "gemini", geminiCfg)
			} else {
				logging.Default().Warn("Gemini project not configured, running keyword-only without chat")
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Slack service")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
			}

			uc := usecase.New(repo, llmClient, ucOpts...)

			httpOpts := []httpctrl.Options{}
			if slackCfg.IsWebhookConfigured() {
				handler := httpctrl.NewSlackWebhookHandler(uc, slackSvc)
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhook(handler, slackCfg.SigningSecret()))
				logging.Default().Info("Slack webhook handler enabled", "slack", slackCfg)
			} else {
				logging.Default().Warn("Slack bot token or signing secret not configured, webhook disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
