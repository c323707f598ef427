package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/libris/pkg/cli/config"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/service/embedding"
	"github.com/secmon-lab/libris/pkg/usecase"
	"github.com/secmon-lab/libris/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const chatLocalUserID = types.UserID("local")

func cmdChat() *cli.Command {
	var settingsCfg config.Settings
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := []cli.Flag{}
	flags = append(flags, settingsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Talk to the librarian on the terminal (no pairing required)",
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
			if llmClient == nil {
				return goerr.New("gemini-project is required for chat")
			}

			embedder, err := embedding.New(llmClient, settings.EmbeddingDimension)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize embedding service")
			}

			uc := usecase.New(repo, llmClient,
				usecase.WithSettings(settings),
				usecase.WithEmbedding(embedder),
			)

			return runChatLoop(ctx, uc)
		},
	}
}

func runChatLoop(ctx context.Context, uc *usecase.UseCases) error {
	promptColor := color.New(color.FgCyan, color.Bold)
	replyColor := color.New(color.FgGreen)

	fmt.Println("Type a message to the librarian. Use 'exit' or Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		promptColor.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		reply := uc.HandleTurn(ctx, chatLocalUserID, text)
		replyColor.Println(reply)
	}

	if err := scanner.Err(); err != nil {
		return goerr.Wrap(err, "failed to read input")
	}
	return nil
}
