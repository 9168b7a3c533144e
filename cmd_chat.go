package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

func newChatCommand(envFile *string) *cobra.Command {
	var (
		memory    bool
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Output: cmd.ErrOrStderr()})
			if memory {
				cfg.Store.Backend = backendMemory
				cfg.Store.SessionBackend = backendMemory
			}
			if sessionID == "" {
				sessionID = "cli-" + uuid.NewString()
			}

			app, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			return chatLoop(cmd, app, sessionID)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep sessions and turn logs in memory instead of the configured backends")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to resume; a new one is generated when empty")
	return cmd
}

func chatLoop(cmd *cobra.Command, app *App, sessionID string) error {
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	var history []model.ChatMessage

	fmt.Fprintf(out, "Session %s. Type /quit to leave.\n", sessionID)
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			return in.Err()
		}
		text := strings.TrimSpace(in.Text())
		switch text {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		history = append(history, model.ChatMessage{Role: model.RoleUser, Content: text})
		reply, err := app.Engine.HandleTurn(cmd.Context(), &model.TurnRequest{
			Messages:  history,
			SessionID: sessionID,
		})
		if err != nil {
			history = history[:len(history)-1]
			fmt.Fprintf(out, "! %s (%s)\n", errx.UserMessage(err), errx.ClassifyErrorType(err))
			continue
		}

		history = append(history, model.ChatMessage{Role: model.RoleAssistant, Content: reply.Result.Message})
		fmt.Fprintf(out, "%s\n  [%s]\n", reply.Result.Message, reply.Result.ResponseType)
	}
}
