package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	chatdomain "gemini-task-backend/internal/chat/domain"
	"gemini-task-backend/internal/conversation"
	"gemini-task-backend/pkg/relayclient"

	"github.com/spf13/cobra"
)

func newChatCmd(defaultWindow int) *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a conversation; type a number to pick a quick reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			creds := relayclient.StaticToken(token)
			c := client()

			m, err := conversation.New(
				conversation.Session{UserID: userID, Credentials: creds},
				c,
				relayclient.NewTaskStore(c, creds),
				conversation.WithHistoryWindow(window),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprintln(out, "タスクを話しかけてください (exit で終了)")
			for {
				fmt.Fprint(out, "> ")
				if !in.Scan() {
					return in.Err()
				}
				line := strings.TrimSpace(in.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				var outcome *conversation.Outcome
				if n, convErr := strconv.Atoi(line); convErr == nil && m.State() == conversation.StateClarifying {
					outcome, err = m.SelectOption(cmd.Context(), n-1)
				} else {
					outcome, err = m.Send(cmd.Context(), line)
				}
				if outcome == nil {
					fmt.Fprintln(out, err)
					continue
				}
				printMessages(cmd, outcome.Messages)
			}
		},
	}

	cmd.Flags().IntVar(&window, "history", defaultWindow, "messages of context sent per turn (HISTORY_WINDOW)")
	return cmd
}

func printMessages(cmd *cobra.Command, messages []chatdomain.Message) {
	out := cmd.OutOrStdout()
	for _, msg := range messages {
		if msg.Sender == chatdomain.SenderUser {
			continue
		}
		fmt.Fprintf(out, "AI: %s\n", msg.Content)
		if msg.SuggestedTask != nil && msg.SuggestedTask.Title != "" {
			fmt.Fprintf(out, "    (案: %s)\n", msg.SuggestedTask.Title)
		}
		for i, opt := range msg.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
	}
}
