package main

import (
	"errors"
	"fmt"
	"os"

	"gemini-task-backend/pkg/config"
	"gemini-task-backend/pkg/relayclient"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the relay base URL (BE_DOMAIN)
	serverURL string
	// token is the bearer credential sent with every call
	token string
	// userID names the session; the relay identifies users by token
	userID string

	errNoToken = errors.New("no token: pass --token or set TASKCHAT_TOKEN (see `taskchat token`)")
)

var rootCmd = &cobra.Command{
	Use:   "taskchat",
	Short: "Talk to the task relay from a terminal.",
	Long: `taskchat adds and updates tasks by chatting with the relay, and lists,
ranks and suggests tasks from the stored collection.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cfg := config.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", cfg.BackendURL, "relay base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("TASKCHAT_TOKEN"), "bearer token")
	rootCmd.PersistentFlags().StringVar(&userID, "user", cfg.DevUserID, "user id for the local session")

	rootCmd.AddCommand(
		newChatCmd(cfg.HistoryWindow),
		newGenerateCmd(),
		newTasksCmd(),
		newRankCmd(),
		newSuggestCmd(),
		newTokenCmd(cfg),
	)
}

func client() *relayclient.Client {
	return relayclient.New(serverURL, nil)
}

func requireToken() error {
	if token == "" {
		return errNoToken
	}
	return nil
}

func relayErr(err error) error {
	var se *relayclient.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("relay error (%d): %s", se.StatusCode, se.Message)
	}
	return err
}
