package main

import (
	"fmt"
	"io"
	"strings"

	"gemini-task-backend/pkg/gemini"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Send a raw prompt through the relay and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			body, err := client().Generate(cmd.Context(), token, strings.Join(args, " "))
			if err != nil {
				return relayErr(err)
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			return printGenerated(cmd.OutOrStdout(), body)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the provider body as returned")
	return cmd
}

// printGenerated writes the reply text, or the finish reason when the
// provider returned none
func printGenerated(w io.Writer, body []byte) error {
	text, reason, err := gemini.ExtractText(body)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintf(w, "(no text, finish reason %s)\n", reason)
		return nil
	}
	fmt.Fprintln(w, text)
	return nil
}
