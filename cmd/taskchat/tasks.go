package main

import (
	"fmt"
	"io"
	"strings"

	taskdomain "gemini-task-backend/internal/task/domain"

	"github.com/spf13/cobra"
)

func newTasksCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks by effective rank",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			tasks, err := client().ListTasks(cmd.Context(), token)
			if err != nil {
				return relayErr(err)
			}
			if !all {
				tasks = taskdomain.TodoTasks(tasks)
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include done tasks")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Flip a task between todo and done",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := requireToken(); err != nil {
					return err
				}
				t, err := client().ToggleStatus(cmd.Context(), token, args[0])
				if err != nil {
					return relayErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", t.Title, t.Status)
				return nil
			},
		},
		newBumpCmd("up", taskdomain.DefaultAdjustStep),
		newBumpCmd("down", -taskdomain.DefaultAdjustStep),
	)
	return cmd
}

func newBumpCmd(name string, delta int) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: fmt.Sprintf("Adjust your priority for a task by %+d", delta),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			t, err := client().AdjustPriority(cmd.Context(), token, args[0], delta)
			if err != nil {
				return relayErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: rank %d\n", t.Title, taskdomain.EffectiveRank(*t))
			return nil
		},
	}
}

func newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Ask the model to rank the stored tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			res, err := client().Rank(cmd.Context(), token)
			if err != nil {
				return relayErr(err)
			}
			if res.Degraded {
				fmt.Fprintf(cmd.OutOrStdout(), "ranking unchanged: %s\n", res.Message)
			}
			printTasks(cmd.OutOrStdout(), res.Tasks)
			return nil
		},
	}
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Ask which task to do next",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			c := client()
			tasks, err := c.ListTasks(cmd.Context(), token)
			if err != nil {
				return relayErr(err)
			}
			s, err := c.Suggest(cmd.Context(), token, taskdomain.TodoTasks(tasks))
			if err != nil {
				return relayErr(err)
			}
			if idx := taskdomain.FindIndex(tasks, s.SuggestedTaskID); idx >= 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "→ %s\n", tasks[idx].Title)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Comment)
			return nil
		},
	}
}

func printTasks(w io.Writer, tasks []taskdomain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "(no tasks)")
		return
	}
	for _, t := range tasks {
		mark := " "
		if !t.IsTodo() {
			mark = "x"
		}
		due := ""
		if t.DueDate != nil {
			due = " [" + *t.DueDate + "]"
		}
		tags := ""
		if len(t.Tags) > 0 {
			tags = " #" + strings.Join(t.Tags, " #")
		}
		fmt.Fprintf(w, "[%s] %3d  %s%s%s  (%s)\n", mark, taskdomain.EffectiveRank(t), t.Title, due, tags, t.ID)
	}
}
