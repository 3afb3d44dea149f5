package cli

import (
	"context"
	"fmt"
	"io"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/task"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the tasks in the configured store",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := newApp(cfg, logger.NewNoOpLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.service.ListTasks(context.Background())
	if err != nil {
		return err
	}
	printTasks(cmd.OutOrStdout(), tasks)
	return nil
}

var statusColors = map[task.Status]*color.Color{
	task.StatusPending:    color.New(color.FgYellow),
	task.StatusInProgress: color.New(color.FgCyan),
	task.StatusCompleted:  color.New(color.FgGreen),
}

func printTasks(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		color.New(color.Faint).Fprintln(w, "No tasks yet.")
		return
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	for _, t := range tasks {
		c, ok := statusColors[t.Status]
		if !ok {
			c = color.New(color.FgRed)
		}
		c.Fprintf(w, "[%-11s] ", t.Status)
		bold.Fprint(w, t.Title)
		dim.Fprintf(w, "  (%s)\n", t.ID)
		if t.Description != "" {
			fmt.Fprintf(w, "              %s\n", t.Description)
		}
	}
}
