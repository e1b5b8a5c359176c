package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/evolvesmith/evolvesmith/internal/task"
	"github.com/spf13/cobra"
)

var listTasksFile string

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available tasks",
		RunE:  runList,
	}
	cmd.Flags().StringVar(&listTasksFile, "tasks-file", "", "YAML file with additional tasks")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	tasks := task.Builtin()
	if listTasksFile != "" {
		extra, err := task.LoadFile(listTasksFile)
		if err != nil {
			return err
		}
		tasks = append(tasks, extra...)
	}
	if err := task.Validate(tasks); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tARITY\tTESTS\tSEEDS")
	fmt.Fprintln(tw, strings.Repeat("-", 40))
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", t.Name, t.Arity(), len(t.Tests), len(t.Seeds))
	}
	return tw.Flush()
}
