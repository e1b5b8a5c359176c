package cmd

import (
	"io"
	"os"

	"github.com/evolvesmith/evolvesmith/internal/sandbox"
	"github.com/spf13/cobra"
)

var (
	execIn  string
	execOut string
)

// exec is the sandbox worker entry point. The process and docker
// executors re-invoke this binary with it; it reads one work request,
// runs the batch, and writes one result. Faults are reported in the
// result payload, not via the exit code.
func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "exec",
		Short:  "Run one sandboxed work request (internal)",
		Hidden: true,
		RunE:   runExec,
	}
	cmd.Flags().StringVar(&execIn, "in", "", "request file (default stdin)")
	cmd.Flags().StringVar(&execOut, "out", "", "result file (default stdout)")
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if execIn != "" {
		f, err := os.Open(execIn)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if execOut != "" {
		f, err := os.Create(execOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return sandbox.ServeWork(in, out)
}
