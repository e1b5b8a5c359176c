package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evolvesmith",
		Short: "Evolves small programs to pass example-based tests",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "evolvesmith.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newExecCmd())
	return root
}
