package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const VERSION = "0.3.0"

// exitFunc is replaced in tests
var exitFunc = os.Exit

// Define color functions
var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

// getColorizedLogo returns the program logo: a tiny scatter plot
func getColorizedLogo() string {
	return cyan("⠈") + green("⠐⠂") + yellow("⠠⠁") + red("⠄")
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "matchplot",
		Short:         bold("Plot positive match fraction against match length for BLAST/DIAMOND hits"),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          noPositionalArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.version {
				fmt.Fprintf(cmd.OutOrStdout(), "matchplot %s\n", VERSION)
				return nil
			}

			// If no flags are provided, show help
			if cmd.Flags().NFlag() == 0 {
				helpFunc(cmd, args)
				return nil
			}

			cfg, err := opts.validate(cmd)
			if err != nil {
				return err
			}
			return runPlot(cfg, cmd.ErrOrStderr())
		},
	}

	opts.addFlags(cmd)
	cmd.SetHelpFunc(helpFunc)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
		fmt.Fprintln(os.Stderr, red("Try 'matchplot --help' for more information"))
		exitFunc(1)
	}
}
