package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	rootFlag    string
	noColorFlag bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "unitylens",
	Short:         "unitylens: Unity-aware C# authoring assistant",
	Long:          "Code lenses, Unity message hovers, coroutine toggles and .meta sidecar sync for Unity projects.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag {
			color.NoColor = true
		}
	},
}

// projectRoot returns the project root: --root, else the working directory.
func projectRoot() string {
	dir := rootFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return abs
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorMark, err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Unity project root (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log at debug level to stderr")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(lensCmd)
	rootCmd.AddCommand(hoverCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(usagesCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(checkCmd)
}
