package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
)

var lensCmd = &cobra.Command{
	Use:   "lens <file.cs>",
	Short: "Show the code lenses of a C# file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLens,
}

func runLens(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}
	b, err := openBackend(projectRoot())
	if err != nil {
		return err
	}
	defer b.Close()

	lenses, err := b.CodeLens(socket.DocumentParams{Path: path})
	if err != nil {
		return err
	}
	fmt.Print(formatLenses(args[0], lenses))
	return nil
}
