package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
)

var usagesCmd = &cobra.Command{
	Use:   "usages <file.cs>",
	Short: "List the scenes, prefabs and UnityEvents that use a script",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsages,
}

func runUsages(cmd *cobra.Command, args []string) error {
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

	found := false
	for _, l := range lenses {
		if !listsAssets(l.Command.Name) {
			continue
		}
		found = true
		fmt.Printf("%s %s\n", cyan(fmt.Sprintf("%4d", l.Range.Start.Line+1)), bold(l.Command.Title))
		for _, arg := range l.Command.Arguments {
			fmt.Printf("       %v\n", arg)
		}
	}
	if !found {
		fmt.Println(gray("no usage information (script has no .meta, or the features are disabled)"))
	}
	return nil
}
