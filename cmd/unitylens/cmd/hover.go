package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
)

var hoverCmd = &cobra.Command{
	Use:   "hover <file.cs> <line> <column>",
	Short: "Describe the Unity message at a position",
	Long:  "Line and column are one-based, as editors show them.",
	Args:  cobra.ExactArgs(3),
	RunE:  runHover,
}

func runHover(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}
	line, err := parseOneBased("line", args[1])
	if err != nil {
		return err
	}
	col, err := parseOneBased("column", args[2])
	if err != nil {
		return err
	}

	b, err := openBackend(projectRoot())
	if err != nil {
		return err
	}
	defer b.Close()

	h, err := b.Hover(socket.HoverParams{
		DocumentParams: socket.DocumentParams{Path: path},
		Line:           line,
		Character:      col,
	})
	if err != nil {
		return err
	}
	fmt.Print(formatHover(args[0], h))
	return nil
}

// parseOneBased converts a one-based command-line number to a zero-based
// position component.
func parseOneBased(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: want a number ≥ 1", name, s)
	}
	return n - 1, nil
}
