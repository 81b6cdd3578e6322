package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/domain/lens"
	"github.com/corey/unitylens/internal/ports"
)

var toggleWriteFlag bool

var toggleCmd = &cobra.Command{
	Use:   "toggle <file.cs> <line>",
	Short: "Switch a Unity message between void and IEnumerator",
	Long: "Finds the message declared at <line> (one-based), or the nearest one above it, " +
		"and prints the edit that switches its return type. --write applies it.",
	Args: cobra.ExactArgs(2),
	RunE: runToggle,
}

func init() {
	toggleCmd.Flags().BoolVarP(&toggleWriteFlag, "write", "w", false, "Apply the edit to the file")
}

func runToggle(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}
	line, err := parseOneBased("line", args[1])
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
	target := toggleLensAt(lenses, line)
	if target == nil {
		return fmt.Errorf("no togglable Unity message at or above line %s", args[1])
	}

	raw, err := b.Execute(socket.ExecuteCommandParams{
		Command:   target.Command.Name,
		Arguments: target.Command.Arguments,
		Path:      path,
	})
	if err != nil {
		return err
	}
	var edit ports.WorkspaceEdit
	if err := json.Unmarshal(raw, &edit); err != nil {
		return fmt.Errorf("decode edit: %w", err)
	}

	if !toggleWriteFlag {
		fmt.Print(formatEdit(edit))
		if len(edit.Edits) > 0 {
			fmt.Println(gray("  run with --write to apply"))
		}
		return nil
	}
	if err := writeEdits(path, edit.Edits); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", green("✓"), target.Command.Title)
	return nil
}

// toggleLensAt returns the type toggle lens on line, else the nearest one
// above it.
func toggleLensAt(lenses []ports.CodeLens, line int) *ports.CodeLens {
	var best *ports.CodeLens
	for i := range lenses {
		l := &lenses[i]
		if l.Command.Name != lens.CommandChangeReturnType || l.Range.Start.Line > line {
			continue
		}
		if best == nil || l.Range.Start.Line > best.Range.Start.Line {
			best = l
		}
	}
	return best
}

// writeEdits applies edits to the file at path, keeping its mode.
func writeEdits(path string, edits []ports.TextEdit) error {
	if len(edits) == 0 {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := lens.ApplyEdits(text, edits)
	if err != nil {
		return fmt.Errorf("apply edits: %w", err)
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}
