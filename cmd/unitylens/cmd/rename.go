package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
)

var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Move an asset together with its .meta sidecar",
	Long: "Moves <old> to <new> and its sidecar along with it. If <old> was already " +
		"moved, only the sidecar follows. An existing sidecar at the destination is never replaced.",
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	oldPath, err := absPath(args[0])
	if err != nil {
		return err
	}
	newPath, err := absPath(args[1])
	if err != nil {
		return err
	}

	if err := moveAsset(oldPath, newPath); err != nil {
		return err
	}

	b, err := openBackend(projectRoot())
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.RenameFiles(socket.FileRename{OldPath: oldPath, NewPath: newPath})
	if err != nil {
		return fileOpsError(err)
	}
	fmt.Print(formatOutcomes(res.Outcomes))
	return nil
}

// moveAsset moves oldPath to newPath unless that already happened.
func moveAsset(oldPath, newPath string) error {
	_, oldErr := os.Stat(oldPath)
	_, newErr := os.Stat(newPath)
	switch {
	case oldErr == nil && newErr == nil:
		return fmt.Errorf("%s already exists", newPath)
	case oldErr == nil:
		if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
			return err
		}
		return os.Rename(oldPath, newPath)
	case newErr == nil:
		return nil
	default:
		return fmt.Errorf("neither %s nor %s exists", oldPath, newPath)
	}
}
