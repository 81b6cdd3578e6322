package cmd

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/domain/lens"
)

var docsOpenFlag bool

var docsCmd = &cobra.Command{
	Use:   "docs <query>",
	Short: "Search the Unity scripting reference",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDocs,
}

func init() {
	docsCmd.Flags().BoolVarP(&docsOpenFlag, "open", "o", false, "Open the result in a browser")
}

func runDocs(cmd *cobra.Command, args []string) error {
	b, err := openBackend(projectRoot())
	if err != nil {
		return err
	}
	defer b.Close()

	raw, err := b.Execute(socket.ExecuteCommandParams{
		Command:   lens.CommandSearchDocs,
		Arguments: []any{strings.Join(args, " ")},
	})
	if err != nil {
		return err
	}
	var link lens.Link
	if err := json.Unmarshal(raw, &link); err != nil {
		return fmt.Errorf("decode link: %w", err)
	}

	if !docsOpenFlag {
		fmt.Println(link.URL)
		return nil
	}
	if err := openBrowser(link.URL); err != nil {
		fmt.Println(link.URL)
		fmt.Printf("  (could not open browser: %v)\n", err)
		return nil
	}
	fmt.Printf("%s opening %s\n", green("●"), link.URL)
	return nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}
