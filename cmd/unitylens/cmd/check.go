package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/app"
	"github.com/corey/unitylens/internal/domain/metasync"
)

var checkFixFlag bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report orphaned and missing .meta sidecars",
	Long: "Walks Assets/ and lists sidecars whose asset is gone and assets without a sidecar. " +
		"--fix deletes the orphans; missing sidecars are left for Unity to generate.",
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFixFlag, "fix", false, "Delete orphaned sidecars")
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	if err := metasync.CheckLayout(root); err != nil {
		return err
	}
	logger, err := newCLILogger()
	if err != nil {
		return err
	}
	syncer := metasync.NewSyncer(filepath.Join(root, "Assets"), metasync.WithLogger(logger))

	report, err := syncer.Audit()
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	fmt.Print(formatReport(report))

	if !checkFixFlag || len(report.Orphaned) == 0 {
		return nil
	}
	fmt.Println(bold("pruning orphans"))
	fmt.Print(formatOutcomes(app.WireOutcomes(syncer.Prune(report)...)))
	return nil
}
