package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/adapters/web"
	"github.com/corey/unitylens/internal/app"
	"github.com/corey/unitylens/internal/domain/metasync"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the project root, state paths, socket, daemon status and the effective feature flags. No daemon required.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg, err := loadSettings(root)
	if err != nil {
		return err
	}
	paths := app.NewPaths(root)
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	running := client.Ping()
	daemonStatus := yellow("✗ not running")
	if running {
		daemonStatus = green("✓ running")
	}
	unityStatus := green("✓")
	if err := metasync.CheckLayout(root); err != nil {
		unityStatus = yellow("✗ " + err.Error())
	}

	fmt.Println(bold("unitylens config"))
	fmt.Printf("  Root:       %s\n", root)
	fmt.Printf("  Unity:      %s\n", unityStatus)
	fmt.Printf("  Config:     %s\n", paths.Config)
	fmt.Printf("  DB:         %s\n", paths.DB)
	fmt.Printf("  Socket:     %s\n", sockPath)
	fmt.Printf("  Daemon:     %s\n", daemonStatus)
	if running {
		if port, err := web.ReadPort(paths.PortFile); err == nil {
			fmt.Printf("  Metrics:    http://localhost:%d/metrics\n", port)
		}
	}
	fmt.Printf("  Locale:     %s\n", cfg.ResolvedLocale())
	fmt.Printf("  Docs:       %s\n", cfg.DocsBaseURL)
	fmt.Print(formatFeatures(cfg.Features.FeatureNames()))
	return nil
}
