package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/app"
	"github.com/corey/unitylens/internal/config"
	"github.com/corey/unitylens/internal/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Keep .meta sidecars in step with file moves (foreground)",
	Long: "Watches Assets/ and moves or deletes sidecars as their assets move or disappear. " +
		"Use this when no daemon is running; the daemon does the same.",
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	if socket.NewClient(socket.SocketPath(root)).Ping() {
		return fmt.Errorf("the daemon is already syncing this project")
	}

	cfg, err := loadSettings(root)
	if err != nil {
		return err
	}
	level := "info"
	if verboseFlag {
		level = "debug"
	}
	logger, err := logging.New(config.LogConfig{Level: level})
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.New(app.Config{ProjectRoot: root, Settings: cfg, Logger: logger, Parser: newParser(root)})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Stop()

	if err := a.Activate(context.Background()); err != nil {
		return err
	}
	if !a.MetaSync.Active() {
		return errFileOpsInactive
	}
	fmt.Printf("%s watching %s/Assets (ctrl-c to stop)\n", green("●"), root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var since time.Time
	for {
		select {
		case <-sigCh:
			fmt.Println()
			return nil
		case <-ticker.C:
			for _, n := range a.Notifications(since) {
				fmt.Print(formatNotification(n))
				since = n.Time
			}
		}
	}
}
