package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/app"
	"github.com/corey/unitylens/internal/logging"
)

var daemonStderrFlag bool

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the unitylens daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the foreground",
	Long: "Serves code lenses, hovers, commands and sidecar sync on the project socket " +
		"until interrupted or asked to shut down. Logs go to .unitylens/log/daemon.log.",
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonStderrFlag, "stderr", false, "Log to stderr instead of the log file")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println(yellow("●") + " daemon already running")
		return nil
	}

	cfg, err := loadSettings(root)
	if err != nil {
		return err
	}
	paths := app.NewPaths(root)
	if daemonStderrFlag {
		cfg.Log.File = ""
	} else if cfg.Log.File == "" {
		cfg.Log.File = paths.DaemonLog
	}
	if verboseFlag {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	a, err := app.New(app.Config{
		ProjectRoot: root,
		Settings:    cfg,
		Logger:      logger,
		Parser:      newParser(root),
	})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(context.Background()); err != nil {
		a.Stop()
		return diagnoseStart(root, err)
	}

	fmt.Printf("%s unitylens daemon started at %s\n", green("●"), sockPath)
	if a.WebServer.Port() != 0 {
		fmt.Printf("  metrics: %s/metrics\n", a.WebServer.URL())
	}
	if !a.MetaSync.Active() {
		fmt.Println(gray("  meta sync inactive (not a Unity project or disabled)"))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n" + gray("shutting down..."))
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		fmt.Println(gray("●") + " daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println(green("●") + " daemon stopped")
	return nil
}
