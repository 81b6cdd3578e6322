package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/unitylens/internal/adapters/socket"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status and recent notifications",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		fmt.Println(gray("●") + " unitylens daemon is not running")
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}
	features, err := client.Features()
	if err != nil {
		return err
	}
	fmt.Print(formatHealth(health, features))

	notes, err := client.Notifications(time.Time{})
	if err != nil {
		return err
	}
	if len(notes) > 0 {
		fmt.Println("  Notifications:")
		for _, n := range notes {
			fmt.Print("    " + formatNotification(n))
		}
	}
	return nil
}
