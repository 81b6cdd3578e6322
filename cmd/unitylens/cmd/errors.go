package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corey/unitylens/internal/adapters/socket"
)

// errFileOpsInactive replaces the protocol's "unknown method" answer for
// sidecar requests with something a user can act on.
var errFileOpsInactive = errors.New("meta file sync is not active\n" +
	"  → the project needs Assets, Library and ProjectSettings directories\n" +
	"  → and metaFileSync must be enabled in .unitylens/config.yaml")

// fileOpsError maps an unavailable sidecar request, local or remote, to
// errFileOpsInactive.
func fileOpsError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, socket.ErrUnavailable) || strings.Contains(err.Error(), "unknown method") {
		return errFileOpsInactive
	}
	return err
}

// diagnoseStart explains a failed daemon start. It distinguishes a live
// daemon from a socket file nobody answers on.
func diagnoseStart(root string, err error) error {
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return fmt.Errorf("%w\n"+
			"  → stop it first:  unitylens daemon stop", err)
	}

	if _, statErr := os.Stat(sockPath); statErr == nil {
		return fmt.Errorf("%w\n"+
			"  → daemon socket exists but is not responding\n"+
			"  → find the process:  ps aux | grep 'unitylens daemon'\n"+
			"  → clean up socket:   rm %s", err, sockPath)
	}
	return err
}
