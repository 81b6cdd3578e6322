// unitylens is a Unity-aware authoring assistant for C# projects: code
// lenses, message hovers, return type toggles and .meta sidecar sync,
// served to editors over a project socket and to terminals by this CLI.
package main

import (
	"os"

	"github.com/corey/unitylens/cmd/unitylens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
