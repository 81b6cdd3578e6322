// Package socket implements a JSON-over-Unix-socket protocol between the
// unitylens daemon and its hosts (editor integrations and the CLI).
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/unitylens/internal/ports"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/unitylens-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/unitylens-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodHealth         = "health"
	MethodShutdown       = "shutdown"
	MethodFeatures       = "features"
	MethodCodeLens       = "codeLens"
	MethodHover          = "hover"
	MethodExecuteCommand = "executeCommand"
	MethodDidRenameFiles = "didRenameFiles"
	MethodDidDeleteFiles = "didDeleteFiles"
	MethodNotifications  = "notifications"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status        string `json:"status"`
	ProjectRoot   string `json:"project_root"`
	MetaSync      bool   `json:"meta_sync"` // watcher installed
	TrackedAssets int    `json:"tracked_assets"`
	Parser        string `json:"parser"`
	Uptime        string `json:"uptime"`
}

// FeaturesResult is the result of a features request: every flag with its
// value, plus the commands currently registered.
type FeaturesResult struct {
	Features map[string]bool `json:"features"`
	Commands []string        `json:"commands"`
}

// DocumentParams identifies a C# document. Text, when set, is the unsaved
// editor buffer; otherwise the file is read from disk.
type DocumentParams struct {
	Path string  `json:"path"`
	Text *string `json:"text,omitempty"`
}

// CodeLensResult is the result of a codeLens request.
type CodeLensResult struct {
	Lenses []ports.CodeLens `json:"lenses"`
}

// HoverParams is the params for a hover request.
type HoverParams struct {
	DocumentParams
	Line      int `json:"line"`
	Character int `json:"character"`
}

// HoverResult is the result of a hover request. Hover is nil when nothing
// matches.
type HoverResult struct {
	Hover *ports.Hover `json:"hover,omitempty"`
}

// ExecuteCommandParams is the params for an executeCommand request. Path
// and position are optional editor context.
type ExecuteCommandParams struct {
	Command   string  `json:"command"`
	Arguments []any   `json:"arguments,omitempty"`
	Path      string  `json:"path,omitempty"`
	Text      *string `json:"text,omitempty"`
	Line      *int    `json:"line,omitempty"`
	Character *int    `json:"character,omitempty"`
}

// FileRename is one renamed path.
type FileRename struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// RenameFilesParams is the params for a didRenameFiles request.
type RenameFilesParams struct {
	Files []FileRename `json:"files"`
}

// DeleteFilesParams is the params for a didDeleteFiles request.
type DeleteFilesParams struct {
	Files []string `json:"files"`
}

// SidecarOutcome is one sidecar operation on the wire.
type SidecarOutcome struct {
	Action string `json:"action"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Error  string `json:"error,omitempty"`
}

// FileOpsResult is the result of didRenameFiles and didDeleteFiles.
type FileOpsResult struct {
	Outcomes []SidecarOutcome `json:"outcomes"`
}

// NotificationsParams is the params for a notifications request. Only
// notifications newer than Since (unix nanoseconds) are returned.
type NotificationsParams struct {
	Since int64 `json:"since,omitempty"`
}

// NotificationsResult is the result of a notifications request.
type NotificationsResult struct {
	Notifications []ports.Notification `json:"notifications"`
}
