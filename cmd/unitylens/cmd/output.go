package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/domain/lens"
	"github.com/corey/unitylens/internal/domain/metasync"
	"github.com/corey/unitylens/internal/ports"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()

	errorMark = color.New(color.FgRed, color.Bold).Sprint("error:")
)

// formatLenses renders lenses one per line with one-based line numbers.
//
//	Assets/Player.cs
//	   5  Unity Message            unitylens.openMessageDocs
//	   5  Change to IEnumerator    unitylens.changeReturnType
func formatLenses(path string, lenses []ports.CodeLens) string {
	var sb strings.Builder
	sb.WriteString(bold(path) + "\n")
	if len(lenses) == 0 {
		sb.WriteString(gray("  no lenses") + "\n")
		return sb.String()
	}
	width := 0
	for _, l := range lenses {
		if n := len([]rune(l.Command.Title)); n > width {
			width = n
		}
	}
	for _, l := range lenses {
		title := l.Command.Title
		pad := strings.Repeat(" ", width-len([]rune(title)))
		sb.WriteString(fmt.Sprintf("  %s  %s%s  %s\n",
			cyan(fmt.Sprintf("%4d", l.Range.Start.Line+1)), title, pad, gray(l.Command.Name)))
		if !listsAssets(l.Command.Name) {
			continue
		}
		for _, arg := range l.Command.Arguments {
			sb.WriteString(fmt.Sprintf("        %s %v\n", gray("·"), arg))
		}
	}
	return sb.String()
}

// listsAssets reports whether a lens command's arguments are asset entries.
func listsAssets(command string) bool {
	return command == lens.CommandShowAssetUsages || command == lens.CommandShowEventReferences
}

// formatHover renders hover markdown as-is under a location header.
func formatHover(path string, h *ports.Hover) string {
	if h == nil {
		return gray("no Unity message here") + "\n"
	}
	header := fmt.Sprintf("%s:%d:%d", path, h.Range.Start.Line+1, h.Range.Start.Character+1)
	return bold(header) + "\n" + h.Contents + "\n"
}

// formatEdit describes a workspace edit without applying it.
func formatEdit(edit ports.WorkspaceEdit) string {
	if len(edit.Edits) == 0 {
		return gray("nothing to change") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(bold(edit.Path) + "\n")
	for _, e := range edit.Edits {
		text := strings.TrimRight(e.NewText, "\n")
		verb := "replace"
		if e.Range.Start == e.Range.End {
			verb = "insert"
		}
		sb.WriteString(fmt.Sprintf("  %s  %s %s\n",
			cyan(fmt.Sprintf("%4d:%d", e.Range.Start.Line+1, e.Range.Start.Character+1)),
			verb, green(fmt.Sprintf("%q", text))))
	}
	return sb.String()
}

// formatOutcomes renders sidecar outcomes, colored by action.
func formatOutcomes(outcomes []socket.SidecarOutcome) string {
	if len(outcomes) == 0 {
		return gray("no sidecars touched") + "\n"
	}
	var sb strings.Builder
	for _, o := range outcomes {
		sb.WriteString("  " + actionLabel(o.Action) + " " + o.From)
		if o.To != "" {
			sb.WriteString(" → " + o.To)
		}
		if o.Error != "" {
			sb.WriteString("  " + red(o.Error))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func actionLabel(action string) string {
	label := fmt.Sprintf("%-9s", action)
	switch metasync.Action(action) {
	case metasync.ActionRenamed, metasync.ActionDeleted:
		return green(label)
	case metasync.ActionCollision:
		return yellow(label)
	case metasync.ActionFailed:
		return red(label)
	default:
		return gray(label)
	}
}

// formatReport renders a sidecar audit.
func formatReport(r metasync.Report) string {
	var sb strings.Builder
	if r.Clean() {
		sb.WriteString(green("✓") + " every asset has its sidecar\n")
		return sb.String()
	}
	if len(r.Orphaned) > 0 {
		sb.WriteString(fmt.Sprintf("%s %d orphaned sidecar(s)\n", yellow("!"), len(r.Orphaned)))
		for _, p := range r.Orphaned {
			sb.WriteString("  " + p + "\n")
		}
	}
	if len(r.Missing) > 0 {
		sb.WriteString(fmt.Sprintf("%s %d asset(s) without a sidecar\n", yellow("!"), len(r.Missing)))
		for _, p := range r.Missing {
			sb.WriteString("  " + p + "\n")
		}
	}
	return sb.String()
}

// formatHealth renders the daemon health block.
func formatHealth(h *socket.HealthResult, f *socket.FeaturesResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", green("●"), bold("unitylens daemon")))
	sb.WriteString(fmt.Sprintf("  Project:    %s\n", h.ProjectRoot))
	sb.WriteString(fmt.Sprintf("  Uptime:     %s\n", h.Uptime))
	sb.WriteString(fmt.Sprintf("  Parser:     %s\n", h.Parser))
	sb.WriteString(fmt.Sprintf("  Meta sync:  %s\n", onOff(h.MetaSync)))
	sb.WriteString(fmt.Sprintf("  Assets:     %d scanned\n", h.TrackedAssets))
	if f != nil {
		sb.WriteString(formatFeatures(f.Features))
	}
	return sb.String()
}

// formatFeatures lists feature flags in name order.
func formatFeatures(features map[string]bool) string {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("  Features:\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("    %-18s %s\n", name, onOff(features[name])))
	}
	return sb.String()
}

// formatNotification renders one host notification.
func formatNotification(n ports.Notification) string {
	level := n.Level
	switch level {
	case ports.LevelWarning:
		level = yellow(level)
	case ports.LevelError:
		level = red(level)
	default:
		level = cyan(level)
	}
	return fmt.Sprintf("%s %s %s\n", gray(n.Time.Format(time.TimeOnly)), level, n.Message)
}

func onOff(b bool) string {
	if b {
		return green("on")
	}
	return gray("off")
}
