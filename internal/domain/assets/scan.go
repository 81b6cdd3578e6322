package assets

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/ports"
)

// Unity class IDs that matter to the scanner.
const (
	classGameObject    = "1"
	classMonoBehaviour = "114"
)

var (
	docHeader = regexp.MustCompile(`^--- !u!(\d+) &(-?\d+)`)
	scriptRef = regexp.MustCompile(`m_Script:\s*\{\s*fileID:\s*` + unity.ScriptFileID + `\s*,\s*guid:\s*([0-9a-fA-F]{32})`)
	fileIDRef = regexp.MustCompile(`\{\s*fileID:\s*(-?\d+)`)
)

// maxLineLen bounds the lines the scanner inspects. Longer lines are inline
// binary data (_typelessdata, m_IndexBuffer) and are skipped.
const maxLineLen = 1 << 20

// Markers are the keys a file must contain for ScanAsset to find
// anything: a script reference or a persistent call.
var Markers = []string{"m_Script:", "m_MethodName:"}

// document is one "--- !u!<class> &<id>" block.
type document struct {
	class      string
	id         string
	name       string // GameObject m_Name
	gameObject string // owning GameObject fileID for components
	scriptGUID string
	calls      []rawCall
}

type rawCall struct {
	target   string
	typeName string
	method   string
	event    string
}

type keyEntry struct {
	indent int
	key    string
}

// ScanAsset reads a text-serialized scene, prefab or asset and returns the
// script GUIDs it references (sorted, unique) and its UnityEvent
// persistent calls. Unity's YAML uses custom tags and "stripped" documents,
// so the content is read line by line rather than decoded.
func ScanAsset(content []byte) (guids []string, calls []ports.EventCall) {
	var (
		docs    []*document
		cur     *document
		keys    []keyEntry
		event   string
		pending *rawCall
	)
	flush := func() {
		if cur != nil && pending != nil && pending.method != "" {
			cur.calls = append(cur.calls, *pending)
		}
		pending = nil
	}

	for rest := content; len(rest) > 0; {
		raw := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			raw, rest = rest[:i], rest[i+1:]
		} else {
			rest = nil
		}
		if len(raw) > maxLineLen {
			continue
		}
		line := string(bytes.TrimSuffix(raw, []byte("\r")))
		if m := docHeader.FindStringSubmatch(line); m != nil {
			flush()
			cur = &document{class: m[1], id: m[2]}
			docs = append(docs, cur)
			keys = keys[:0]
			event = ""
			continue
		}
		if cur == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		item := strings.HasPrefix(trimmed, "- ")
		if item {
			trimmed = strings.TrimSpace(trimmed[2:])
		}

		key, value, hasColon := strings.Cut(trimmed, ":")
		if !hasColon {
			continue
		}
		value = strings.TrimSpace(value)

		for len(keys) > 0 && keys[len(keys)-1].indent >= indent {
			keys = keys[:len(keys)-1]
		}

		switch key {
		case "m_Name":
			if cur.class == classGameObject {
				cur.name = value
			}
		case "m_GameObject":
			if m := fileIDRef.FindStringSubmatch(value); m != nil {
				cur.gameObject = m[1]
			}
		case "m_Script":
			if m := scriptRef.FindStringSubmatch(trimmed); m != nil {
				cur.scriptGUID = strings.ToLower(m[1])
			}
		case "m_PersistentCalls":
			flush()
			event = ""
			if len(keys) > 0 {
				event = keys[len(keys)-1].key
			}
		case "m_Target":
			if item {
				flush()
				pending = &rawCall{event: event}
				if m := fileIDRef.FindStringSubmatch(value); m != nil {
					pending.target = m[1]
				}
			}
		case "m_TargetAssemblyTypeName":
			if pending != nil {
				pending.typeName = value
			}
		case "m_MethodName":
			if pending != nil {
				pending.method = value
			}
		}

		if value == "" && !item {
			keys = append(keys, keyEntry{indent: indent, key: key})
		}
	}
	flush()

	byID := make(map[string]*document, len(docs))
	seen := make(map[string]bool)
	for _, d := range docs {
		byID[d.id] = d
		if d.scriptGUID != "" && !seen[d.scriptGUID] {
			seen[d.scriptGUID] = true
			guids = append(guids, d.scriptGUID)
		}
	}
	sort.Strings(guids)

	for _, d := range docs {
		owner := ""
		if g := byID[d.gameObject]; g != nil {
			owner = g.name
		}
		for _, rc := range d.calls {
			call := ports.EventCall{
				Method:     rc.method,
				TargetType: typeNameOnly(rc.typeName),
				GameObject: owner,
				Event:      rc.event,
			}
			if t := byID[rc.target]; t != nil && t.class == classMonoBehaviour {
				call.TargetGUID = t.scriptGUID
			}
			calls = append(calls, call)
		}
	}
	return guids, calls
}

// typeNameOnly strips the assembly qualifier from
// "Namespace.Type, Assembly-CSharp".
func typeNameOnly(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// MatchesType reports whether a serialized type name refers to the class
// name, qualified or not.
func MatchesType(serialized, class string) bool {
	if serialized == "" || class == "" {
		return false
	}
	if serialized == class {
		return true
	}
	return strings.HasSuffix(serialized, "."+class)
}
