// Package csharp is a lightweight C# structure scanner. It finds class and
// method boundaries, return types and name positions without a full
// grammar: comments and literals are masked, then brace-delimited headers
// are classified with a few patterns. It backs builds without CGo, where the
// tree-sitter parser is unavailable.
package csharp

import (
	"regexp"
	"sort"
	"strings"

	"github.com/corey/unitylens/internal/ports"
)

var (
	attrPrefix = regexp.MustCompile(`^\s*(?:\[[^\]]*\]\s*)*`)

	classHeader = regexp.MustCompile(`(?:^|\s)(class|struct|interface|record)\s+([A-Za-z_]\w*)\s*(?:<[^>]*>)?\s*(?::\s*([^{]*?))?\s*(?:\bwhere\b[^{]*)?$`)

	namespaceHeader = regexp.MustCompile(`^\s*namespace\s+[\w.]+\s*$`)

	methodHeader = regexp.MustCompile(`^((?:[a-z]+\s+)*)([A-Za-z_][\w.]*(?:\s*<[^()]*?>)?(?:\s*\[[\s,]*\])*\??)\s+([A-Za-z_]\w*)\s*(?:<[^()]*?>)?\s*\(([^)]*)\)\s*(?:\bwhere\b[^{]*)?$`)

	usingDirective = regexp.MustCompile(`^\s*(?:global\s+)?using\s+(?:static\s+)?([\w.]+)\s*$`)
)

var modifierWords = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true,
	"static": true, "virtual": true, "override": true, "abstract": true,
	"sealed": true, "async": true, "new": true, "extern": true,
	"unsafe": true, "partial": true, "readonly": true,
}

// notTypes can never be a return type; they show up when a statement or
// expression happens to look like a declaration.
var notTypes = map[string]bool{
	"return": true, "new": true, "else": true, "await": true, "throw": true,
	"case": true, "in": true, "is": true, "as": true, "yield": true,
	"using": true, "goto": true, "var": true,
}

var notNames = map[string]bool{
	"if": true, "for": true, "foreach": true, "while": true, "switch": true,
	"catch": true, "using": true, "lock": true, "fixed": true, "return": true,
	"nameof": true, "typeof": true, "sizeof": true, "when": true, "operator": true,
}

// Parser implements ports.SourceParser for C#.
type Parser struct{}

// NewParser returns a C# scanner.
func NewParser() *Parser {
	return &Parser{}
}

// SupportsExtension reports true for .cs files.
func (p *Parser) SupportsExtension(ext string) bool {
	return strings.EqualFold(ext, ".cs")
}

type scopeKind int

const (
	scopeBlock scopeKind = iota
	scopeNamespace
	scopeClass
	scopeMethod
)

type scope struct {
	kind   scopeKind
	class  *ports.Class
	method int // index into class.Methods for scopeMethod
}

// Parse scans source and returns its classes in declaration order.
func (p *Parser) Parse(path string, source []byte) (*ports.SourceFile, error) {
	file := &ports.SourceFile{Path: path}
	if len(source) == 0 {
		return file, nil
	}

	m := mask(source)
	lines := newLineIndex(source)

	var (
		classes  []*ports.Class
		stack    []scope
		segStart int
	)

	// enclosingClass returns the class the current top-of-stack belongs
	// to directly (not through a method body), or nil.
	enclosingClass := func() *ports.Class {
		if len(stack) == 0 {
			return nil
		}
		top := stack[len(stack)-1]
		if top.kind == scopeClass {
			return top.class
		}
		return nil
	}
	atFileLevel := func() bool {
		for _, s := range stack {
			if s.kind != scopeNamespace {
				return false
			}
		}
		return true
	}

	for i := 0; i < len(m); i++ {
		switch m[i] {
		case '{':
			header := string(m[segStart:i])
			body := headerBody(header)
			hdrOff := segStart + (len(header) - len(body))

			if atFileLevel() && namespaceHeader.MatchString(body) {
				stack = append(stack, scope{kind: scopeNamespace})
			} else if c := matchClass(body, hdrOff, lines, source); c != nil && (atFileLevel() || enclosingClass() != nil) {
				classes = append(classes, c)
				stack = append(stack, scope{kind: scopeClass, class: c})
			} else if owner := enclosingClass(); owner != nil {
				if meth, ok := matchMethod(body, hdrOff, lines, source); ok {
					owner.Methods = append(owner.Methods, meth)
					stack = append(stack, scope{kind: scopeMethod, class: owner, method: len(owner.Methods) - 1})
				} else {
					stack = append(stack, scope{kind: scopeBlock})
				}
			} else {
				stack = append(stack, scope{kind: scopeBlock})
			}
			segStart = i + 1

		case '}':
			if n := len(stack); n > 0 {
				top := stack[n-1]
				stack = stack[:n-1]
				end := lines.pos(i + 1)
				switch top.kind {
				case scopeClass:
					top.class.Range.End = end
				case scopeMethod:
					top.class.Methods[top.method].Range.End = end
				}
			}
			segStart = i + 1

		case ';':
			stmt := string(m[segStart:i])
			body := headerBody(stmt)
			hdrOff := segStart + (len(stmt) - len(body))

			if owner := enclosingClass(); owner != nil {
				decl := body
				if k := strings.Index(decl, "=>"); k >= 0 {
					decl = decl[:k]
				}
				if meth, ok := matchMethod(strings.TrimRight(decl, " \t\r\n"), hdrOff, lines, source); ok {
					meth.Range.End = lines.pos(i + 1)
					owner.Methods = append(owner.Methods, meth)
				}
			} else if atFileLevel() {
				if u := usingDirective.FindStringSubmatch(body); u != nil {
					file.Usings = append(file.Usings, u[1])
				}
			}
			segStart = i + 1
		}
	}

	// Unbalanced braces: close whatever is still open at EOF.
	eof := lines.pos(len(source))
	for _, s := range stack {
		switch s.kind {
		case scopeClass:
			s.class.Range.End = eof
		case scopeMethod:
			s.class.Methods[s.method].Range.End = eof
		}
	}

	sort.SliceStable(classes, func(i, j int) bool {
		return before(classes[i].Range.Start, classes[j].Range.Start)
	})
	file.Classes = make([]ports.Class, len(classes))
	for i, c := range classes {
		file.Classes[i] = *c
	}
	return file, nil
}

// headerBody strips leading attribute lists and whitespace.
func headerBody(header string) string {
	loc := attrPrefix.FindStringIndex(header)
	if loc == nil {
		return header
	}
	return header[loc[1]:]
}

func matchClass(body string, off int, lines *lineIndex, src []byte) *ports.Class {
	trimmed := strings.TrimRight(body, " \t\r\n")
	idx := classHeader.FindStringSubmatchIndex(trimmed)
	if idx == nil {
		return nil
	}
	// Reject headers where the keyword isn't part of the declaration
	// prefix (e.g. "new class" expressions never reach here, but
	// "where T : class" constraints do).
	prefix := strings.Fields(trimmed[:idx[2]])
	for _, w := range prefix {
		if !modifierWords[w] {
			return nil
		}
	}

	nameStart, nameEnd := off+idx[4], off+idx[5]
	c := &ports.Class{
		Name:      string(src[nameStart:nameEnd]),
		NameRange: ports.Range{Start: lines.pos(nameStart), End: lines.pos(nameEnd)},
		Range:     ports.Range{Start: lines.pos(off + firstNonSpace(body))},
	}
	if idx[6] >= 0 {
		c.Bases = splitBases(trimmed[idx[6]:idx[7]])
	}
	return c
}

func matchMethod(body string, off int, lines *lineIndex, src []byte) (ports.Method, bool) {
	trimmed := strings.TrimRight(body, " \t\r\n")
	idx := methodHeader.FindStringSubmatchIndex(trimmed)
	if idx == nil {
		return ports.Method{}, false
	}
	mods := strings.Fields(trimmed[idx[2]:idx[3]])
	for _, w := range mods {
		if !modifierWords[w] {
			return ports.Method{}, false
		}
	}
	retType := trimmed[idx[4]:idx[5]]
	name := trimmed[idx[6]:idx[7]]
	if modifierWords[retType] || notTypes[retType] || notNames[name] {
		return ports.Method{}, false
	}

	rtStart, rtEnd := off+idx[4], off+idx[5]
	nStart, nEnd := off+idx[6], off+idx[7]
	pStart, pEnd := off+idx[8], off+idx[9]
	return ports.Method{
		Name:            name,
		ReturnType:      collapseSpace(string(src[rtStart:rtEnd])),
		ReturnTypeRange: ports.Range{Start: lines.pos(rtStart), End: lines.pos(rtEnd)},
		NameRange:       ports.Range{Start: lines.pos(nStart), End: lines.pos(nEnd)},
		Range:           ports.Range{Start: lines.pos(off + firstNonSpace(body))},
		Parameters:      "(" + collapseSpace(string(src[pStart:pEnd])) + ")",
		Modifiers:       mods,
	}, true
}

// splitBases splits a base list on top-level commas.
func splitBases(list string) []string {
	var (
		bases []string
		depth int
		start int
	)
	for i, r := range list {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				if b := strings.TrimSpace(list[start:i]); b != "" {
					bases = append(bases, collapseSpace(b))
				}
				start = i + 1
			}
		}
	}
	if b := strings.TrimSpace(list[start:]); b != "" {
		bases = append(bases, collapseSpace(b))
	}
	return bases
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonSpace(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return i
		}
	}
	return 0
}

func before(a, b ports.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// lineIndex converts byte offsets to line/column positions.
type lineIndex struct {
	starts []int
}

func newLineIndex(src []byte) *lineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (l *lineIndex) pos(off int) ports.Position {
	line := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	return ports.Position{Line: line, Character: off - l.starts[line]}
}
