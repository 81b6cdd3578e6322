// Package treesitter parses C# sources with the tree-sitter C# grammar and
// produces the class and method outline the lens providers work from.
//
// The grammar is compiled in by default. Lean and core builds load it at
// runtime from a shared library via purego.
package treesitter

import (
	"errors"
	"sort"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/unitylens/internal/ports"
)

// ErrNoGrammar is returned when neither a compiled-in nor a loadable C#
// grammar is available.
var ErrNoGrammar = errors.New("treesitter: C# grammar not available")

// Parser implements ports.SourceParser.
type Parser struct {
	mu      sync.Mutex
	builtin *tree_sitter.Language
	loader  *DynamicLoader
}

// NewParser creates a parser with the compiled-in grammar, if any.
func NewParser() *Parser {
	p := &Parser{}
	p.registerBuiltinLanguages()
	return p
}

// SetGrammarPaths enables dynamic grammar loading from the given
// directories, project-local first.
func (p *Parser) SetGrammarPaths(paths []string) {
	p.mu.Lock()
	p.loader = NewDynamicLoader(paths)
	p.mu.Unlock()
}

// Loader returns the dynamic grammar loader, or nil if not configured.
func (p *Parser) Loader() *DynamicLoader {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loader
}

// Available reports whether a grammar can be obtained without parsing.
func (p *Parser) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.builtin != nil {
		return true
	}
	return p.loader != nil && p.loader.GrammarPath(GrammarName) != ""
}

// SupportsExtension returns true for .cs files.
func (p *Parser) SupportsExtension(ext string) bool {
	return strings.EqualFold(ext, ".cs")
}

func (p *Parser) language() (*tree_sitter.Language, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.builtin != nil {
		return p.builtin, nil
	}
	if p.loader == nil {
		return nil, ErrNoGrammar
	}
	lang, err := p.loader.LoadGrammar(GrammarName)
	if err != nil {
		return nil, errors.Join(ErrNoGrammar, err)
	}
	return lang, nil
}

// Parse builds the outline of a C# file.
func (p *Parser) Parse(path string, source []byte) (*ports.SourceFile, error) {
	file := &ports.SourceFile{Path: path}
	if len(source) == 0 {
		return file, nil
	}

	lang, err := p.language()
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	defer tree.Close()

	w := &walker{src: source, file: file}
	w.walk(tree.RootNode(), 0)
	sort.SliceStable(file.Classes, func(i, j int) bool {
		a, b := file.Classes[i].Range.Start, file.Classes[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
	return file, nil
}

// maxDepth bounds recursion through namespaces and nested types.
const maxDepth = 16

type walker struct {
	src  []byte
	file *ports.SourceFile
}

var typeDecls = map[string]bool{
	"class_declaration":     true,
	"struct_declaration":    true,
	"interface_declaration": true,
	"record_declaration":    true,
}

func (w *walker) walk(n *tree_sitter.Node, depth int) {
	if n == nil || depth > maxDepth {
		return
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch kind := child.Kind(); {
		case kind == "using_directive":
			if depth == 0 || w.insideNamespaceOnly(child) {
				if ns := usingTarget(child, w.src); ns != "" {
					w.file.Usings = append(w.file.Usings, ns)
				}
			}
		case kind == "namespace_declaration", kind == "file_scoped_namespace_declaration":
			if body := child.ChildByFieldName("body"); body != nil {
				w.walk(body, depth+1)
			} else {
				w.walk(child, depth+1)
			}
		case typeDecls[kind]:
			w.class(child, depth)
		case kind == "declaration_list":
			w.walk(child, depth+1)
		}
	}
}

// insideNamespaceOnly reports whether every ancestor of n is a namespace
// or the compilation unit, so usings inside a namespace count too.
func (w *walker) insideNamespaceOnly(n *tree_sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "compilation_unit", "namespace_declaration", "file_scoped_namespace_declaration", "declaration_list":
		default:
			return false
		}
	}
	return true
}

func (w *walker) class(n *tree_sitter.Node, depth int) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	c := ports.Class{
		Name:      text(name, w.src),
		NameRange: nodeRange(name),
		Range:     declRange(n),
	}
	if bl := childByKind(n, "base_list"); bl != nil {
		for i := uint(0); i < bl.NamedChildCount(); i++ {
			b := bl.NamedChild(i)
			if b == nil {
				continue
			}
			if b.Kind() == "primary_constructor_base_type" {
				if t := b.NamedChild(0); t != nil {
					b = t
				}
			}
			c.Bases = append(c.Bases, collapse(text(b, w.src)))
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		body = childByKind(n, "declaration_list")
	}
	idx := len(w.file.Classes)
	w.file.Classes = append(w.file.Classes, c)
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil {
			continue
		}
		switch {
		case member.Kind() == "method_declaration":
			if m, ok := w.method(member); ok {
				w.file.Classes[idx].Methods = append(w.file.Classes[idx].Methods, m)
			}
		case typeDecls[member.Kind()] && depth < maxDepth:
			w.class(member, depth+1)
		}
	}
}

func (w *walker) method(n *tree_sitter.Node) (ports.Method, bool) {
	name := n.ChildByFieldName("name")
	ret := n.ChildByFieldName("returns")
	if ret == nil {
		ret = n.ChildByFieldName("type")
	}
	if name == nil || ret == nil {
		return ports.Method{}, false
	}
	m := ports.Method{
		Name:            text(name, w.src),
		ReturnType:      collapse(text(ret, w.src)),
		ReturnTypeRange: nodeRange(ret),
		NameRange:       nodeRange(name),
		Range:           declRange(n),
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Parameters = collapse(text(params, w.src))
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "modifier" {
			m.Modifiers = append(m.Modifiers, text(c, w.src))
		}
	}
	return m, true
}

// usingTarget returns the imported namespace of a plain or static using.
// Aliases (using X = Y;) are skipped.
func usingTarget(n *tree_sitter.Node, src []byte) string {
	if n.ChildByFieldName("name") != nil {
		return ""
	}
	var last *tree_sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil {
			last = c
		}
	}
	if last == nil {
		return ""
	}
	return collapse(text(last, src))
}

// declRange spans a declaration without its leading attribute lists.
func declRange(n *tree_sitter.Node) ports.Range {
	r := nodeRange(n)
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.Kind() == "attribute_list" {
			continue
		}
		r.Start = point(c.StartPosition())
		break
	}
	return r
}

func nodeRange(n *tree_sitter.Node) ports.Range {
	return ports.Range{Start: point(n.StartPosition()), End: point(n.EndPosition())}
}

func point(p tree_sitter.Point) ports.Position {
	return ports.Position{Line: int(p.Row), Character: int(p.Column)}
}

func text(n *tree_sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func childByKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}
