package ports

// SourceParser extracts class and method structure from C# source files.
// Two implementations exist: tree-sitter (internal/adapters/treesitter, cgo
// builds) and a line scanner (internal/domain/csharp) used when CGo is off.
type SourceParser interface {
	// Parse returns the classes declared in source. Returns an empty
	// SourceFile (not an error) when nothing recognizable is found.
	Parse(path string, source []byte) (*SourceFile, error)

	// SupportsExtension reports whether files with ext (leading dot) can be
	// parsed.
	SupportsExtension(ext string) bool
}

// Position is a zero-based line/column pair. Columns are byte offsets
// within the line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos falls inside r (end exclusive).
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// SourceFile is the parsed structure of one C# file.
type SourceFile struct {
	Path    string   `json:"path"`
	Usings  []string `json:"usings,omitempty"`
	Classes []Class  `json:"classes"`
}

// Class is a class or struct declaration.
type Class struct {
	Name      string   `json:"name"`
	Bases     []string `json:"bases,omitempty"`
	Range     Range    `json:"range"`
	NameRange Range    `json:"name_range"`
	Methods   []Method `json:"methods,omitempty"`
}

// HasBase reports whether the class declares any base type or interface.
func (c *Class) HasBase() bool {
	return len(c.Bases) > 0
}

// Method is a method declaration inside a class.
type Method struct {
	Name            string   `json:"name"`
	ReturnType      string   `json:"return_type"`
	ReturnTypeRange Range    `json:"return_type_range"`
	NameRange       Range    `json:"name_range"`
	Range           Range    `json:"range"`
	Parameters      string   `json:"parameters"`
	Modifiers       []string `json:"modifiers,omitempty"`
}

// MethodAtLine returns the class and method whose declaration starts on
// line. Attributes above a method do not count as its start.
func (f *SourceFile) MethodAtLine(line int) (*Class, *Method) {
	for ci := range f.Classes {
		c := &f.Classes[ci]
		for mi := range c.Methods {
			m := &c.Methods[mi]
			if m.NameRange.Start.Line == line || m.ReturnTypeRange.Start.Line == line {
				return c, m
			}
		}
	}
	return nil, nil
}

// MethodNameAt returns the method whose name token contains pos.
func (f *SourceFile) MethodNameAt(pos Position) (*Class, *Method) {
	for ci := range f.Classes {
		c := &f.Classes[ci]
		for mi := range c.Methods {
			m := &c.Methods[mi]
			if m.NameRange.Contains(pos) {
				return c, m
			}
		}
	}
	return nil, nil
}

// HasUsing reports whether the file imports namespace ns.
func (f *SourceFile) HasUsing(ns string) bool {
	for _, u := range f.Usings {
		if u == ns {
			return true
		}
	}
	return false
}
