package ports

import "context"

// Document is the unit every provider works on: a C# file's path, its
// current text (possibly unsaved editor contents) and its parsed structure.
type Document struct {
	Path   string
	Text   []byte
	Source *SourceFile
}

// Command is an action attached to a code lens.
type Command struct {
	Title     string `json:"title"`
	Name      string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// CodeLens is an inline annotation shown above a source construct.
type CodeLens struct {
	Range   Range   `json:"range"`
	Command Command `json:"command"`
}

// Hover is markdown shown when the cursor rests on a range.
type Hover struct {
	Range    Range  `json:"range"`
	Contents string `json:"contents"`
}

// TextEdit replaces Range with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

// WorkspaceEdit is a set of edits against a single file.
type WorkspaceEdit struct {
	Path  string     `json:"path"`
	Edits []TextEdit `json:"edits"`
}

// CodeLensProvider produces lenses for a document. No match is an empty
// slice, never an error.
type CodeLensProvider interface {
	ProvideCodeLenses(ctx context.Context, doc *Document) ([]CodeLens, error)
}

// HoverProvider produces hover content at a position, or nil.
type HoverProvider interface {
	ProvideHover(ctx context.Context, doc *Document, pos Position) (*Hover, error)
}

// CommandInvocation carries the arguments of a host command. Doc and Pos
// are set when the host invoked the command from an editor.
type CommandInvocation struct {
	Arguments []any
	Doc       *Document
	Pos       *Position
}

// CommandHandler executes a named host command.
type CommandHandler interface {
	Execute(ctx context.Context, inv CommandInvocation) (any, error)
}
