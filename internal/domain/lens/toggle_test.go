package lens

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/unitylens/internal/ports"
)

func TestTypeToggleLens(t *testing.T) {
	cat := loadCatalog(t)
	doc := newDoc(t, "Assets/Player.cs", playerSource)

	lenses, err := NewTypeToggleLens(cat).ProvideCodeLenses(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, lenses, 2, "Update is not a coroutine message, Helper has no bases")

	assert.Equal(t, "Change to IEnumerator", lenses[0].Command.Title)
	assert.Equal(t, CommandChangeReturnType, lenses[0].Command.Name)
	assert.Equal(t, []any{"IEnumerator", 4}, lenses[0].Command.Arguments)

	assert.Equal(t, "Change to void", lenses[1].Command.Title)
	assert.Equal(t, []any{"void", 8}, lenses[1].Command.Arguments)

	ko, err := NewTypeToggleLens(cat, WithLocale("ko")).ProvideCodeLenses(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "IEnumerator로 변경", ko[0].Command.Title)
}

func TestTypeToggleLens_SkipsOtherReturnTypes(t *testing.T) {
	cat := loadCatalog(t)
	doc := newDoc(t, "Assets/A.cs", "class A : MonoBehaviour\n{\n    int Start()\n    {\n        return 0;\n    }\n}\n")
	lenses, err := NewTypeToggleLens(cat).ProvideCodeLenses(context.Background(), doc)
	require.NoError(t, err)
	assert.Empty(t, lenses)
}

// toggle runs the command for the lens on line and applies the result.
func toggle(t *testing.T, src, target string, line any) string {
	t.Helper()
	doc := newDoc(t, "Assets/Player.cs", src)
	res, err := NewChangeReturnType().Execute(context.Background(), ports.CommandInvocation{
		Arguments: []any{target, line},
		Doc:       doc,
	})
	require.NoError(t, err)
	edit := res.(ports.WorkspaceEdit)
	assert.Equal(t, "Assets/Player.cs", edit.Path)
	out, err := ApplyEdits([]byte(src), edit.Edits)
	require.NoError(t, err)
	return string(out)
}

func TestChangeReturnType_AddsCollectionsUsing(t *testing.T) {
	got := toggle(t, playerSource, "IEnumerator", 4)
	lines := strings.Split(got, "\n")
	assert.Equal(t, "using UnityEngine;", lines[0])
	assert.Equal(t, "using System.Collections;", lines[1])
	assert.Equal(t, "    IEnumerator Start()", lines[5])
}

func TestChangeReturnType_RoundTrip(t *testing.T) {
	withUsing := strings.Replace(playerSource, "using UnityEngine;\n", "using UnityEngine;\nusing System.Collections;\n", 1)

	// From a file lacking the using, the round trip only adds the using.
	forward := toggle(t, playerSource, "IEnumerator", 4)
	back := toggle(t, forward, "void", float64(5))
	assert.Equal(t, withUsing, back)

	// With the using present, void -> IEnumerator -> void is the identity.
	forward = toggle(t, withUsing, "IEnumerator", "5")
	assert.Contains(t, forward, "    IEnumerator Start()\n")
	assert.Equal(t, withUsing, toggle(t, forward, "void", 5))

	// And IEnumerator -> void -> IEnumerator.
	assert.Equal(t, withUsing, toggle(t, toggle(t, withUsing, "void", 9), "IEnumerator", 9))
}

func TestChangeReturnType_EmptyEdits(t *testing.T) {
	cat := []struct {
		name   string
		target string
		line   int
	}{
		{"no method on line", "IEnumerator", 1},
		{"already void", "void", 4},
		{"already IEnumerator", "IEnumerator", 8},
	}
	for _, tt := range cat {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(t, "Assets/Player.cs", playerSource)
			edit := ReturnTypeEdit(doc, tt.target, tt.line)
			assert.NotNil(t, edit.Edits)
			assert.Empty(t, edit.Edits)
		})
	}

	edit := ReturnTypeEdit(&ports.Document{Path: "x.cs"}, "void", 0)
	assert.Empty(t, edit.Edits)
}

func TestChangeReturnType_BadInvocation(t *testing.T) {
	cmd := NewChangeReturnType()
	doc := newDoc(t, "Assets/Player.cs", playerSource)
	ctx := context.Background()

	_, err := cmd.Execute(ctx, ports.CommandInvocation{Arguments: []any{"int", 4}, Doc: doc})
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = cmd.Execute(ctx, ports.CommandInvocation{Arguments: []any{"void"}, Doc: doc})
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = cmd.Execute(ctx, ports.CommandInvocation{Arguments: []any{"void", 4}})
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestUsingInsertLine(t *testing.T) {
	assert.Equal(t, 0, usingInsertLine([]byte("public class A { }\n")))
	assert.Equal(t, 2, usingInsertLine([]byte("using A;\nglobal using B;\n\nclass C {\n  void M() {\n  }\n}\n")))
	assert.Equal(t, 1, usingInsertLine([]byte("using A;\nnamespace N {\n  using B;\n}\n")))
}

func TestApplyEdits(t *testing.T) {
	text := []byte("abc\ndef\n")
	at := func(l, c int) ports.Position { return ports.Position{Line: l, Character: c} }

	out, err := ApplyEdits(text, []ports.TextEdit{
		{Range: ports.Range{Start: at(1, 0), End: at(1, 3)}, NewText: "XYZ"},
		{Range: ports.Range{Start: at(0, 0), End: at(0, 0)}, NewText: "1"},
		{Range: ports.Range{Start: at(0, 0), End: at(0, 0)}, NewText: "2"},
		{Range: ports.Range{Start: at(2, 0), End: at(2, 0)}, NewText: "end"},
	})
	require.NoError(t, err)
	assert.Equal(t, "12abc\nXYZ\nend", string(out))

	_, err = ApplyEdits(text, []ports.TextEdit{{Range: ports.Range{Start: at(0, 4), End: at(0, 4)}}})
	assert.Error(t, err, "column past end of line")

	_, err = ApplyEdits(text, []ports.TextEdit{{Range: ports.Range{Start: at(3, 0), End: at(3, 0)}}})
	assert.Error(t, err, "line past end")

	_, err = ApplyEdits(text, []ports.TextEdit{
		{Range: ports.Range{Start: at(0, 0), End: at(0, 2)}},
		{Range: ports.Range{Start: at(0, 1), End: at(0, 3)}},
	})
	assert.Error(t, err, "overlap")
}
