package lens

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/corey/unitylens/internal/ports"
)

// ApplyEdits applies edits expressed against the original text. Edits at
// the same position are inserted in the order given.
func ApplyEdits(text []byte, edits []ports.TextEdit) ([]byte, error) {
	starts := lineStarts(text)
	type span struct {
		i          int
		start, end int
	}
	spans := make([]span, len(edits))
	for i, e := range edits {
		s, err := offset(text, starts, e.Range.Start)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		end, err := offset(text, starts, e.Range.End)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		if end < s {
			return nil, fmt.Errorf("edit %d: end before start", i)
		}
		spans[i] = span{i: i, start: s, end: end}
	}
	sort.SliceStable(spans, func(a, b int) bool {
		if spans[a].start != spans[b].start {
			return spans[a].start > spans[b].start
		}
		return spans[a].i > spans[b].i
	})

	out := append([]byte(nil), text...)
	prev := len(text) + 1
	for _, sp := range spans {
		if sp.end > prev {
			return nil, fmt.Errorf("edit %d overlaps another edit", sp.i)
		}
		var b bytes.Buffer
		b.Write(out[:sp.start])
		b.WriteString(edits[sp.i].NewText)
		b.Write(out[sp.end:])
		out = b.Bytes()
		prev = sp.start
	}
	return out, nil
}

func lineStarts(text []byte) []int {
	starts := []int{0}
	for i, c := range text {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offset converts a line/byte-column position to a byte offset.
func offset(text []byte, starts []int, p ports.Position) (int, error) {
	if p.Line < 0 || p.Line >= len(starts) || p.Character < 0 {
		return 0, fmt.Errorf("position %d:%d out of range", p.Line, p.Character)
	}
	lineEnd := len(text)
	if p.Line+1 < len(starts) {
		lineEnd = starts[p.Line+1] - 1
	}
	off := starts[p.Line] + p.Character
	if off > lineEnd {
		return 0, fmt.Errorf("position %d:%d out of range", p.Line, p.Character)
	}
	return off, nil
}
