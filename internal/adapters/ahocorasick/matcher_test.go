package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sceneSnippet = `--- !u!114 &101
MonoBehaviour:
  m_GameObject: {fileID: 100}
  m_Script: {fileID: 11500000, guid: 4e29b1a8efbd4b44bb3f3716e73f07ff, type: 3}
`

func TestMatcher_Relevant(t *testing.T) {
	m := NewMatcher("m_Script:", "m_MethodName:")
	assert.True(t, m.Relevant([]byte(sceneSnippet)))
	assert.True(t, m.Relevant([]byte("        m_MethodName: OnPlay\n")))
	assert.False(t, m.Relevant([]byte("TextureImporter:\n  mipmaps: 1\n")))
	assert.False(t, m.Relevant(nil))
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher("m_Script:", "m_GameObject:", "m_MethodName:")
	assert.Equal(t, []string{"m_GameObject:", "m_Script:"}, m.Match([]byte(sceneSnippet)))
	assert.Nil(t, m.Match([]byte("hello world")))
}

func TestMatcher_OverlappingKeywords(t *testing.T) {
	m := NewMatcher("m_Target", "m_TargetAssemblyTypeName")
	got := m.Match([]byte("m_TargetAssemblyTypeName: Game.Menu"))
	assert.ElementsMatch(t, []string{"m_Target", "m_TargetAssemblyTypeName"}, got)
}

func TestMatcher_CaseSensitive(t *testing.T) {
	m := NewMatcher("m_Script:")
	assert.False(t, m.Relevant([]byte("M_SCRIPT: x")))
}

func TestMatcher_Empty(t *testing.T) {
	m := NewMatcher()
	assert.True(t, m.Relevant([]byte("anything")))
	assert.Nil(t, m.Match([]byte("anything")))
}

func BenchmarkRelevant(b *testing.B) {
	m := NewMatcher("m_Script:", "m_MethodName:")
	content := make([]byte, 0, 64<<10)
	for len(content) < 64<<10 {
		content = append(content, "  m_LocalPosition: {x: 0, y: 0, z: 0}\n"...)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Relevant(content)
	}
}
