package csharp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/unitylens/internal/ports"
)

const playerSource = `using System.Collections;
using UnityEngine;

namespace Game.Actors
{
    // class Fake : MonoBehaviour { void Start() {} }
    [RequireComponent(typeof(Rigidbody))]
    public class Player : MonoBehaviour, IDamageable
    {
        [SerializeField] private float speed = 5f;
        private string label = "void Update() {";

        public int Health { get; private set; }

        void Start()
        {
            Health = 100;
        }

        private IEnumerator OnCollisionEnter(Collision collision)
        {
            yield return null;
        }

        public void TakeDamage(int amount) => Health -= amount;

        protected virtual void OnDisable()
        {
            if (Health > 0)
            {
                Debug.Log("bye }");
            }
        }

        class Inner
        {
            public static List<int> Numbers(int count, string name = "x")
            {
                return new List<int>();
            }
        }
    }
}
`

func parse(t *testing.T, src string) *ports.SourceFile {
	t.Helper()
	f, err := NewParser().Parse("Assets/Player.cs", []byte(src))
	require.NoError(t, err)
	return f
}

func TestParse_ClassesAndBases(t *testing.T) {
	f := parse(t, playerSource)

	require.Len(t, f.Classes, 2, "comment-embedded class must be ignored")
	player := f.Classes[0]
	assert.Equal(t, "Player", player.Name)
	assert.Equal(t, []string{"MonoBehaviour", "IDamageable"}, player.Bases)
	assert.Equal(t, 7, player.NameRange.Start.Line)
	assert.Equal(t, 17, player.NameRange.Start.Character)
	assert.Equal(t, 7, player.Range.Start.Line)
	assert.Equal(t, 41, player.Range.End.Line)

	inner := f.Classes[1]
	assert.Equal(t, "Inner", inner.Name)
	assert.False(t, inner.HasBase())
	require.Len(t, inner.Methods, 1)
	assert.Equal(t, "Numbers", inner.Methods[0].Name)
	assert.Equal(t, "List<int>", inner.Methods[0].ReturnType)
	assert.Equal(t, `(int count, string name = "x")`, inner.Methods[0].Parameters)

	assert.Equal(t, []string{"System.Collections", "UnityEngine"}, f.Usings)
	assert.True(t, f.HasUsing("System.Collections"))
}

func TestParse_Methods(t *testing.T) {
	f := parse(t, playerSource)
	player := f.Classes[0]

	names := make([]string, 0, len(player.Methods))
	for _, m := range player.Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Start", "OnCollisionEnter", "TakeDamage", "OnDisable"}, names)

	start := player.Methods[0]
	assert.Equal(t, "void", start.ReturnType)
	assert.Equal(t, ports.Range{
		Start: ports.Position{Line: 14, Character: 8},
		End:   ports.Position{Line: 14, Character: 12},
	}, start.ReturnTypeRange)
	assert.Equal(t, ports.Position{Line: 14, Character: 13}, start.NameRange.Start)
	assert.Equal(t, 17, start.Range.End.Line)

	coll := player.Methods[1]
	assert.Equal(t, "IEnumerator", coll.ReturnType)
	assert.Equal(t, []string{"private"}, coll.Modifiers)
	assert.Equal(t, "(Collision collision)", coll.Parameters)

	dmg := player.Methods[2]
	assert.Equal(t, "void", dmg.ReturnType)
	assert.Equal(t, dmg.NameRange.Start.Line, dmg.Range.End.Line, "expression-bodied method ends on its own line")

	dis := player.Methods[3]
	assert.Equal(t, []string{"protected", "virtual"}, dis.Modifiers)
	assert.Equal(t, 32, dis.Range.End.Line, "braces inside strings do not close the method")
}

func TestParse_LookupHelpers(t *testing.T) {
	f := parse(t, playerSource)

	c, m := f.MethodAtLine(14)
	require.NotNil(t, m)
	assert.Equal(t, "Player", c.Name)
	assert.Equal(t, "Start", m.Name)

	c, m = f.MethodAtLine(10)
	assert.Nil(t, c)
	assert.Nil(t, m)

	_, m = f.MethodNameAt(ports.Position{Line: 14, Character: 15})
	require.NotNil(t, m)
	assert.Equal(t, "Start", m.Name)

	_, m = f.MethodNameAt(ports.Position{Line: 14, Character: 9})
	assert.Nil(t, m, "return type is not the name")
}

func TestParse_RejectsStatementsAndConstructors(t *testing.T) {
	src := `public class Spawner : MonoBehaviour
{
    public Spawner() : base() { }
    public delegate void Spawned(GameObject go);
    public event Spawned OnSpawned;
    public static Spawner operator +(Spawner a, Spawner b) { return a; }
    public T Get<T>() where T : Component { return GetComponent<T>(); }

    void Update()
    {
        if (Input.anyKey) { Spawn(); }
        foreach (var x in items) { }
        void Local() { }
    }
}
`
	f := parse(t, src)
	require.Len(t, f.Classes, 1)
	var names []string
	for _, m := range f.Classes[0].Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Get", "Update"}, names)
}

func TestParse_FileScopedNamespaceAndGenerics(t *testing.T) {
	src := `namespace Game;

public sealed class Pool<T> : MonoBehaviour where T : Component
{
    public Dictionary<string, List<T>> Items() { return null; }
}
`
	f := parse(t, src)
	require.Len(t, f.Classes, 1)
	assert.Equal(t, "Pool", f.Classes[0].Name)
	assert.Equal(t, []string{"MonoBehaviour"}, f.Classes[0].Bases)
	require.Len(t, f.Classes[0].Methods, 1)
	assert.Equal(t, "Dictionary<string, List<T>>", f.Classes[0].Methods[0].ReturnType)
}

func TestParse_EmptyAndGarbage(t *testing.T) {
	f := parse(t, "")
	assert.Empty(t, f.Classes)

	f = parse(t, "}}}{{ class")
	assert.Empty(t, f.Classes)

	f = parse(t, "public class Open : MonoBehaviour {\n void Start() {")
	require.Len(t, f.Classes, 1, "unterminated class still reported")
	assert.Equal(t, 1, f.Classes[0].Range.End.Line)
	require.Len(t, f.Classes[0].Methods, 1)
}

func TestMask_PreservesOffsets(t *testing.T) {
	src := []byte("a /* b\nc */ \"d{\" '}' @\"e\"\"f\" // g\n#if X\nh")
	m := mask(src)
	require.Len(t, m, len(src))
	assert.Equal(t, "a     \n     \"  \" ' ' @\"    \"     \n     \nh", string(m))
}
