//go:build cgo && !lean && !core

package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/unitylens/internal/ports"
)

const enemySource = `using System.Collections;
using UnityEngine;

namespace Game
{
    [RequireComponent(typeof(Rigidbody))]
    public class Enemy : MonoBehaviour, IDamageable
    {
        void Start()
        {
        }

        private IEnumerator OnTriggerEnter(Collider other)
        {
            yield return null;
        }

        public int Damage(int amount) => amount;

        class Loot
        {
            public static void Drop() { }
        }
    }
}
`

func TestParser_ClassesAndMethods(t *testing.T) {
	p := NewParser()
	require.True(t, p.Available())

	f, err := p.Parse("Assets/Enemy.cs", []byte(enemySource))
	require.NoError(t, err)

	assert.Equal(t, []string{"System.Collections", "UnityEngine"}, f.Usings)
	require.Len(t, f.Classes, 2)

	enemy := f.Classes[0]
	assert.Equal(t, "Enemy", enemy.Name)
	assert.Equal(t, []string{"MonoBehaviour", "IDamageable"}, enemy.Bases)
	assert.Equal(t, 6, enemy.Range.Start.Line, "attributes are not part of the declaration range")
	assert.Equal(t, ports.Position{Line: 6, Character: 17}, enemy.NameRange.Start)
	assert.Equal(t, 23, enemy.Range.End.Line)

	require.Len(t, enemy.Methods, 3)
	start := enemy.Methods[0]
	assert.Equal(t, "Start", start.Name)
	assert.Equal(t, "void", start.ReturnType)
	assert.Equal(t, ports.Range{
		Start: ports.Position{Line: 8, Character: 8},
		End:   ports.Position{Line: 8, Character: 12},
	}, start.ReturnTypeRange)
	assert.Equal(t, "()", start.Parameters)

	trig := enemy.Methods[1]
	assert.Equal(t, "OnTriggerEnter", trig.Name)
	assert.Equal(t, "IEnumerator", trig.ReturnType)
	assert.Equal(t, []string{"private"}, trig.Modifiers)
	assert.Equal(t, "(Collider other)", trig.Parameters)

	assert.Equal(t, "Damage", enemy.Methods[2].Name)
	assert.Equal(t, "int", enemy.Methods[2].ReturnType)

	loot := f.Classes[1]
	assert.Equal(t, "Loot", loot.Name)
	assert.False(t, loot.HasBase())
	require.Len(t, loot.Methods, 1)
	assert.Equal(t, []string{"public", "static"}, loot.Methods[0].Modifiers)
}

func TestParser_FileScopedNamespace(t *testing.T) {
	src := `namespace Game;

public class Spawner : MonoBehaviour
{
    public void Spawn() { }
}
`
	f, err := NewParser().Parse("Spawner.cs", []byte(src))
	require.NoError(t, err)
	require.Len(t, f.Classes, 1)
	assert.Equal(t, "Spawner", f.Classes[0].Name)
	require.Len(t, f.Classes[0].Methods, 1)
	assert.Equal(t, "Spawn", f.Classes[0].Methods[0].Name)
}

func TestParser_EmptyAndExtension(t *testing.T) {
	p := NewParser()
	f, err := p.Parse("Empty.cs", nil)
	require.NoError(t, err)
	assert.Empty(t, f.Classes)

	assert.True(t, p.SupportsExtension(".cs"))
	assert.True(t, p.SupportsExtension(".CS"))
	assert.False(t, p.SupportsExtension(".js"))
}

func TestParser_UsingAliasSkipped(t *testing.T) {
	src := "using Rng = System.Random;\nusing static UnityEngine.Mathf;\n"
	f, err := NewParser().Parse("Util.cs", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"UnityEngine.Mathf"}, f.Usings)
}
