package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()
	cmd, ok := r.Resolve("inventory")
	require.True(t, ok)
	assert.Equal(t, HandlerInventory, cmd.Handler)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()
	for alias, want := range map[string]string{"l": "look", "i": "inventory", "inv": "inventory", "q": "quit", "get": "take"} {
		cmd, ok := r.Resolve(alias)
		require.True(t, ok, alias)
		assert.Equal(t, want, cmd.Name, alias)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()
	_, ok := r.Resolve("dance")
	assert.False(t, ok)
}

func TestMenu(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"look", "inventory", "score", "undo", "log", "quit"}, r.Menu(CategoryMeta))
	assert.Equal(t, []string{"take", "use"}, r.Menu(CategoryItem))
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "look"},
		{Name: "look"},
	})
	assert.Error(t, err)
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "look", Aliases: []string{"l"}},
		{Name: "log", Aliases: []string{"l"}},
	})
	assert.Error(t, err)
}

func TestNewRegistry_AliasShadowsName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "quit"},
		{Name: "exit", Aliases: []string{"quit"}},
	})
	assert.Error(t, err)
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		cmd := rapid.SampledFrom(cmds).Draw(t, "cmd")

		resolved, ok := r.Resolve(cmd.Name)
		if !ok || resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q did not resolve to itself", cmd.Name)
		}
		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}

func TestReserves(t *testing.T) {
	r := DefaultRegistry()
	for _, verb := range []string{"look", "l", "i", "inv", "history", "q", "exit", "undo"} {
		assert.True(t, r.Reserves(verb), verb)
	}
	for _, verb := range []string{"go north", "take", "get", "use", "look around", "open safe", ""} {
		assert.False(t, r.Reserves(verb), verb)
	}
}

func TestProperty_MetaNamesAndAliasesAreReserved(t *testing.T) {
	r := DefaultRegistry()
	var words []string
	for _, cmd := range r.Commands() {
		if cmd.Category == CategoryMeta {
			words = append(words, cmd.Name)
			words = append(words, cmd.Aliases...)
		}
	}
	rapid.Check(t, func(rt *rapid.T) {
		word := rapid.SampledFrom(words).Draw(rt, "word")
		if !r.Reserves(word) {
			rt.Fatalf("meta word %q is not reserved", word)
		}
	})
}
