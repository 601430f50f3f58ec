package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("look")
	assert.Equal(t, "look", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_Lowercase(t *testing.T) {
	result := Parse("LOOK")
	assert.Equal(t, "look", result.Command)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("take lucky uoft mug")
	assert.Equal(t, "take", result.Command)
	assert.Equal(t, []string{"lucky", "uoft", "mug"}, result.Args)
	assert.Equal(t, "lucky uoft mug", result.RawArgs)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  use   movie   cd  ")
	assert.Equal(t, "use", result.Command)
	assert.Equal(t, []string{"movie", "cd"}, result.Args)
	assert.Equal(t, "movie   cd", result.RawArgs)
}

func TestParse_TabSeparated(t *testing.T) {
	result := Parse("take\tusb")
	assert.Equal(t, "take", result.Command)
	assert.Equal(t, "usb", result.RawArgs)
}

func TestParse_ArgsKeepCase(t *testing.T) {
	result := Parse("Use Laptop Charger")
	assert.Equal(t, "use", result.Command)
	assert.Equal(t, "Laptop Charger", result.RawArgs)
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseNonEmptyInputHasCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "word")
		result := Parse(word)
		if result.Command == "" {
			t.Fatalf("non-empty input %q produced empty command", word)
		}
	})
}
