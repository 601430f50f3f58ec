package world

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testOpts = LoadOptions{HashCost: bcrypt.MinCost}

const validWorldYAML = `
name: "Test World"
game:
  start_location: 1
  goal_location: 2
  winning_score: 15
  max_moves: 10
locations:
  - id: 1
    name: "Hall"
    brief_description: "A hall."
    long_description: |
      A long hall.
      It has two lines.
    available_commands:
      Go  North: 2
      go east: 3
    items: [key]
  - id: 2
    name: "Vault"
    brief_description: "A vault."
    available_commands:
      go south: 1
  - id: 3
    name: "Study"
    brief_description: "A study."
    locked: true
    available_commands:
      go west: 1
    special_commands: [open safe]
items:
  - name: "Key"
    description: "A brass key."
    start_position: 1
    target_points: 0
    uses:
      - at: 1
        message: "Click."
        effects:
          - unlock: 3
          - consume: true
  - name: "gem"
    description: "A gem."
    start_position: 3
    target_position: 2
    target_points: 15
    take_requires: [safe_open]
puzzles:
  - name: "Safe"
    command: "open safe"
    location: 3
    solution: "1234"
    sets_flag: safe_open
`

func loadValid(t *testing.T) *World {
	t.Helper()
	w, err := LoadFromBytes([]byte(validWorldYAML), testOpts)
	require.NoError(t, err)
	return w
}

func malformed(t *testing.T, err error) *MalformedWorldError {
	t.Helper()
	var mw *MalformedWorldError
	require.True(t, errors.As(err, &mw), "expected *MalformedWorldError, got %v", err)
	return mw
}

func TestLoadFromBytes_Valid(t *testing.T) {
	w := loadValid(t)

	assert.Equal(t, "Test World", w.Name)
	assert.Equal(t, Rules{StartLocation: 1, GoalLocation: 2, WinningScore: 15, MaxMoves: 10}, w.Rules)
	assert.Len(t, w.Locations(), 3)

	hall, err := w.Location(1)
	require.NoError(t, err)
	assert.Equal(t, "Hall", hall.Name)
	assert.Contains(t, hall.Long, "It has two lines.")
	assert.Equal(t, []string{"go east", "go north"}, hall.Verbs())
	assert.Equal(t, []string{"Key"}, hall.Items.Names())
	assert.False(t, hall.Visited)

	study, err := w.Location(3)
	require.NoError(t, err)
	assert.True(t, study.Locked)
	assert.True(t, study.HasSpecial("Open Safe"))
	assert.Equal(t, []string{"gem"}, study.Items.Names())
}

func TestLoadFromBytes_AllLocationsUnvisited(t *testing.T) {
	for _, loc := range loadValid(t).Locations() {
		assert.False(t, loc.Visited, "location %d", loc.ID)
	}
}

func TestLoadFromBytes_SynthesizesTargetRule(t *testing.T) {
	w := loadValid(t)
	gem, err := w.Item("GEM")
	require.NoError(t, err)
	rule, ok := gem.RuleAt(2)
	require.True(t, ok)
	assert.Equal(t, []Effect{{Kind: EffectAward}, {Kind: EffectConsume}}, rule.Effects)
}

func TestLoadFromBytes_HashesSolution(t *testing.T) {
	w := loadValid(t)
	p, ok := w.Puzzle(3, "OPEN SAFE")
	require.True(t, ok)
	assert.NotEqual(t, "1234", string(p.SolutionHash))
	assert.True(t, p.Check(" 1234 "))
	assert.False(t, p.Check("4321"))
}

func TestLoadFromBytes_SolutionHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	doc := `
game: {start_location: 1, goal_location: 1, winning_score: 0, max_moves: 5}
locations:
  - id: 1
    name: "Cave"
    brief_description: "A cave."
    available_commands: {}
    special_commands: [speak]
puzzles:
  - name: "Door"
    command: speak
    location: 1
    solution_hash: "` + string(hash) + `"
    sets_flag: door_open
`
	w, err := LoadFromBytes([]byte(doc), testOpts)
	require.NoError(t, err)
	p, ok := w.Puzzle(1, "speak")
	require.True(t, ok)
	assert.True(t, p.Check("sesame"))
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("not: [valid yaml"), testOpts)
	malformed(t, err)
}

func TestLoadFromBytes_Empty(t *testing.T) {
	_, err := LoadFromBytes(nil, testOpts)
	mw := malformed(t, err)
	assert.Contains(t, mw.Error(), "empty document")
}

func TestLoadFromBytes_UnknownField(t *testing.T) {
	_, err := LoadFromBytes([]byte("locatoins: []\n"), testOpts)
	malformed(t, err)
}

func TestLoadFromBytes_Violations(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want string
	}{
		"dangling edge": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {go north: 9}}
`,
			want: "leads to unknown location 9",
		},
		"duplicate id": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
  - {id: 1, name: B, brief_description: b, available_commands: {}}
`,
			want: "duplicate location id 1",
		},
		"non-positive id": {
			doc: `
game: {start_location: 0, goal_location: 0, max_moves: 5}
locations:
  - {id: 0, name: A, brief_description: a, available_commands: {}}
`,
			want: "location id must be positive",
		},
		"missing brief": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, available_commands: {}}
`,
			want: "brief_description must not be empty",
		},
		"unknown start position": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
items:
  - {name: rock, description: r, start_position: 7, target_points: 0}
`,
			want: "start_position 7 is not a location",
		},
		"duplicate item": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
items:
  - {name: rock, description: r, start_position: 1, target_points: 0}
  - {name: ROCK, description: r, start_position: 1, target_points: 0}
`,
			want: "duplicate item",
		},
		"special without puzzle": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}, special_commands: [dance]}
`,
			want: `special command "dance" has no puzzle`,
		},
		"two effects in one entry": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
items:
  - name: rock
    description: r
    start_position: 1
    target_points: 0
    uses:
      - at: 1
        effects:
          - {award: true, consume: true}
`,
			want: "exactly one effect kind",
		},
		"unreachable score": {
			doc: `
game: {start_location: 1, goal_location: 1, winning_score: 99, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
`,
			want: "game.winning_score 99",
		},
		"zero move budget": {
			doc: `
game: {start_location: 1, goal_location: 1}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
`,
			want: "game.max_moves must be >= 1",
		},
		"listed at wrong location": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, items: [rock], available_commands: {go: 2}}
  - {id: 2, name: B, brief_description: b, available_commands: {}}
items:
  - {name: rock, description: r, start_position: 2, target_points: 0}
`,
			want: "listed at location 1 but starts at 2",
		},
		"missing available_commands": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a}
`,
			want: "location 1: available_commands is required",
		},
		"missing item description": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
items:
  - {name: rock, start_position: 1, target_points: 0}
`,
			want: `item "rock": description is required`,
		},
		"missing start_position": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
items:
  - {name: rock, description: r, target_points: 0}
`,
			want: `item "rock": start_position is required`,
		},
		"missing target_points": {
			doc: `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
items:
  - {name: rock, description: r, start_position: 1}
`,
			want: `item "rock": target_points is required`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tc.doc), testOpts)
			mw := malformed(t, err)
			assert.Contains(t, mw.Error(), tc.want)
		})
	}
}

func TestLoadFromBytes_GuardChecked(t *testing.T) {
	doc := `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {}}
items:
  - {name: rock, description: r, start_position: 1, target_points: 0, take_guard: "bad guard"}
`
	opts := testOpts
	opts.CheckGuard = func(expr string) error {
		return errors.New("does not compile")
	}
	_, err := LoadFromBytes([]byte(doc), opts)
	mw := malformed(t, err)
	assert.Contains(t, mw.Error(), "does not compile")
}

func TestLoadFromBytes_ReservedVerbs(t *testing.T) {
	doc := `
game: {start_location: 1, goal_location: 1, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {Look: 2, go north: 2}, special_commands: [q]}
  - {id: 2, name: B, brief_description: b, available_commands: {}}
puzzles:
  - {name: Quiz, command: q, location: 1, solution: x, sets_flag: quizzed}
`
	opts := testOpts
	opts.Reserved = func(verb string) bool { return verb == "look" || verb == "q" }
	_, err := LoadFromBytes([]byte(doc), opts)
	mw := malformed(t, err)
	assert.Equal(t, []string{
		`location 1: navigation verb "look" is a reserved command`,
		`location 1: special command "q" is a reserved command`,
	}, mw.Violations)

	_, err = LoadFromBytes([]byte(doc), testOpts)
	assert.NoError(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validWorldYAML), 0644))

	w, err := LoadFromFile(path, testOpts)
	require.NoError(t, err)
	assert.Equal(t, "Test World", w.Name)
}

func TestLoadFromFile_MalformedNamesSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game: {max_moves: 1}\n"), 0644))

	_, err := LoadFromFile(path, testOpts)
	mw := malformed(t, err)
	assert.Equal(t, path, mw.Source)
	assert.Contains(t, err.Error(), path)
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/world.yaml", testOpts)
	assert.Error(t, err)
}

func TestLoadBundledWorld(t *testing.T) {
	w, err := LoadFromFile("../../../content/world.yaml", testOpts)
	require.NoError(t, err)

	assert.Equal(t, Rules{StartLocation: 1, GoalLocation: 20, WinningScore: 50, MaxMoves: 71}, w.Rules)
	assert.Len(t, w.Locations(), 18)
	assert.Equal(t, 50, w.TotalPoints())

	closet, err := w.Location(4)
	require.NoError(t, err)
	assert.True(t, closet.Locked)

	for _, loc := range w.Locations() {
		for _, verb := range loc.Verbs() {
			dest, _ := loc.Destination(verb)
			_, err := w.Location(dest)
			assert.NoError(t, err, "location %d %q", loc.ID, verb)
		}
	}
}
