package world

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

// yamlWorldFile is the top-level YAML structure for world files.
type yamlWorldFile struct {
	Name      string         `yaml:"name"`
	Game      yamlRules      `yaml:"game"`
	Locations []yamlLocation `yaml:"locations"`
	Items     []yamlItem     `yaml:"items"`
	Puzzles   []yamlPuzzle   `yaml:"puzzles"`
}

type yamlRules struct {
	StartLocation int `yaml:"start_location"`
	GoalLocation  int `yaml:"goal_location"`
	WinningScore  int `yaml:"winning_score"`
	MaxMoves      int `yaml:"max_moves"`
}

type yamlLocation struct {
	ID                int            `yaml:"id"`
	Name              string         `yaml:"name"`
	BriefDescription  string         `yaml:"brief_description"`
	LongDescription   string         `yaml:"long_description"`
	AvailableCommands map[string]int `yaml:"available_commands"`
	Items             []string       `yaml:"items"`
	Locked            bool           `yaml:"locked"`
	SpecialCommands   []string       `yaml:"special_commands"`
}

type yamlItem struct {
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description"`
	StartPosition  *int          `yaml:"start_position"`
	TargetPosition int           `yaml:"target_position"`
	TargetPoints   *int          `yaml:"target_points"`
	TakeRequires   []string      `yaml:"take_requires"`
	TakeGuard      string        `yaml:"take_guard"`
	TakeRefusal    string        `yaml:"take_refusal"`
	Uses           []yamlUseRule `yaml:"uses"`
}

type yamlUseRule struct {
	At       int          `yaml:"at"`
	Requires []string     `yaml:"requires"`
	Guard    string       `yaml:"guard"`
	Refusal  string       `yaml:"refusal"`
	Message  string       `yaml:"message"`
	Effects  []yamlEffect `yaml:"effects"`
}

// yamlEffect carries exactly one of its fields.
type yamlEffect struct {
	SetFlag   string `yaml:"set_flag"`
	ClearFlag string `yaml:"clear_flag"`
	Unlock    int    `yaml:"unlock"`
	Award     bool   `yaml:"award"`
	Consume   bool   `yaml:"consume"`
}

type yamlPuzzle struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Command       string   `yaml:"command"`
	Location      int      `yaml:"location"`
	RequiredItems []string `yaml:"required_items"`
	Solution      string   `yaml:"solution"`
	SolutionHash  string   `yaml:"solution_hash"`
	SetsFlag      string   `yaml:"sets_flag"`
	Message       string   `yaml:"message"`
}

// LoadOptions tunes world loading.
type LoadOptions struct {
	// HashCost is the bcrypt cost for plaintext puzzle solutions. 0 = bcrypt.DefaultCost.
	HashCost int
	// CheckGuard compiles a scripted guard expression. Nil skips guard checking.
	CheckGuard func(expr string) error
	// Reserved reports whether a normalized verb is claimed by the command
	// interpreter. Navigation and special verbs may not use reserved words.
	Reserved func(verb string) bool
}

// LoadFromFile reads and validates a world YAML file.
//
// Precondition: path must point to a YAML world file.
// Postcondition: Returns a validated World or a non-nil error; a world that
// fails validation yields a *MalformedWorldError.
func LoadFromFile(path string, opts LoadOptions) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	w, err := LoadFromBytes(data, opts)
	var malformed *MalformedWorldError
	if errors.As(err, &malformed) {
		malformed.Source = path
	}
	return w, err
}

// LoadFromBytes parses and validates a world from YAML bytes.
//
// Postcondition: Returns a validated World or a *MalformedWorldError. Every
// location starts unvisited and every item lies at its start position.
func LoadFromBytes(data []byte, opts LoadOptions) (*World, error) {
	var file yamlWorldFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MalformedWorldError{Violations: []string{"empty document"}}
		}
		return nil, &MalformedWorldError{Violations: []string{fmt.Sprintf("parsing YAML: %v", err)}}
	}

	w, violations := convertYAMLWorld(file, opts)
	violations = append(violations, w.validate(opts)...)
	if len(violations) > 0 {
		return nil, &MalformedWorldError{Violations: violations}
	}
	return w, nil
}

// convertYAMLWorld converts the parsed YAML structures into domain types,
// reporting violations that the conversion itself detects.
func convertYAMLWorld(yf yamlWorldFile, opts LoadOptions) (*World, []string) {
	var violations []string
	w := &World{
		Name: yf.Name,
		Rules: Rules{
			StartLocation: yf.Game.StartLocation,
			GoalLocation:  yf.Game.GoalLocation,
			WinningScore:  yf.Game.WinningScore,
			MaxMoves:      yf.Game.MaxMoves,
		},
		locations: make(map[int]*Location, len(yf.Locations)),
		items:     make(map[string]*Item, len(yf.Items)),
		puzzles:   make(map[puzzleKey]*Puzzle, len(yf.Puzzles)),
	}

	listed := make(map[string]int)
	for _, yl := range yf.Locations {
		if _, dup := w.locations[yl.ID]; dup {
			violations = append(violations, fmt.Sprintf("duplicate location id %d", yl.ID))
			continue
		}
		if yl.AvailableCommands == nil {
			violations = append(violations, fmt.Sprintf("location %d: available_commands is required", yl.ID))
		}
		loc := &Location{
			ID:       yl.ID,
			Name:     yl.Name,
			Brief:    strings.TrimSpace(yl.BriefDescription),
			Long:     strings.TrimSpace(yl.LongDescription),
			Commands: make(map[string]int, len(yl.AvailableCommands)),
			Items:    inventory.NewSet(),
			Locked:   yl.Locked,
		}
		for verb, dest := range yl.AvailableCommands {
			v := NormalizeVerb(verb)
			if v == "" {
				violations = append(violations, fmt.Sprintf("location %d: blank navigation verb", yl.ID))
				continue
			}
			if _, dup := loc.Commands[v]; dup {
				violations = append(violations, fmt.Sprintf("location %d: duplicate navigation verb %q", yl.ID, v))
				continue
			}
			loc.Commands[v] = dest
		}
		for _, s := range yl.SpecialCommands {
			v := NormalizeVerb(s)
			if v == "" || slices.Contains(loc.Special, v) {
				violations = append(violations, fmt.Sprintf("location %d: blank or duplicate special command %q", yl.ID, s))
				continue
			}
			loc.Special = append(loc.Special, v)
		}
		for _, name := range yl.Items {
			key := inventory.Fold(name)
			if prev, dup := listed[key]; dup {
				violations = append(violations, fmt.Sprintf("item %q listed at locations %d and %d", name, prev, yl.ID))
				continue
			}
			listed[key] = yl.ID
		}
		w.locations[loc.ID] = loc
	}

	for _, yi := range yf.Items {
		key := inventory.Fold(yi.Name)
		if key == "" {
			violations = append(violations, "item with empty name")
			continue
		}
		if _, dup := w.items[key]; dup {
			violations = append(violations, fmt.Sprintf("duplicate item %q", yi.Name))
			continue
		}
		item := &Item{
			Name:           strings.Join(strings.Fields(yi.Name), " "),
			Description:    strings.TrimSpace(yi.Description),
			StartPosition:  deref(yi.StartPosition),
			TargetPosition: yi.TargetPosition,
			TargetPoints:   deref(yi.TargetPoints),
			TakeRequires:   yi.TakeRequires,
			TakeGuard:      strings.TrimSpace(yi.TakeGuard),
			TakeRefusal:    yi.TakeRefusal,
		}
		if item.Description == "" {
			violations = append(violations, fmt.Sprintf("item %q: description is required", item.Name))
		}
		if yi.StartPosition == nil {
			violations = append(violations, fmt.Sprintf("item %q: start_position is required", item.Name))
		}
		if yi.TargetPoints == nil {
			violations = append(violations, fmt.Sprintf("item %q: target_points is required", item.Name))
		}
		for _, yu := range yi.Uses {
			rule := UseRule{
				At:       yu.At,
				Requires: yu.Requires,
				Guard:    strings.TrimSpace(yu.Guard),
				Refusal:  yu.Refusal,
				Message:  yu.Message,
			}
			for i, ye := range yu.Effects {
				eff, err := convertYAMLEffect(ye)
				if err != nil {
					violations = append(violations, fmt.Sprintf("item %q: use at %d: effect %d: %v", item.Name, yu.At, i, err))
					continue
				}
				rule.Effects = append(rule.Effects, eff)
			}
			item.Uses = append(item.Uses, rule)
		}
		if item.TargetPosition != 0 {
			if _, ok := item.RuleAt(item.TargetPosition); !ok {
				item.Uses = append(item.Uses, UseRule{
					At:      item.TargetPosition,
					Effects: []Effect{{Kind: EffectAward}, {Kind: EffectConsume}},
				})
			}
		}
		if at, ok := listed[key]; ok && at != item.StartPosition {
			violations = append(violations, fmt.Sprintf("item %q listed at location %d but starts at %d", item.Name, at, item.StartPosition))
		}
		if loc, ok := w.locations[item.StartPosition]; ok {
			loc.Items.Add(item.Name)
		}
		w.items[key] = item
		w.itemOrder = append(w.itemOrder, key)
	}
	for key := range listed {
		if _, ok := w.items[key]; !ok {
			violations = append(violations, fmt.Sprintf("location %d lists undeclared item %q", listed[key], key))
		}
	}

	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	for _, yp := range yf.Puzzles {
		p := &Puzzle{
			Name:          yp.Name,
			Description:   strings.TrimSpace(yp.Description),
			Command:       NormalizeVerb(yp.Command),
			Location:      yp.Location,
			RequiredItems: yp.RequiredItems,
			SetsFlag:      yp.SetsFlag,
			Message:       yp.Message,
		}
		switch {
		case yp.Solution != "" && yp.SolutionHash != "":
			violations = append(violations, fmt.Sprintf("puzzle %q: solution and solution_hash are mutually exclusive", yp.Name))
		case yp.SolutionHash != "":
			if _, err := bcrypt.Cost([]byte(yp.SolutionHash)); err != nil {
				violations = append(violations, fmt.Sprintf("puzzle %q: solution_hash is not a bcrypt hash", yp.Name))
			}
			p.SolutionHash = []byte(yp.SolutionHash)
		case yp.Solution != "":
			hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(yp.Solution)), cost)
			if err != nil {
				violations = append(violations, fmt.Sprintf("puzzle %q: hashing solution: %v", yp.Name, err))
			}
			p.SolutionHash = hash
		default:
			violations = append(violations, fmt.Sprintf("puzzle %q: solution or solution_hash is required", yp.Name))
		}
		k := puzzleKey{p.Location, p.Command}
		if _, dup := w.puzzles[k]; dup {
			violations = append(violations, fmt.Sprintf("duplicate puzzle %q at location %d", p.Command, p.Location))
			continue
		}
		w.puzzles[k] = p
	}

	return w, violations
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func convertYAMLEffect(ye yamlEffect) (Effect, error) {
	var effects []Effect
	if ye.SetFlag != "" {
		effects = append(effects, Effect{Kind: EffectSetFlag, Flag: ye.SetFlag})
	}
	if ye.ClearFlag != "" {
		effects = append(effects, Effect{Kind: EffectClearFlag, Flag: ye.ClearFlag})
	}
	if ye.Unlock != 0 {
		effects = append(effects, Effect{Kind: EffectUnlock, Location: ye.Unlock})
	}
	if ye.Award {
		effects = append(effects, Effect{Kind: EffectAward})
	}
	if ye.Consume {
		effects = append(effects, Effect{Kind: EffectConsume})
	}
	if len(effects) != 1 {
		return Effect{}, fmt.Errorf("exactly one effect kind is required, got %d", len(effects))
	}
	return effects[0], nil
}

// validate checks the cross-references of a converted world.
//
// Postcondition: Returns every violation found; empty when the world is playable.
func (w *World) validate(opts LoadOptions) []string {
	var errs []string
	guard := func(where, expr string) {
		if expr == "" || opts.CheckGuard == nil {
			return
		}
		if err := opts.CheckGuard(expr); err != nil {
			errs = append(errs, fmt.Sprintf("%s: guard %q: %v", where, expr, err))
		}
	}

	reserved := func(verb string) bool {
		return opts.Reserved != nil && opts.Reserved(verb)
	}

	if len(w.locations) == 0 {
		errs = append(errs, "world must contain at least one location")
	}
	for _, loc := range w.Locations() {
		if loc.ID <= 0 {
			errs = append(errs, fmt.Sprintf("location id must be positive, got %d", loc.ID))
		}
		if loc.Name == "" {
			errs = append(errs, fmt.Sprintf("location %d: name must not be empty", loc.ID))
		}
		if loc.Brief == "" {
			errs = append(errs, fmt.Sprintf("location %d: brief_description must not be empty", loc.ID))
		}
		for _, verb := range loc.Verbs() {
			if _, ok := w.locations[loc.Commands[verb]]; !ok {
				errs = append(errs, fmt.Sprintf("location %d: %q leads to unknown location %d", loc.ID, verb, loc.Commands[verb]))
			}
			if reserved(verb) {
				errs = append(errs, fmt.Sprintf("location %d: navigation verb %q is a reserved command", loc.ID, verb))
			}
		}
		for _, s := range loc.Special {
			if reserved(s) {
				errs = append(errs, fmt.Sprintf("location %d: special command %q is a reserved command", loc.ID, s))
			}
			if _, ok := loc.Commands[s]; ok {
				errs = append(errs, fmt.Sprintf("location %d: %q is both a navigation verb and a special command", loc.ID, s))
			}
			if _, ok := w.puzzles[puzzleKey{loc.ID, s}]; !ok {
				errs = append(errs, fmt.Sprintf("location %d: special command %q has no puzzle", loc.ID, s))
			}
		}
	}

	for _, it := range w.Items() {
		if _, ok := w.locations[it.StartPosition]; !ok {
			errs = append(errs, fmt.Sprintf("item %q: start_position %d is not a location", it.Name, it.StartPosition))
		}
		if it.TargetPosition != 0 {
			if _, ok := w.locations[it.TargetPosition]; !ok {
				errs = append(errs, fmt.Sprintf("item %q: target_position %d is not a location", it.Name, it.TargetPosition))
			}
		}
		if it.TargetPoints < 0 {
			errs = append(errs, fmt.Sprintf("item %q: target_points must be >= 0", it.Name))
		}
		guard(fmt.Sprintf("item %q take", it.Name), it.TakeGuard)
		seen := make(map[int]bool, len(it.Uses))
		for _, r := range it.Uses {
			if seen[r.At] {
				errs = append(errs, fmt.Sprintf("item %q: more than one use rule at %d", it.Name, r.At))
			}
			seen[r.At] = true
			if _, ok := w.locations[r.At]; !ok {
				errs = append(errs, fmt.Sprintf("item %q: use rule at unknown location %d", it.Name, r.At))
			}
			for _, e := range r.Effects {
				if e.Kind != EffectUnlock {
					continue
				}
				if _, ok := w.locations[e.Location]; !ok {
					errs = append(errs, fmt.Sprintf("item %q: unlock of unknown location %d", it.Name, e.Location))
				}
			}
			guard(fmt.Sprintf("item %q use at %d", it.Name, r.At), r.Guard)
		}
	}

	for k, p := range w.puzzles {
		loc, ok := w.locations[k.location]
		if !ok {
			errs = append(errs, fmt.Sprintf("puzzle %q: unknown location %d", p.Name, p.Location))
			continue
		}
		if !loc.HasSpecial(p.Command) {
			errs = append(errs, fmt.Sprintf("puzzle %q: %q is not a special command of location %d", p.Name, p.Command, p.Location))
		}
		if p.SetsFlag == "" {
			errs = append(errs, fmt.Sprintf("puzzle %q: sets_flag must not be empty", p.Name))
		}
		for _, name := range p.RequiredItems {
			if _, ok := w.items[inventory.Fold(name)]; !ok {
				errs = append(errs, fmt.Sprintf("puzzle %q: requires unknown item %q", p.Name, name))
			}
		}
	}

	r := w.Rules
	if _, ok := w.locations[r.StartLocation]; !ok {
		errs = append(errs, fmt.Sprintf("game.start_location %d is not a location", r.StartLocation))
	}
	if _, ok := w.locations[r.GoalLocation]; !ok {
		errs = append(errs, fmt.Sprintf("game.goal_location %d is not a location", r.GoalLocation))
	}
	if r.MaxMoves < 1 {
		errs = append(errs, fmt.Sprintf("game.max_moves must be >= 1, got %d", r.MaxMoves))
	}
	if r.WinningScore < 0 || r.WinningScore > w.TotalPoints() {
		errs = append(errs, fmt.Sprintf("game.winning_score %d must be between 0 and the %d points available", r.WinningScore, w.TotalPoints()))
	}

	slices.Sort(errs)
	return errs
}
