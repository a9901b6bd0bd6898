// Package config reads server settings from a YAML file and applies them
// to a ruleset's game info.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/civcore/types"
)

// Settings are the server settings the core reads. Fields missing from
// the file keep their defaults.
type Settings struct {
	Sciencebox          int      `yaml:"sciencebox"`
	Freecost            int      `yaml:"freecost"`
	Foodbox             int      `yaml:"foodbox"`
	Diplchance          int      `yaml:"diplchance"`
	Barbarians          bool     `yaml:"barbarians"`
	Illness             bool     `yaml:"illness"`
	Victories           []string `yaml:"victories"`
	EndSpaceship        bool     `yaml:"endspaceship"`
	MgrDistance         int      `yaml:"mgr_distance"`
	Techlossforgiveness int      `yaml:"techlossforgiveness"`
	Seed                *uint64  `yaml:"seed"`

	// Constraints are extra boolean expressions over these settings,
	// e.g. "Diplchance >= 50 || !Barbarians".
	Constraints []string `yaml:"constraints"`
}

// VictoryNames are the recognised victory conditions.
var VictoryNames = []string{"SPACERACE", "ALLIED", "CULTURE"}

// bound is the allowed range of one integer setting.
type bound struct {
	name     string
	min, max int
	value    func(s *Settings) int
}

var bounds = []bound{
	{"sciencebox", 1, 10000, func(s *Settings) int { return s.Sciencebox }},
	{"freecost", 0, 100, func(s *Settings) int { return s.Freecost }},
	{"foodbox", 1, 10000, func(s *Settings) int { return s.Foodbox }},
	{"diplchance", 40, 100, func(s *Settings) int { return s.Diplchance }},
	{"mgr_distance", -5, 5, func(s *Settings) int { return s.MgrDistance }},
	{"techlossforgiveness", -1, 200, func(s *Settings) int { return s.Techlossforgiveness }},
}

// builtin constraints hold for every settings file.
var builtin = []struct {
	src, msg string
}{
	{`!EndSpaceship || "SPACERACE" in Victories`, "endspaceship needs the SPACERACE victory"},
}

// Default returns the server defaults.
func Default() *Settings {
	return &Settings{
		Sciencebox:          100,
		Freecost:            0,
		Foodbox:             100,
		Diplchance:          80,
		Barbarians:          true,
		Illness:             true,
		Victories:           []string{"SPACERACE", "ALLIED"},
		MgrDistance:         0,
		Techlossforgiveness: -1,
	}
}

// Load reads settings from path over the defaults and validates them.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings over the defaults and validates them.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	for i, v := range s.Victories {
		s.Victories[i] = strings.ToUpper(v)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks every setting against its bounds, then the cross-setting
// constraints. All problems are reported together.
func (s *Settings) Validate() error {
	var problems []string
	for _, b := range bounds {
		if v := b.value(s); v < b.min || v > b.max {
			problems = append(problems, fmt.Sprintf("%s %d is not between %d and %d", b.name, v, b.min, b.max))
		}
	}
	for _, v := range s.Victories {
		if !contains(VictoryNames, v) {
			problems = append(problems, fmt.Sprintf("unknown victory %q", v))
		}
	}

	for _, c := range builtin {
		ok, err := s.holds(c.src)
		if err != nil {
			return fmt.Errorf("constraint %q: %w", c.src, err)
		}
		if !ok {
			problems = append(problems, c.msg)
		}
	}
	for _, src := range s.Constraints {
		ok, err := s.holds(src)
		if err != nil {
			problems = append(problems, fmt.Sprintf("constraint %q: %v", src, err))
			continue
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("constraint %q does not hold", src))
		}
	}

	if len(problems) > 0 {
		return &Error{Problems: problems}
	}
	return nil
}

func (s *Settings) holds(src string) (bool, error) {
	prog, err := expr.Compile(src, expr.Env(Settings{}), expr.AsBool())
	if err != nil {
		return false, err
	}
	out, err := vm.Run(prog, *s)
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

// Apply copies the settings into g.
func (s *Settings) Apply(g *types.GameInfo) {
	g.Sciencebox = s.Sciencebox
	g.Freecost = s.Freecost
	g.Foodbox = s.Foodbox
	g.Diplchance = s.Diplchance
	g.Barbarians = s.Barbarians
	g.Illness = s.Illness
	g.Spacerace = contains(s.Victories, "SPACERACE")
	g.MgrDistance = s.MgrDistance
	g.Techlossforgiveness = s.Techlossforgiveness
}

// Error lists every invalid setting.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid settings:\n  %s", strings.Join(e.Problems, "\n  "))
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
