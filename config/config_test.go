package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nathoo/civcore/types"
)

func TestParse_Defaults(t *testing.T) {
	s, err := Parse([]byte(""))
	require.NoError(t, err)
	require.Equal(t, Default(), s)
}

func TestParse(t *testing.T) {
	data := []byte(`
sciencebox: 250
freecost: 10
diplchance: 60
barbarians: false
victories: [allied, culture]
techlossforgiveness: 50
seed: 7
`)
	s, err := Parse(data)
	require.NoError(t, err)
	if s.Sciencebox != 250 || s.Freecost != 10 || s.Diplchance != 60 {
		t.Errorf("Parse() = %+v", s)
	}
	if s.Barbarians {
		t.Errorf("Barbarians = true, want false")
	}
	require.Equal(t, []string{"ALLIED", "CULTURE"}, s.Victories)
	require.NotNil(t, s.Seed)
	if *s.Seed != 7 {
		t.Errorf("Seed = %d, want 7", *s.Seed)
	}
	if s.Foodbox != 100 {
		t.Errorf("Foodbox = %d, want default 100", s.Foodbox)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"bounds", "sciencebox: 0\ndiplchance: 101\n", []string{
			"sciencebox 0 is not between 1 and 10000",
			"diplchance 101 is not between 40 and 100",
		}},
		{"victory", "victories: [conquest]\n", []string{`unknown victory "CONQUEST"`}},
		{"endspaceship", "endspaceship: true\nvictories: [allied]\n", []string{"endspaceship needs the SPACERACE victory"}},
		{"constraint fails", "diplchance: 45\nconstraints: [\"Diplchance >= 50\"]\n", []string{`constraint "Diplchance >= 50" does not hold`}},
		{"constraint broken", "constraints: [\"Nonsense > 1\"]\n", []string{`constraint "Nonsense > 1"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			var se *Error
			require.True(t, errors.As(err, &se), "Parse() error = %v", err)
			for _, w := range tt.want {
				require.Contains(t, se.Error(), w)
			}
			if len(se.Problems) != len(tt.want) {
				t.Errorf("Problems = %q, want %d", se.Problems, len(tt.want))
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("sciencebox: [1, 2"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing settings")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("freecost: 25\nconstraints: [\"Freecost <= 50\"]\n"), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	if s.Freecost != 25 {
		t.Errorf("Freecost = %d, want 25", s.Freecost)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	s := Default()
	s.Sciencebox = 300
	s.Victories = []string{"ALLIED"}
	s.Techlossforgiveness = 20

	var g types.GameInfo
	s.Apply(&g)
	if g.Sciencebox != 300 || g.Diplchance != 80 || g.Techlossforgiveness != 20 {
		t.Errorf("Apply() = %+v", g)
	}
	if g.Spacerace {
		t.Errorf("Spacerace = true without the SPACERACE victory")
	}
	if !g.Barbarians || !g.Illness {
		t.Errorf("Barbarians, Illness = %v, %v, want true", g.Barbarians, g.Illness)
	}
}
