package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const classic = "../../rulesets/classic"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	if !strings.HasPrefix(out, "civcore dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestCheck_Classic(t *testing.T) {
	out, err := run(t, "check", classic)
	require.NoError(t, err)
	if !strings.Contains(out, `ruleset "classic" is sane`) {
		t.Errorf("check output = %q", out)
	}
}

func TestCheck_Broken(t *testing.T) {
	dir := t.TempDir()
	ruleset := `
Game { name = "broken", tech_cost_style = 9 }
Tech "Alphabet" { req1 = "Alphabet" }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.lua"), []byte(ruleset), 0o644))

	out, err := run(t, "check", dir)
	require.Error(t, err)
	if !strings.Contains(err.Error(), "error(s)") {
		t.Errorf("error = %v", err)
	}
	for _, want := range []string{"tech_cost_style 9", `tech "Alphabet" requires itself`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCheck_MissingDir(t *testing.T) {
	_, err := run(t, "check", filepath.Join(t.TempDir(), "nope"))
	if err == nil || !strings.Contains(err.Error(), "reading ruleset directory") {
		t.Errorf("error = %v", err)
	}
}

func TestResearch(t *testing.T) {
	out, err := run(t, "research", classic, "--player", "caesar")
	require.NoError(t, err)
	if !strings.HasPrefix(out, "Caesar") {
		t.Errorf("research output should start with the player:\n%s", out)
	}
	for _, want := range []string{"Bronze Working", "Philosophy"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Pericles") {
		t.Errorf("--player should limit output to Caesar:\n%s", out)
	}
}

func TestResearch_UnknownPlayer(t *testing.T) {
	_, err := run(t, "research", classic, "-p", "nobody")
	if err == nil || err.Error() != `no player called "nobody"` {
		t.Errorf("error = %v", err)
	}
}

func TestActions(t *testing.T) {
	out, err := run(t, "actions", classic, "--unit", "diplomat", "--city", "athens")
	require.NoError(t, err)
	for _, want := range []string{"Establish Embassy", "Steal Tech", "Athens"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = run(t, "actions", classic, "-u", "spy", "-t", "3")
	require.NoError(t, err)
	if !strings.Contains(out, "Bribe Unit") || strings.Contains(out, "Establish Embassy") {
		t.Errorf("unit target output:\n%s", out)
	}
}

func TestActions_NeedsOneTarget(t *testing.T) {
	_, err := run(t, "actions", classic, "--unit", "diplomat")
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Errorf("error = %v", err)
	}
}

func TestPlay_Script(t *testing.T) {
	script := filepath.Join(t.TempDir(), "cmds.txt")
	require.NoError(t, os.WriteFile(script, []byte("turn\ngive caesar alphabet\n"), 0o644))

	out, err := run(t, "play", classic, "--script", script, "--seed", "7")
	require.NoError(t, err)
	for _, want := range []string{"> turn", "Turn 2", "Caesar acquires Alphabet."} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSettingsFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("diplchance: 5\n"), 0o644))

	_, err := run(t, "research", classic, "--settings", bad)
	if err == nil || !strings.Contains(err.Error(), "diplchance 5") {
		t.Errorf("error = %v", err)
	}

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("sciencebox: 200\nseed: 3\n"), 0o644))
	_, err = run(t, "research", classic, "-s", good, "-p", "pericles")
	require.NoError(t, err)
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "version", "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "bad --log-level") {
		t.Errorf("error = %v", err)
	}
}
