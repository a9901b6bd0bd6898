package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/civcore/engine"
	"github.com/nathoo/civcore/engine/resolve"
	"github.com/nathoo/civcore/types"
)

const quicksave = "quicksave"

// Console is the state both front ends keep between input lines. Lines
// starting with a slash are console commands; everything else goes to
// the session.
type Console struct {
	Session *engine.Session
	SaveDir string
	Version string
	Trace   bool
	// Follow is the player /research shows by default.
	Follow int
	// Hints are appended to /help.
	Hints []string

	last string
}

// Reply is the outcome of one input line.
type Reply struct {
	Lines []string
	// Table lines are pre-rendered and must not be wrapped.
	Table bool
	// System lines are console messages rather than game output.
	System bool
	Trace  []string
	Quit   bool
}

// NewConsole returns a console saving under ~/.civcore/saves.
func NewConsole(s *engine.Session) *Console {
	home, _ := os.UserHomeDir()
	return &Console{
		Session: s,
		SaveDir: filepath.Join(home, ".civcore", "saves"),
		Version: "dev",
	}
}

func system(format string, args ...any) Reply {
	return Reply{Lines: []string{fmt.Sprintf(format, args...)}, System: true}
}

// Exec runs one input line. "again" and "g" repeat the last line that
// was not itself a repeat.
func (c *Console) Exec(input string) Reply {
	if lower := strings.ToLower(input); lower == "again" || lower == "g" {
		if c.last == "" {
			return system("Nothing to repeat.")
		}
		input = c.last
	} else {
		c.last = input
	}

	if strings.HasPrefix(input, "/") {
		return c.meta(input)
	}
	result := c.Session.Step(input)
	r := Reply{Lines: result.Output}
	if c.Trace {
		r.Trace = TraceLines(result)
	}
	return r
}

func (c *Console) meta(input string) Reply {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		r := system("Goodbye.")
		r.Quit = true
		return r
	case "/save":
		return c.save(arg)
	case "/load":
		return c.load(arg)
	case "/help":
		return c.help()
	case "/state":
		var b strings.Builder
		if err := RenderPlayers(&b, c.Session); err != nil {
			return system("%v", err)
		}
		return Reply{Lines: tableLines(b.String()), Table: true}
	case "/research":
		return c.research(arg)
	case "/follow":
		p, err := resolve.Player(c.Session.World, arg)
		if err != nil {
			return system("%v", err)
		}
		c.Follow = p.ID
		return system("Following %s.", p.Name)
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			return system("Trace output enabled.")
		}
		return system("Trace output disabled.")
	}
	return system("Unknown command: %s. Type /help for available commands.", cmd)
}

func tableLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func (c *Console) research(arg string) Reply {
	p := c.Session.World.Player(c.Follow)
	if arg != "" {
		var err error
		if p, err = resolve.Player(c.Session.World, arg); err != nil {
			return system("%v", err)
		}
	}
	if p == nil {
		return system("No player to show.")
	}
	var b strings.Builder
	b.WriteString(c.Session.ResearchSummary(p) + "\n")
	if err := RenderResearch(&b, c.Session.ResearchRows(p)); err != nil {
		return system("%v", err)
	}
	return Reply{Lines: tableLines(b.String()), Table: true}
}

func (c *Console) savePath(name string) (string, string) {
	if name == "" {
		name = quicksave
	}
	return name, filepath.Join(c.SaveDir, name+".json")
}

func (c *Console) save(arg string) Reply {
	name, path := c.savePath(arg)
	data, err := c.Session.Save(c.Version)
	if err == nil {
		err = os.MkdirAll(c.SaveDir, 0o755)
	}
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return system("Save failed: %v", err)
	}
	return system("Game saved to %s.", name)
}

func (c *Console) load(arg string) Reply {
	name, path := c.savePath(arg)
	data, err := os.ReadFile(path)
	if err == nil {
		err = c.Session.Restore(data)
	}
	if err != nil {
		return system("Load failed: %v", err)
	}
	return system("Game loaded from %s.", name)
}

var consoleHelp = []string{
	"Console:",
	"  /save [name]        Save the game (default: quicksave)",
	"  /load [name]        Load a saved game (default: quicksave)",
	"  /state              Table of players and their research",
	"  /research [player]  Table of techs (default: followed player)",
	"  /follow <player>    Make a player the default for /research",
	"  /trace              Toggle event trace output",
	"  /help               Show this help",
	"  /quit               Exit",
	"  again (g)           Repeat the last command",
	"",
}

func (c *Console) help() Reply {
	lines := append([]string{}, consoleHelp...)
	lines = append(lines, c.Session.Step("help").Output...)
	if len(c.Hints) > 0 {
		lines = append(append(lines, ""), c.Hints...)
	}
	return Reply{Lines: lines}
}

// TraceLines lists the events a command caused.
func TraceLines(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
	}
	return lines
}
