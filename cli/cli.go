// Package cli provides the line console, its slash commands, and the
// table output shared with the inspector.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/civcore/engine"
)

// CLI reads commands line by line and prints replies. Script playback
// sets EchoInput so the transcript shows what was run.
type CLI struct {
	*Console
	In        io.Reader
	Out       io.Writer
	EchoInput bool
}

// New creates a CLI on stdin and stdout.
func New(s *engine.Session) *CLI {
	return &CLI{Console: NewConsole(s), In: os.Stdin, Out: os.Stdout}
}

// Run prints the banner and executes lines until /quit or end of input.
// Blank lines and lines starting with # are skipped.
func (c *CLI) Run() {
	fmt.Fprintln(c.Out, Banner(c.Session))
	fmt.Fprintln(c.Out, "Type help for commands, /help for console commands.")

	scanner := bufio.NewScanner(c.In)
	for {
		fmt.Fprint(c.Out, "> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			fmt.Fprintln(c.Out, input)
		}

		r := c.Exec(input)
		c.print(r)
		if r.Quit {
			return
		}
	}
}

func (c *CLI) print(r Reply) {
	for _, line := range r.Lines {
		if r.System {
			line = "[" + line + "]"
		}
		fmt.Fprintln(c.Out, line)
	}
	for _, line := range r.Trace {
		fmt.Fprintln(c.Out, line)
	}
}

// Banner is the one-line description of the session's ruleset and date.
func Banner(s *engine.Session) string {
	w := s.World
	return fmt.Sprintf("%s ruleset, turn %d (%s), %d players",
		s.Defs.Game.Name, w.Turn, Year(w.Year), len(w.AlivePlayers()))
}

// Year formats a game year.
func Year(y int) string {
	if y < 0 {
		return fmt.Sprintf("%d BC", -y)
	}
	return fmt.Sprintf("%d AD", y)
}
