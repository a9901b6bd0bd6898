// Package parser converts console command strings into commands.
// Intentionally dumb: a verb and its arguments, with double quotes
// grouping words that contain spaces.
package parser

import (
	"strings"
)

// Command is a parsed console line.
type Command struct {
	Verb string
	Args []string
}

// Arg returns the i-th argument, or "" if there are fewer.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Rest joins the arguments from i on, so unquoted multi-word names still
// resolve when they come last.
func (c Command) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

var verbAliases = map[string]string{
	"r":       "research",
	"tech":    "research",
	"techs":   "research",
	"gift":    "give",
	"g":       "give",
	"target":  "goal",
	"b":       "bulbs",
	"e":       "effect",
	"bonus":   "effect",
	"enabled": "can",
	"chance":  "prob",
	"act":     "do",
	"perform": "do",
	"w":       "want",
	"t":       "turn",
	"next":    "turn",
	"end":     "turn",
	"h":       "help",
	"?":       "help",
}

// Filler words are dropped when they stand alone and unquoted:
// "do embassy 1 on Athens" reads as "do embassy 1 Athens".
var fillers = map[string]bool{
	"on": true, "at": true, "to": true, "against": true, "with": true,
	"the": true, "a": true, "an": true, "in": true, "of": true,
}

// Parse converts a raw console line into a Command.
func Parse(input string) Command {
	words := tokenize(strings.TrimSpace(input))
	if len(words) == 0 {
		return Command{}
	}

	verb := strings.ToLower(words[0].text)
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}

	var args []string
	for _, w := range words[1:] {
		if !w.quoted && fillers[strings.ToLower(w.text)] {
			continue
		}
		args = append(args, w.text)
	}
	return Command{Verb: verb, Args: args}
}

type word struct {
	text   string
	quoted bool
}

// tokenize splits on whitespace, keeping double-quoted runs together. An
// unterminated quote runs to the end of the line.
func tokenize(input string) []word {
	var (
		out     []word
		cur     strings.Builder
		inQuote bool
		quoted  bool
	)
	flush := func() {
		if cur.Len() > 0 || quoted {
			out = append(out, word{text: cur.String(), quoted: quoted})
		}
		cur.Reset()
		quoted = false
	}
	for _, r := range input {
		switch {
		case r == '"':
			if inQuote {
				inQuote = false
			} else {
				inQuote = true
				quoted = true
			}
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
