// Package tui provides a Bubble Tea inspector for a civcore session.
package tui

import "strings"

// History is a bounded command history. Navigation only visits entries
// starting with the text typed before the first Prev.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating
	filter  string
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push adds a command to history. Consecutive duplicates are skipped.
func (h *History) Push(cmd string) {
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

func (h *History) matches(i int) bool {
	return strings.HasPrefix(h.entries[i], h.filter)
}

// Prev returns the next older entry matching the prefix typed when
// navigation started.
func (h *History) Prev(typed string) (string, bool) {
	start := h.cursor - 1
	if h.cursor == -1 {
		h.filter = typed
		start = len(h.entries) - 1
	}
	for i := start; i >= 0; i-- {
		if h.matches(i) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	if h.cursor >= 0 {
		return h.entries[h.cursor], true
	}
	return "", false
}

// Next returns the next newer matching entry, or false with the original
// prefix once navigation runs past the newest one.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	for i := h.cursor + 1; i < len(h.entries); i++ {
		if h.matches(i) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	h.cursor = -1
	return h.filter, false
}

// ResetCursor stops navigating.
func (h *History) ResetCursor() {
	h.cursor = -1
	h.filter = ""
}

// Complete extends the last word of input to the longest prefix shared by
// the candidates it starts, case-insensitively. Names with spaces are
// quoted.
func Complete(input string, candidates []string) string {
	cut := strings.LastIndex(input, " ") + 1
	word := strings.TrimPrefix(input[cut:], `"`)
	if word == "" {
		return input
	}
	var found []string
	for _, c := range candidates {
		if len(c) >= len(word) && strings.EqualFold(c[:len(word)], word) {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return input
	}
	common := found[0]
	for _, f := range found[1:] {
		n := 0
		for n < len(common) && n < len(f) && strings.EqualFold(common[n:n+1], f[n:n+1]) {
			n++
		}
		common = common[:n]
	}
	if len(common) < len(word) {
		return input
	}
	if len(found) == 1 && strings.Contains(common, " ") {
		return input[:cut] + `"` + common + `"`
	}
	return input[:cut] + common
}
