package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/civcore/cli"
	"github.com/nathoo/civcore/types"
)

// researchStatus is the short research line for the followed player.
func (m Model) researchStatus(p *types.Player) string {
	reg := m.session.Research
	r := reg.For(p)
	if r == nil {
		return p.Name + ": no research"
	}
	status := fmt.Sprintf("%s: %s", p.Name, reg.AdvanceName(r, r.Researching))
	if r.Researching != types.AUnset {
		status += fmt.Sprintf(" %d/%d", r.BulbsResearched, reg.TotalBulbsRequired(r, r.Researching, false))
	}
	if r.TechGoal != types.AUnset {
		status += " -> " + reg.AdvanceName(r, r.TechGoal)
	}
	return status
}

// renderStatusBar produces a full-width inverted status line showing the
// followed player's research on the left and the date on the right.
func (m Model) renderStatusBar() string {
	w := m.session.World

	left := " " + m.session.Defs.Game.Name
	if p := w.Player(m.console.Follow); p != nil {
		left = " " + m.researchStatus(p)
		if bulbs := p.BulbsLastTurn; bulbs != 0 {
			left += fmt.Sprintf(" (+%d)", bulbs)
		}
	}
	right := fmt.Sprintf("T:%d %s ", w.Turn, cli.Year(w.Year))

	// Drop the date before the research line when space runs out.
	if lipgloss.Width(left)+lipgloss.Width(right) > m.width {
		right = fmt.Sprintf("T:%d ", w.Turn)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
