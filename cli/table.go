package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nathoo/civcore/engine"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/types"
)

var (
	knownColor    = color.New(color.FgGreen)
	reachColor    = color.New(color.FgYellow)
	disabledColor = color.New(color.FgRed)
)

func stateCell(s types.TechState) string {
	switch s {
	case types.TechKnown:
		return knownColor.Sprint(s)
	case types.TechPrereqsKnown:
		return reachColor.Sprint(s)
	}
	return s.String()
}

func flag(b bool) string {
	if b {
		return "*"
	}
	return ""
}

// RenderResearch writes one table row per tech.
func RenderResearch(w io.Writer, rows []engine.ResearchRow) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Tech", "State", "Cost", "Reachable", "Goal"}),
	)
	for _, r := range rows {
		reachable := "no"
		if r.Reachable {
			reachable = "yes"
		}
		if err := table.Append([]string{r.Tech, stateCell(r.State), strconv.Itoa(r.Cost), reachable, flag(r.OnGoal)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// RenderActions writes one table row per action.
func RenderActions(w io.Writer, rows []engine.ActionRow) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Action", "Target", "Enabled", "Owner sees", "Probability"}),
	)
	for _, r := range rows {
		enabled := disabledColor.Sprint("no")
		if r.Enabled {
			enabled = knownColor.Sprint("yes")
		}
		local := r.Local.String()
		if r.Local == tri.Unknown {
			local = reachColor.Sprint(local)
		}
		if err := table.Append([]string{r.Action, r.Target, enabled, local, r.Prob.String()}); err != nil {
			return err
		}
	}
	return table.Render()
}

// RenderPlayers writes one table row per player with their research
// status.
func RenderPlayers(w io.Writer, s *engine.Session) error {
	fmt.Fprintln(w, Banner(s))
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Player", "Nation", "Government", "Cities", "Units", "Research"}),
	)
	for _, p := range s.World.Players {
		if p == nil {
			continue
		}
		nation, gov := "", ""
		if p.Nation >= 0 && p.Nation < len(s.Defs.Nations) {
			nation = s.Defs.Nations[p.Nation].Name
		}
		if p.Government >= 0 && p.Government < len(s.Defs.Governments) {
			gov = s.Defs.Governments[p.Government].Name
		}
		row := []string{
			p.Name, nation, gov,
			strconv.Itoa(len(s.World.PlayerCities(p.ID))),
			strconv.Itoa(len(s.World.PlayerUnits(p.ID))),
			s.ResearchSummary(p),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
