// Package events implements single-pass dispatch of engine events to
// script signals. Callbacks may change the world but the events they cause
// are not dispatched again.
package events

import (
	"github.com/nathoo/civcore/engine/script"
	"github.com/nathoo/civcore/types"
)

// signalArgs lists, per signal, the event data keys passed as arguments.
var signalArgs = map[string][]string{
	script.TechResearched:        {"tech", "player", "source"},
	script.ActionStartedUnitCity: {"action", "unit", "city"},
	script.ActionStartedUnitUnit: {"action", "unit", "target"},
	script.TurnStarted:           {"turn", "year"},
}

// Args returns the signal arguments carried by an event. Events without a
// known signature pass their whole data map.
func Args(ev types.Event) []any {
	keys, ok := signalArgs[ev.Type]
	if !ok {
		return []any{ev.Data}
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = ev.Data[k]
	}
	return args
}

// Dispatch emits each event once, in order, and returns the events whose
// emission a callback stopped.
func Dispatch(evs []types.Event, hooks script.Hooks) []types.Event {
	if hooks == nil {
		return nil
	}
	var stopped []types.Event
	for _, ev := range evs {
		if hooks.Emit(ev.Type, Args(ev)...) {
			stopped = append(stopped, ev)
		}
	}
	return stopped
}
