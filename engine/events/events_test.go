package events

import (
	"testing"

	"github.com/nathoo/civcore/engine/script"
	"github.com/nathoo/civcore/types"
)

type emission struct {
	signal string
	args   []any
}

// recorder records emissions and stops those named in stop.
type recorder struct {
	got  []emission
	stop map[string]bool
}

func (r *recorder) Emit(signal string, args ...any) bool {
	r.got = append(r.got, emission{signal, args})
	return r.stop[signal]
}

func TestDispatch_OrdersArguments(t *testing.T) {
	r := &recorder{}
	evs := []types.Event{
		{Type: script.TechResearched, Data: map[string]any{"source": "researched", "player": "Caesar", "tech": types.TechID(3)}},
		{Type: script.TurnStarted, Data: map[string]any{"year": -3950, "turn": 2}},
	}

	if stopped := Dispatch(evs, r); len(stopped) != 0 {
		t.Errorf("Dispatch() stopped %d events, want 0", len(stopped))
	}
	if len(r.got) != 2 {
		t.Fatalf("emitted %d signals, want 2", len(r.got))
	}
	tech := r.got[0]
	if tech.signal != script.TechResearched || tech.args[0] != types.TechID(3) || tech.args[1] != "Caesar" || tech.args[2] != "researched" {
		t.Errorf("first emission = %+v", tech)
	}
	turn := r.got[1]
	if turn.args[0] != 2 || turn.args[1] != -3950 {
		t.Errorf("turn args = %v, want [2 -3950]", turn.args)
	}
}

func TestDispatch_ReportsStopped(t *testing.T) {
	r := &recorder{stop: map[string]bool{script.TurnStarted: true}}
	evs := []types.Event{
		{Type: script.TechResearched, Data: map[string]any{}},
		{Type: script.TurnStarted, Data: map[string]any{"turn": 2}},
	}
	stopped := Dispatch(evs, r)
	if len(stopped) != 1 || stopped[0].Type != script.TurnStarted {
		t.Errorf("Dispatch() stopped = %v, want [turn_started]", stopped)
	}
	// Stopping one emission does not skip the next event.
	if len(r.got) != 2 {
		t.Errorf("emitted %d signals, want 2", len(r.got))
	}
}

func TestDispatch_UnknownEventPassesData(t *testing.T) {
	r := &recorder{}
	data := map[string]any{"x": 1}
	Dispatch([]types.Event{{Type: "custom", Data: data}}, r)
	if len(r.got) != 1 || len(r.got[0].args) != 1 {
		t.Fatalf("emissions = %+v, want one with one argument", r.got)
	}
	if m, ok := r.got[0].args[0].(map[string]any); !ok || m["x"] != 1 {
		t.Errorf("argument = %v, want the data map", r.got[0].args[0])
	}
}

func TestDispatch_NilHooks(t *testing.T) {
	if got := Dispatch([]types.Event{{Type: script.TurnStarted}}, nil); got != nil {
		t.Errorf("Dispatch(nil hooks) = %v, want nil", got)
	}
}

func TestDispatch_Lua(t *testing.T) {
	hooks, err := script.NewLua(`
signal.connect("turn_started", function(turn) turns = (turns or 0) + turn; return true end)
`)
	if err != nil {
		t.Fatalf("NewLua() error: %v", err)
	}
	defer hooks.Close()

	stopped := Dispatch([]types.Event{
		{Type: script.TurnStarted, Data: map[string]any{"turn": 2, "year": 0}},
		{Type: script.TurnStarted, Data: map[string]any{"turn": 3, "year": 0}},
	}, hooks)
	if len(stopped) != 2 {
		t.Errorf("Dispatch() stopped %d, want 2", len(stopped))
	}
}
