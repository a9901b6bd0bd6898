package script

import (
	"testing"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/civcore/types"
)

const testScript = `
count = 0
last = ""

function on_tech(tech, player, source)
  count = count + 1
  last = player.name .. ":" .. tech .. ":" .. source
  return source == "stolen"
end

signal.connect("tech_researched", "on_tech")
signal.connect("tech_researched", function() count = count + 100 end)

signal.connect("turn_started", function() error("boom") end)
signal.connect("turn_started", function(turn, year)
  log.normal("turn " .. turn)
  last = "turn " .. turn .. " year " .. year
end)
`

func newTestLua(t *testing.T, code string) *Lua {
	t.Helper()
	s, err := NewLua(code, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("NewLua() error: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func global(s *Lua, name string) lua.LValue {
	return s.L.GetGlobal(name)
}

func TestNopNeverStops(t *testing.T) {
	if (Nop{}).Emit(TechResearched, 1) {
		t.Error("Nop.Emit() = true, want false")
	}
}

func TestEmit(t *testing.T) {
	s := newTestLua(t, testScript)
	caesar := &types.Player{ID: 0, Name: "Caesar"}

	if stop := s.Emit(TechResearched, types.TechID(3), caesar, "researched"); stop {
		t.Error("Emit(researched) = true, want false")
	}
	if got := lua.LVAsNumber(global(s, "count")); got != 101 {
		t.Errorf("count = %v, want 101", got)
	}
	if got := lua.LVAsString(global(s, "last")); got != "Caesar:3:researched" {
		t.Errorf("last = %q, want %q", got, "Caesar:3:researched")
	}
}

func TestEmitStops(t *testing.T) {
	s := newTestLua(t, testScript)
	caesar := &types.Player{ID: 0, Name: "Caesar"}

	if stop := s.Emit(TechResearched, types.TechID(3), caesar, "stolen"); !stop {
		t.Error("Emit(stolen) = false, want true")
	}
	// The second callback never ran.
	if got := lua.LVAsNumber(global(s, "count")); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestFailingCallbackIsSkipped(t *testing.T) {
	s := newTestLua(t, testScript)

	if stop := s.Emit(TurnStarted, 2, -3950); stop {
		t.Error("Emit(turn_started) = true, want false")
	}
	if got := lua.LVAsString(global(s, "last")); got != "turn 2 year -3950" {
		t.Errorf("last = %q, want %q", got, "turn 2 year -3950")
	}
}

func TestUnconnectedSignal(t *testing.T) {
	s := newTestLua(t, testScript)
	if s.Emit("city_built", 1) {
		t.Error("Emit() on unconnected signal = true, want false")
	}
	want := []string{TechResearched, TurnStarted}
	got := s.Signals()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Signals() = %v, want %v", got, want)
	}
}

func TestSandbox(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"no dofile", `dofile("x.lua")`},
		{"no randomseed", `math.randomseed(1)`},
		{"no os", `os.exit(1)`},
		{"no io", `io.open("x")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLua(tt.code, WithLogger(zerolog.Nop())); err == nil {
				t.Errorf("NewLua(%q) succeeded, want error", tt.code)
			}
		})
	}
}

func TestConnectRejectsBadCallback(t *testing.T) {
	if _, err := NewLua(`signal.connect("turn_started", 5)`, WithLogger(zerolog.Nop())); err == nil {
		t.Error("NewLua() with numeric callback succeeded, want error")
	}
}

func TestEntityArguments(t *testing.T) {
	s := newTestLua(t, `
signal.connect("action_started_unit_city", function(action, unit, city)
  seen = action .. ":" .. unit.hp .. ":" .. city.name .. ":" .. city.size
end)
`)
	unit := &types.Unit{ID: 1, HP: 10}
	city := &types.City{ID: 2, Name: "Athens", Size: 3}
	s.Emit(ActionStartedUnitCity, types.ActionID(6), unit, city)
	if got := lua.LVAsString(global(s, "seen")); got != "6:10:Athens:3" {
		t.Errorf("seen = %q, want %q", got, "6:10:Athens:3")
	}
}
