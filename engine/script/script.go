// Package script is the boundary between the core and ruleset scripts.
// The core emits named signals; scripts connect callbacks to them and may
// stop an emission by returning true.
package script

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/civcore/types"
)

// Signals emitted by the session.
const (
	TechResearched        = "tech_researched"
	ActionStartedUnitCity = "action_started_unit_city"
	ActionStartedUnitUnit = "action_started_unit_unit"
	TurnStarted           = "turn_started"
)

// Hooks receives signals from the core.
type Hooks interface {
	Emit(signal string, args ...any) (stop bool)
}

// Nop ignores every signal.
type Nop struct{}

// Emit implements Hooks.
func (Nop) Emit(string, ...any) bool { return false }

// callback is either a Lua function or the name of a global function
// looked up at emission time.
type callback struct {
	fn   *lua.LFunction
	name string
}

// Lua runs a ruleset or scenario script in a sandboxed VM.
type Lua struct {
	L         *lua.LState
	callbacks map[string][]callback
	code      string
	log       zerolog.Logger
}

// Option configures a Lua hook set.
type Option func(*Lua)

// WithLogger sets the logger used for script errors and log.* calls.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Lua) { s.log = l }
}

// NewLua runs code and returns the hooks it connected.
func NewLua(code string, opts ...Option) (*Lua, error) {
	s := &Lua{
		L:         lua.NewState(lua.Options{SkipOpenLibs: true}),
		callbacks: map[string][]callback{},
		code:      code,
		log:       log.Logger,
	}
	for _, o := range opts {
		o(s)
	}
	OpenSandbox(s.L)
	s.registerAPI()

	if code != "" {
		if err := s.L.DoString(code); err != nil {
			s.L.Close()
			return nil, fmt.Errorf("running script: %w", err)
		}
	}
	return s, nil
}

// Code returns the script source the VM was started with.
func (s *Lua) Code() string {
	return s.code
}

// Close releases the VM.
func (s *Lua) Close() {
	s.L.Close()
}

// Signals returns the names of the signals with at least one callback.
func (s *Lua) Signals() []string {
	out := make([]string, 0, len(s.callbacks))
	for name := range s.callbacks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Emit calls every callback connected to signal, in connection order,
// until one returns true. A failing callback is logged and skipped.
func (s *Lua) Emit(signal string, args ...any) bool {
	cbs := s.callbacks[signal]
	if len(cbs) == 0 {
		return false
	}
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = s.toLua(a)
	}
	for _, cb := range cbs {
		fn := cb.fn
		if fn == nil {
			f, ok := s.L.GetGlobal(cb.name).(*lua.LFunction)
			if !ok {
				s.log.Error().Str("signal", signal).Str("callback", cb.name).Msg("script callback is not a function")
				continue
			}
			fn = f
		}
		err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...)
		if err != nil {
			s.log.Error().Err(err).Str("signal", signal).Msg("script callback failed")
			continue
		}
		ret := s.L.Get(-1)
		s.L.Pop(1)
		if lua.LVAsBool(ret) {
			return true
		}
	}
	return false
}

func (s *Lua) registerAPI() {
	L := s.L

	signal := L.NewTable()
	L.SetField(signal, "connect", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		var cb callback
		switch v := L.Get(2).(type) {
		case *lua.LFunction:
			cb.fn = v
		case lua.LString:
			cb.name = string(v)
		default:
			L.ArgError(2, "function or function name expected")
			return 0
		}
		s.callbacks[name] = append(s.callbacks[name], cb)
		return 0
	}))
	L.SetGlobal("signal", signal)

	logTbl := L.NewTable()
	L.SetField(logTbl, "normal", L.NewFunction(func(L *lua.LState) int {
		s.log.Info().Str("source", "script").Msg(L.CheckString(1))
		return 0
	}))
	L.SetField(logTbl, "error", L.NewFunction(func(L *lua.LState) int {
		s.log.Error().Str("source", "script").Msg(L.CheckString(1))
		return 0
	}))
	L.SetGlobal("log", logTbl)
}

// toLua converts a signal argument. Entities become read-only snapshots.
func (s *Lua) toLua(v any) lua.LValue {
	L := s.L
	switch a := v.(type) {
	case nil:
		return lua.LNil
	case int:
		return lua.LNumber(a)
	case types.TechID:
		return lua.LNumber(a)
	case types.ActionID:
		return lua.LNumber(a)
	case bool:
		return lua.LBool(a)
	case string:
		return lua.LString(a)
	case *types.Player:
		if a == nil {
			return lua.LNil
		}
		t := L.NewTable()
		t.RawSetString("id", lua.LNumber(a.ID))
		t.RawSetString("name", lua.LString(a.Name))
		t.RawSetString("nation", lua.LNumber(a.Nation))
		t.RawSetString("government", lua.LNumber(a.Government))
		t.RawSetString("ai", lua.LBool(a.AI))
		return t
	case *types.City:
		if a == nil {
			return lua.LNil
		}
		t := L.NewTable()
		t.RawSetString("id", lua.LNumber(a.ID))
		t.RawSetString("name", lua.LString(a.Name))
		t.RawSetString("owner", lua.LNumber(a.Owner))
		t.RawSetString("size", lua.LNumber(a.Size))
		t.RawSetString("tile", lua.LNumber(a.Tile))
		return t
	case *types.Unit:
		if a == nil {
			return lua.LNil
		}
		t := L.NewTable()
		t.RawSetString("id", lua.LNumber(a.ID))
		t.RawSetString("type", lua.LNumber(a.Type))
		t.RawSetString("owner", lua.LNumber(a.Owner))
		t.RawSetString("tile", lua.LNumber(a.Tile))
		t.RawSetString("hp", lua.LNumber(a.HP))
		t.RawSetString("veteran", lua.LNumber(a.Veteran))
		return t
	case map[string]any:
		t := L.NewTable()
		for k, val := range a {
			t.RawSetString(k, s.toLua(val))
		}
		return t
	}
	return lua.LString(fmt.Sprint(v))
}

// OpenSandbox opens the safe subset of the Lua standard library and
// removes the globals that reach the filesystem or break determinism.
func OpenSandbox(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}
