package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding level-tuning scripts:
// the difficulty ramp and per-type placement density adjustments.
// Single-goroutine access only (game loop). Every hook has a neutral
// Go fallback, so a missing script directory or function is never an
// error — scripts refine the world, they do not define it.
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	warned map[string]bool
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory yields an engine with no scripts.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, warned: make(map[string]bool)}
	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load tuning scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DensityMultiplier calls Lua get_difficulty(dist) and returns its
// density field. Fallback is 1.0.
func (e *Engine) DensityMultiplier(dist float64) float64 {
	d, ok := e.difficulty(dist)
	if !ok {
		return 1.0
	}
	return d.density
}

// SpeedMultiplier calls Lua get_difficulty(dist) and returns its speed
// field. Fallback is 1.0.
func (e *Engine) SpeedMultiplier(dist float64) float64 {
	d, ok := e.difficulty(dist)
	if !ok {
		return 1.0
	}
	return d.speed
}

type difficulty struct {
	density float64
	speed   float64
}

func (e *Engine) difficulty(dist float64) (difficulty, bool) {
	fn := e.vm.GetGlobal("get_difficulty")
	if fn == lua.LNil {
		e.warnOnce("get_difficulty")
		return difficulty{}, false
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(dist)); err != nil {
		e.log.Error("lua get_difficulty error", zap.Error(err))
		return difficulty{}, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua get_difficulty returned non-table")
		return difficulty{}, false
	}

	d := difficulty{
		density: lFloat(rt, "density"),
		speed:   lFloat(rt, "speed"),
	}
	if d.density <= 0 {
		d.density = 1.0
	}
	if d.speed <= 0 {
		d.speed = 1.0
	}
	return d, true
}

// AdjustPlacementDensity calls Lua adjust_placement(type, base, dist)
// for a per-type density override. Fallback returns base unchanged.
func (e *Engine) AdjustPlacementDensity(typeName string, base, dist float64) float64 {
	fn := e.vm.GetGlobal("adjust_placement")
	if fn == lua.LNil {
		return base
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(typeName), lua.LNumber(base), lua.LNumber(dist)); err != nil {
		e.log.Error("lua adjust_placement error", zap.Error(err), zap.String("type", typeName))
		return base
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	v := float64(lua.LVAsNumber(result))
	if v < 0 {
		return base
	}
	return v
}

func (e *Engine) warnOnce(name string) {
	if e.warned[name] {
		return
	}
	e.warned[name] = true
	e.log.Info("lua function not defined, using built-in fallback", zap.String("name", name))
}

// lFloat reads a float field from a Lua table.
func lFloat(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
