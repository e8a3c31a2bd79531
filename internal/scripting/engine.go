package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/l1jgo/pheromone/internal/core/event"
	"github.com/l1jgo/pheromone/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for world scripts.
// Single-goroutine access only (tick loop).
type Engine struct {
	vm    *lua.LState
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

// NewEngine creates a Lua VM with the pheromone API installed. Scripts are
// loaded separately with LoadDir or LoadString.
func NewEngine(ws *world.State, bus *event.Bus, log *zap.Logger) *Engine {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, world: ws, bus: bus, log: log}
	e.installAPI()
	return e
}

// LoadDir runs every .lua file in dir in name order. A missing dir is not
// an error.
func (e *Engine) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lua" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := e.vm.DoFile(path); err != nil {
			return 0, fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return len(names), nil
}

// LoadString runs a chunk of Lua source.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// OnTick calls the global on_tick(tick) if a script defined it.
func (e *Engine) OnTick(tick int64) error {
	fn := e.vm.GetGlobal("on_tick")
	if fn == lua.LNil {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(tick)); err != nil {
		return fmt.Errorf("lua on_tick: %w", err)
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
