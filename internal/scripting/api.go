package scripting

import (
	"math"

	"github.com/l1jgo/pheromone/internal/core/event"
	"github.com/l1jgo/pheromone/internal/core/handle"
	"github.com/l1jgo/pheromone/internal/pheromone"
	lua "github.com/yuin/gopher-lua"
)

// installAPI registers the global "pheromone" table.
//
// Reads and grid marks apply immediately. Agent moves, despawns and noise
// are queued on the event bus and applied next tick.
func (e *Engine) installAPI() {
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"tick":      e.luaTick,
		"get":       e.luaGet,
		"populated": e.luaPopulated,
		"mark":      e.luaMark,
		"touch":     e.luaTouch,
		"agents":    e.luaAgents,
		"spawn":     e.luaSpawn,
		"move":      e.luaMove,
		"despawn":   e.luaDespawn,
		"noise":     e.luaNoise,
	})
	e.vm.SetGlobal("pheromone", mod)
}

func (e *Engine) checkGrid(L *lua.LState, n int) (int16, *pheromone.Grid) {
	v := float64(L.CheckNumber(n))
	if v < math.MinInt16 || v > math.MaxInt16 {
		L.ArgError(n, "map id out of range")
	}
	mapID := int16(v)
	g := e.world.Grid(mapID)
	if g == nil {
		L.ArgError(n, "unknown map")
	}
	return mapID, g
}

// checkInt32 reads an integer argument, raising on values outside int32.
func checkInt32(L *lua.LState, n int) int32 {
	v, ok := optInt32(L, n)
	if !ok {
		L.ArgError(n, "value out of int32 range")
	}
	return v
}

// optInt32 reads a cell coordinate. ok is false when the value cannot be
// an int32, which no grid can contain.
func optInt32(L *lua.LState, n int) (int32, bool) {
	v := float64(L.CheckNumber(n))
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

// checkCell reads an (x, z) argument pair.
func checkCell(L *lua.LState, n int) (x, z int32, ok bool) {
	x, okX := optInt32(L, n)
	z, okZ := optInt32(L, n+1)
	return x, z, okX && okZ
}

// optStamp reads an optional explicit tick; absent means "now".
func optStamp(L *lua.LState, n int) pheromone.Stamp {
	if L.Get(n) == lua.LNil {
		return pheromone.Now
	}
	return pheromone.At(L.CheckInt64(n))
}

// pheromone.tick() -> current tick
func (e *Engine) luaTick(L *lua.LState) int {
	L.Push(lua.LNumber(e.world.Clock().Tick()))
	return 1
}

// pheromone.get(map, x, z) -> {timestamp, agents, target_x, target_z} or nil
func (e *Engine) luaGet(L *lua.LState) int {
	_, g := e.checkGrid(L, 1)
	x, z, inRange := checkCell(L, 2)
	if !inRange {
		L.Push(lua.LNil)
		return 1
	}
	p, ok := g.Lookup(x, z)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	t.RawSetString("timestamp", lua.LNumber(p.Timestamp))
	t.RawSetString("agents", lua.LNumber(p.AgentCount))
	if p.HasTarget {
		t.RawSetString("target_x", lua.LNumber(p.Target.X))
		t.RawSetString("target_z", lua.LNumber(p.Target.Z))
	}
	L.Push(t)
	return 1
}

// pheromone.populated(map) -> number of materialized cells
func (e *Engine) luaPopulated(L *lua.LState) int {
	_, g := e.checkGrid(L, 1)
	L.Push(lua.LNumber(g.Populated()))
	return 1
}

// pheromone.mark(map, x, z, tx, tz [, tick])
func (e *Engine) luaMark(L *lua.LState) int {
	_, g := e.checkGrid(L, 1)
	target := pheromone.Vec2{X: checkInt32(L, 4), Z: checkInt32(L, 5)}
	stamp := optStamp(L, 6)
	if x, z, ok := checkCell(L, 2); ok {
		g.SetTarget(x, z, target, stamp)
	}
	return 0
}

// pheromone.touch(map, x, z [, tick])
func (e *Engine) luaTouch(L *lua.LState) int {
	_, g := e.checkGrid(L, 1)
	stamp := optStamp(L, 4)
	if x, z, ok := checkCell(L, 2); ok {
		g.SetTimestamp(x, z, stamp)
	}
	return 0
}

// pheromone.agents(map, x, z, delta)
func (e *Engine) luaAgents(L *lua.LState) int {
	_, g := e.checkGrid(L, 1)
	delta := checkInt32(L, 4)
	if x, z, ok := checkCell(L, 2); ok {
		g.ChangeAgentCount(x, z, delta)
	}
	return 0
}

// pheromone.spawn(map, x, z) -> agent id
func (e *Engine) luaSpawn(L *lua.LState) int {
	mapID, _ := e.checkGrid(L, 1)
	id, err := e.world.SpawnAgent(mapID, pheromone.Vec2{X: checkInt32(L, 2), Z: checkInt32(L, 3)})
	if err != nil {
		L.RaiseError("spawn: %v", err)
	}
	L.Push(lua.LNumber(id))
	return 1
}

// pheromone.move(id, x, z)
func (e *Engine) luaMove(L *lua.LState) int {
	event.Emit(e.bus, event.AgentMoveRequested{
		Agent: handle.ID(L.CheckInt64(1)),
		To:    pheromone.Vec2{X: checkInt32(L, 2), Z: checkInt32(L, 3)},
	})
	return 0
}

// pheromone.despawn(id)
func (e *Engine) luaDespawn(L *lua.LState) int {
	event.Emit(e.bus, event.AgentRemoveRequested{Agent: handle.ID(L.CheckInt64(1))})
	return 0
}

// pheromone.noise(map, x, z, radius)
func (e *Engine) luaNoise(L *lua.LState) int {
	mapID, _ := e.checkGrid(L, 1)
	event.Emit(e.bus, event.NoiseRequested{
		MapID:  mapID,
		At:     pheromone.Vec2{X: checkInt32(L, 2), Z: checkInt32(L, 3)},
		Radius: checkInt32(L, 4),
	})
	return 0
}
