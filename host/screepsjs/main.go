//go:build js

// Command screepsjs runs the controller inside the game itself. Build it with
// GopherJS and upload the output as the main module; it exports loop().
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/gopherjs/gopherjs/js"
	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/manager"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/rules"
)

// The manager survives between ticks until the game resets the global
// scope; memory is reloaded from RawMemory after each reset.
var mgr *manager.Manager

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	js.Global.Set("loop", loop)
}

func loop() {
	if mgr == nil {
		m, err := boot()
		if err != nil {
			slog.Error("boot failed", "error", err)
			return
		}
		mgr = m
	}

	gs := readWorld()
	rep := mgr.RunTick(context.Background(), &gs, executor{})
	for _, err := range rep.Errors {
		slog.Warn("tick error", "tick", rep.Tick, "error", err)
	}
	if err := saveMemory(mgr.Store); err != nil {
		slog.Error("memory save failed", "error", err)
	}
}

func boot() (*manager.Manager, error) {
	engine, err := rules.NewEngine(rules.DefaultRules())
	if err != nil {
		return nil, err
	}
	store, err := loadMemory()
	if err != nil {
		slog.Warn("memory unreadable, starting fresh", "error", err)
		store = memory.New()
	}
	slog.Info("global reset", "tick", game.Get("time").Int())
	return manager.New(store, config.Default(), roles.DefaultRegistry(), engine), nil
}

func loadMemory() (*memory.Store, error) {
	raw := js.Global.Get("RawMemory").Call("get").String()
	store := memory.New()
	if raw == "" {
		return store, nil
	}
	if err := json.Unmarshal([]byte(raw), store); err != nil {
		return nil, err
	}
	store.Init()
	return store, nil
}

func saveMemory(s *memory.Store) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	js.Global.Get("RawMemory").Call("set", string(b))
	return nil
}

// executor carries out intents against live game objects as they are sent.
type executor struct{}

var creepMethods = map[string]string{
	ipc.TypeHarvest:          "harvest",
	ipc.TypePickup:           "pickup",
	ipc.TypeBuild:            "build",
	ipc.TypeRepair:           "repair",
	ipc.TypeUpgrade:          "upgradeController",
	ipc.TypeClaim:            "claimController",
	ipc.TypeReserve:          "reserveController",
	ipc.TypeAttackController: "attackController",
	ipc.TypeAttack:           "attack",
	ipc.TypeRangedAttack:     "rangedAttack",
	ipc.TypeHeal:             "heal",
}

var towerMethods = map[string]string{
	ipc.TypeTowerAttack: "attack",
	ipc.TypeTowerHeal:   "heal",
	ipc.TypeTowerRepair: "repair",
}

func byID(id string) (*js.Object, error) {
	o := game.Call("getObjectById", id)
	if o == nil || o == js.Undefined {
		return nil, fmt.Errorf("object %s not visible", id)
	}
	return o, nil
}

func creep(name string) (*js.Object, error) {
	c := game.Get("creeps").Get(name)
	if c == js.Undefined {
		return nil, fmt.Errorf("creep %s not found", name)
	}
	return c, nil
}

func (executor) Send(msgType string, data any) error {
	switch cmd := data.(type) {
	case ipc.MoveCommand:
		c, err := creep(cmd.Creep)
		if err != nil {
			return err
		}
		target := js.Global.Get("RoomPosition").New(cmd.X, cmd.Y, cmd.Room)
		reuse := 5
		if cmd.Repath {
			reuse = 0
		}
		c.Call("moveTo", target, map[string]any{"range": cmd.Range, "reusePath": reuse})
	case ipc.TargetCommand:
		c, err := creep(cmd.Creep)
		if err != nil {
			return err
		}
		t, err := byID(cmd.TargetID)
		if err != nil {
			return err
		}
		switch msgType {
		case ipc.TypeWithdraw:
			c.Call("withdraw", t, energy)
		case ipc.TypeTransfer:
			c.Call("transfer", t, energy)
		default:
			method, ok := creepMethods[msgType]
			if !ok {
				return fmt.Errorf("unknown creep intent %q", msgType)
			}
			c.Call(method, t)
		}
	case ipc.SignCommand:
		c, err := creep(cmd.Creep)
		if err != nil {
			return err
		}
		t, err := byID(cmd.TargetID)
		if err != nil {
			return err
		}
		c.Call("signController", t, cmd.Text)
	case ipc.SpawnCommand:
		s, err := byID(cmd.Spawn)
		if err != nil {
			return err
		}
		body := make([]any, len(cmd.Body))
		for i, p := range cmd.Body {
			body[i] = p
		}
		if code := s.Call("spawnCreep", body, cmd.Name).Int(); code != 0 {
			return fmt.Errorf("spawn %s at %s: code %d", cmd.Name, cmd.Spawn, code)
		}
	case ipc.TowerCommand:
		tw, err := byID(cmd.Tower)
		if err != nil {
			return err
		}
		t, err := byID(cmd.TargetID)
		if err != nil {
			return err
		}
		method, ok := towerMethods[msgType]
		if !ok {
			return fmt.Errorf("unknown tower intent %q", msgType)
		}
		tw.Call(method, t)
	case ipc.RemoveFlagCommand:
		f := game.Get("flags").Get(cmd.Flag)
		if f != js.Undefined {
			f.Call("remove")
		}
	default:
		return fmt.Errorf("unsupported intent %q (%T)", msgType, data)
	}
	return nil
}
