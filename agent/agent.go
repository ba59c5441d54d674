package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nstehr/tundra/tundra-core/empire"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/manager"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

// eventAlertTTL is how long an event stays in the alert log.
const eventAlertTTL = 50

// Recorder keeps tick reports, such as the SQLite journal.
type Recorder interface {
	Record(rep *manager.TickReport) error
}

// Agent owns the decision-making for a single player session.
type Agent struct {
	Conn       ipc.Sender
	Player     string
	Shard      string
	Manager    *manager.Manager
	Strategist *Strategist
	Journal    Recorder

	// SnapshotPath, when set, receives the memory store every
	// SnapshotEvery ticks and on Close.
	SnapshotPath  string
	SnapshotEvery int

	prev     *stateSnapshot
	lastTick int
}

func New(conn ipc.Sender, m *manager.Manager) *Agent {
	return &Agent{Conn: conn, Manager: m}
}

// HandleHello completes the handshake so the host knows the controller is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.Player = hello.Player
	a.Shard = hello.Shard
	if c, ok := a.Conn.(*ipc.Connection); ok {
		c.Player = hello.Player
	}
	slog.Info("player identified", "player", a.Player, "shard", a.Shard)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick decides one tick. Intents are written to the connection as
// they are produced; the returned ack closes the tick.
func (a *Agent) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.TickMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal tick: %w", err)
	}
	rep := a.Tick(context.Background(), &msg.State)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{
		Status:   "ok",
		Tick:     rep.Tick,
		Intents:  rep.IntentTotal(),
		Assigned: rep.Assigned,
		Errors:   len(rep.Errors),
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// Tick runs one tick against a.Conn and does the per-tick bookkeeping:
// event alerts, the strategist, the journal and periodic snapshots.
func (a *Agent) Tick(ctx context.Context, gs *model.GameState) *manager.TickReport {
	rep := a.Manager.RunTick(ctx, gs, a.Conn)
	a.lastTick = gs.Tick
	store := a.Manager.Store

	events := detectEvents(gs, store, a.prev)
	snap := takeSnapshot(gs, store)
	a.prev = &snap
	for _, e := range events {
		slog.Info("event", "kind", e.Kind, "room", e.Room, "detail", e.Detail)
		empire.Alert(store, e.Detail, eventAlertTTL, gs.Tick)
	}
	if a.Strategist != nil {
		a.Strategist.UpdateState(*gs, events)
	}

	slog.Info("tick decided",
		"player", a.Player,
		"tick", rep.Tick,
		"bucket", rep.Bucket,
		"ran", rep.Ran,
		"skipped", rep.Skipped,
		"intents", rep.IntentTotal(),
		"assigned", rep.Assigned,
		"errors", len(rep.Errors),
	)

	if a.Journal != nil {
		if err := a.Journal.Record(rep); err != nil {
			slog.Error("journal write failed", "tick", rep.Tick, "error", err)
		}
	}
	if a.SnapshotEvery > 0 && gs.Tick%a.SnapshotEvery == 0 {
		a.snapshot()
	}
	return rep
}

func (a *Agent) snapshot() {
	if a.SnapshotPath == "" {
		return
	}
	if err := memory.WriteSnapshot(a.SnapshotPath, a.lastTick, a.Manager.Store); err != nil {
		slog.Error("memory snapshot failed", "path", a.SnapshotPath, "error", err)
		return
	}
	slog.Debug("memory snapshot written", "path", a.SnapshotPath, "tick", a.lastTick)
}

// Close writes a final snapshot.
func (a *Agent) Close() {
	a.snapshot()
}
