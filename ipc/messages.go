package ipc

import "github.com/nstehr/tundra/tundra-core/model"

// Message types sent by the host.
const (
	TypeHello = "hello"
	TypeAck   = "ack"
	TypeTick  = "tick"
)

type HelloMessage struct {
	Player string `json:"player"`
	Shard  string `json:"shard"`
}

// TickMessage carries one tick of world state.
type TickMessage struct {
	State model.GameState `json:"state"`
}

// AckMessage ends the controller's answer to a host message. For ticks it
// carries a short summary; the intents precede it on the wire.
type AckMessage struct {
	Status   string `json:"status"`
	Tick     int    `json:"tick,omitempty"`
	Intents  int    `json:"intents,omitempty"`
	Assigned int    `json:"assigned,omitempty"`
	Errors   int    `json:"errors,omitempty"`
}
