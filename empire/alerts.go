package empire

import (
	"log/slog"

	"github.com/nstehr/tundra/tundra-core/memory"
)

const defaultAlertTTL = 10

// Alert appends a message to the empire alert log. It is shown for ttl ticks
// from tick and pruned afterwards.
func Alert(store *memory.Store, msg string, ttl, tick int) {
	store.Empire.AlertMessages = append(store.Empire.AlertMessages, &memory.Alert{
		Message:     msg,
		TickCreated: tick,
		TTL:         ttl,
	})
	slog.Info("alert", "message", msg, "ttl", ttl)
}

// PruneAlerts drops alerts whose display time has run out and returns how
// many were dropped.
func PruneAlerts(store *memory.Store, tick int) int {
	kept := store.Empire.AlertMessages[:0]
	for _, a := range store.Empire.AlertMessages {
		if a != nil && tick-a.TickCreated < a.TTL {
			kept = append(kept, a)
		}
	}
	n := len(store.Empire.AlertMessages) - len(kept)
	clear(store.Empire.AlertMessages[len(kept):])
	store.Empire.AlertMessages = kept
	return n
}

// ActiveAlerts returns the messages still on display.
func ActiveAlerts(store *memory.Store, tick int) []string {
	var out []string
	for _, a := range store.Empire.AlertMessages {
		if a != nil && tick-a.TickCreated < a.TTL {
			out = append(out, a.Message)
		}
	}
	return out
}
