// Package observer fans room overlays out to websocket clients. It is the
// controller's visuals component: anything a player would want drawn over a
// room is published here once per tick.
package observer

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

// RoomOverlay is what gets drawn over one room.
type RoomOverlay struct {
	Tick     int    `json:"tick"`
	Room     string `json:"room"`
	RCL      int    `json:"rcl"`
	Energy   int    `json:"energy"`
	Capacity int    `json:"capacity"`
	Defcon   int    `json:"defcon"`
	State    string `json:"state,omitempty"`

	Creeps map[string]int `json:"creeps,omitempty"`
	Limits map[string]int `json:"limits,omitempty"`
	Jobs   map[string]int `json:"jobs,omitempty"`
	Alerts []string       `json:"alerts,omitempty"`
}

type client struct {
	out chan []byte
}

// Hub tracks connected clients. Publish never blocks: a client whose buffer
// is full is dropped.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     localOrigin,
		},
	}
}

// localOrigin admits non-browser clients, same-origin pages and pages served
// from the local machine.
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		slog.Warn("observer origin unparseable", "origin", origin)
		return false
	}
	if u.Host == r.Host {
		return true
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends o to every client.
func (h *Hub) Publish(o RoomOverlay) {
	b, err := json.Marshal(o)
	if err != nil {
		slog.Error("marshal overlay", "room", o.Room, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.out <- b:
		default:
			slog.Warn("dropping slow observer")
			delete(h.clients, c)
			close(c.out)
		}
	}
}

func (h *Hub) join() *client {
	c := &client{out: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.out)
	}
}

// ServeHTTP upgrades the request and streams overlays until either side
// goes away.
func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := h.join()
	slog.Info("observer connected", "remote", r.RemoteAddr)
	defer slog.Info("observer disconnected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.leave(c)
			return
		case b, ok := <-c.out:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"), time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.leave(c)
				return
			}
		}
	}
}
