package ipc

import (
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve starts a Connection on one end of a pipe and returns the host end
// plus a channel carrying Serve's result.
func serve(t *testing.T, routes map[string]Handler) (net.Conn, *Connection, <-chan error) {
	t.Helper()
	host, ctrl := net.Pipe()
	c := NewConnection(ctrl)
	for typ, h := range routes {
		c.Handle(typ, h)
	}
	done := make(chan error, 1)
	go func() { done <- c.Serve() }()
	return host, c, done
}

func send(t *testing.T, w net.Conn, msgType string, data any) {
	t.Helper()
	env, err := NewEnvelope(msgType, data)
	require.NoError(t, err)
	require.NoError(t, WriteEnvelope(w, env))
}

func readAck(t *testing.T, r net.Conn) AckMessage {
	t.Helper()
	env, err := ReadEnvelope(r)
	require.NoError(t, err)
	require.Equal(t, TypeAck, env.Type)
	var ack AckMessage
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	return ack
}

func TestConnectionRoutesInOrder(t *testing.T) {
	var c *Connection
	host, ctrl, done := serve(t, map[string]Handler{
		TypeHello: func(env Envelope) (*Envelope, error) {
			ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
			return &ack, err
		},
		TypeTick: func(env Envelope) (*Envelope, error) {
			if err := c.Send(TypeMove, MoveCommand{Creep: "a", Room: "W1N1"}); err != nil {
				return nil, err
			}
			ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", Tick: 7, Intents: 1})
			return &ack, err
		},
	})
	c = ctrl

	send(t, host, TypeHello, HelloMessage{Player: "me"})
	assert.Equal(t, "ok", readAck(t, host).Status)

	send(t, host, TypeTick, TickMessage{})
	intent, err := ReadEnvelope(host)
	require.NoError(t, err)
	assert.Equal(t, TypeMove, intent.Type)
	ack := readAck(t, host)
	assert.Equal(t, 7, ack.Tick)
	assert.Equal(t, 1, ack.Intents)

	require.NoError(t, host.Close())
	assert.NoError(t, <-done)
	assert.Equal(t, 3, c.Sent())
}

func TestConnectionSkipsUnroutedMessages(t *testing.T) {
	host, _, done := serve(t, map[string]Handler{
		TypeHello: func(env Envelope) (*Envelope, error) {
			ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
			return &ack, err
		},
	})

	send(t, host, "chat", map[string]string{"text": "hi"})
	send(t, host, TypeHello, HelloMessage{Player: "me"})
	assert.Equal(t, "ok", readAck(t, host).Status)

	host.Close()
	assert.NoError(t, <-done)
}

func TestConnectionAnswersFailedHandlers(t *testing.T) {
	host, _, done := serve(t, map[string]Handler{
		TypeTick: func(env Envelope) (*Envelope, error) {
			return nil, errors.New("bad state")
		},
	})

	send(t, host, TypeTick, TickMessage{})
	assert.Equal(t, "error", readAck(t, host).Status)

	host.Close()
	assert.NoError(t, <-done)
}

func TestConnectionRejectsCorruptFrames(t *testing.T) {
	host, _, done := serve(t, nil)

	_, err := host.Write([]byte{0, 0, 0, 0})
	require.NoError(t, err)
	assert.ErrorContains(t, <-done, "invalid message length")
	host.Close()
}
