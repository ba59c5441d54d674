package ipc

import "fmt"

// Sender delivers one message to the host. *Connection is the production
// Sender; Batch collects intents for dry runs and tests.
type Sender interface {
	Send(msgType string, data any) error
}

// Batch buffers envelopes in send order.
type Batch struct {
	Envelopes []Envelope
}

func (b *Batch) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	b.Envelopes = append(b.Envelopes, env)
	return nil
}

func (b *Batch) Len() int { return len(b.Envelopes) }

// Count returns how many buffered envelopes have msgType.
func (b *Batch) Count(msgType string) int {
	n := 0
	for _, e := range b.Envelopes {
		if e.Type == msgType {
			n++
		}
	}
	return n
}

// Flush writes every buffered envelope to s and empties the batch. It stops
// at the first failure.
func (b *Batch) Flush(s Sender) error {
	defer func() { b.Envelopes = b.Envelopes[:0] }()
	for i, e := range b.Envelopes {
		if err := s.Send(e.Type, e.Data); err != nil {
			return fmt.Errorf("flush intent %d (%s): %w", i, e.Type, err)
		}
	}
	return nil
}
