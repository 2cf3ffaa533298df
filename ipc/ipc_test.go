package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope failed: %v", err)
	}
	got, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope failed: %v", err)
	}
	var ack AckMessage
	if err := json.Unmarshal(got.Data, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if got.Type != TypeAck || ack.Status != "ok" {
		t.Errorf("envelope = %s %+v, want ack ok", got.Type, ack)
	}
}

func TestReadEnvelopeRejectsBadLength(t *testing.T) {
	for _, length := range []uint32{0, MaxFrameSize + 1} {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, length)
		if _, err := ReadEnvelope(&buf); !errors.Is(err, ErrFrameTooLarge) {
			t.Errorf("length %d: err = %v, want ErrFrameTooLarge", length, err)
		}
	}
}

func TestReadLoopDispatches(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	c := NewConnection(server, "test", nil)
	c.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
		resp, err := NewEnvelope(TypeAck, AckMessage{Status: "hello"})
		return &resp, err
	})
	c.RegisterHandler(TypeGameState, func(env Envelope) (*Envelope, error) {
		return nil, errors.New("boom")
	})
	done := make(chan struct{})
	go func() {
		c.ReadLoop()
		close(done)
	}()

	send := func(msgType string) {
		t.Helper()
		env, _ := NewEnvelope(msgType, struct{}{})
		if err := WriteEnvelope(client, env); err != nil {
			t.Fatalf("WriteEnvelope(%s) failed: %v", msgType, err)
		}
	}
	// Unknown types and handler errors do not end the loop.
	send("unknown")
	send(TypeGameState)
	send(TypeHello)

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	got, err := ReadEnvelope(client)
	if err != nil {
		t.Fatalf("ReadEnvelope failed: %v", err)
	}
	if got.Type != TypeAck {
		t.Errorf("reply type = %q, want ack", got.Type)
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("ReadLoop did not return after the client closed")
	}
}
