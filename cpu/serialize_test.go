package cpu

import "testing"

func TestSerializeRoundTrip(t *testing.T) {
	bus := &testBus{}
	c := New(bus)
	c.SetState(Registers{
		R:   [8]uint16{1, 2, 3, 4, 5, 6, 0o1000, 0o2000},
		PSW: 0o345,
	})
	c.RequestInterrupt(4, 0o100)
	c.ir = 0o012700
	c.prevPC = 0o1776

	buf := make([]byte, c.SerializeSize())
	if err := c.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	restored := New(bus)
	if err := restored.Deserialize(buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if restored.Registers() != c.Registers() {
		t.Errorf("restored registers = %+v, want %+v", restored.Registers(), c.Registers())
	}
	if restored.ir != c.ir {
		t.Errorf("restored ir = %#o, want %#o", restored.ir, c.ir)
	}
	if restored.prevPC != c.prevPC {
		t.Errorf("restored prevPC = %#o, want %#o", restored.prevPC, c.prevPC)
	}
	if restored.pendingPriority != c.pendingPriority || restored.pendingVector != c.pendingVector {
		t.Errorf("restored pending interrupt state = (%d,%#o), want (%d,%#o)",
			restored.pendingPriority, restored.pendingVector, c.pendingPriority, c.pendingVector)
	}
}

func TestSerializeRejectsUndersizedBuffer(t *testing.T) {
	c := New(&testBus{})
	buf := make([]byte, c.SerializeSize()-1)
	if err := c.Serialize(buf); err == nil {
		t.Fatal("expected an error serializing into an undersized buffer")
	}
}

func TestDeserializeRejectsWrongVersion(t *testing.T) {
	c := New(&testBus{})
	buf := make([]byte, c.SerializeSize())
	if err := c.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	buf[0] = cpuSerializeVersion + 1

	if err := c.Deserialize(buf); err == nil {
		t.Fatal("expected an error deserializing an unsupported version")
	}
}

func TestDeserializeRejectsUndersizedBuffer(t *testing.T) {
	c := New(&testBus{})
	buf := make([]byte, c.SerializeSize()-1)
	if err := c.Deserialize(buf); err == nil {
		t.Fatal("expected an error deserializing from an undersized buffer")
	}
}
