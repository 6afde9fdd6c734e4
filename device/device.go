// Package device implements the memory-mapped peripherals of the
// BK-0010/0011 CORE: anything claiming bus addresses but backed by
// behavior rather than plain storage.
package device

// Bag is an opaque blob map used by the save/restore state contract.
// Devices that hold no persistent state treat Save/Restore as no-ops.
type Bag map[string][]byte

// Device is a memory-mapped peripheral. Addresses returns the ordered,
// contiguous set of 16-bit addresses the device claims; the bus computes
// the device's region from the first and last entries. Read/Write receive
// the current CPU time (in machine cycles since reset) so devices that
// care about timing — the audio output chief among them — can timestamp
// an access without holding a back-reference to the machine.
type Device interface {
	Addresses() []uint16
	Init(cpuTime uint64)
	Read(cpuTime uint64, addr uint16) uint16
	Write(cpuTime uint64, byteMode bool, addr uint16, val uint16)
	SaveState() Bag
	RestoreState(Bag)
}

// InterruptRaiser is passed to devices that can raise a vectored CPU
// interrupt (the line-clock timer). It is implemented by cpu.CPU and
// handed to devices as a per-call parameter rather than held across calls
// — devices own no cyclic state back to the machine.
type InterruptRaiser interface {
	RequestInterrupt(priority uint8, vector uint16)
}

// Ticker is optionally implemented by a Device that needs to advance
// independently of being read or written — the line-clock timer chief
// among them. Computer.ExecuteSingleInstruction calls Tick once per
// instruction for every device implementing it, passing the raiser fresh
// each time rather than handing the device a held reference.
type Ticker interface {
	Tick(cpuTime uint64, raiser InterruptRaiser)
}
