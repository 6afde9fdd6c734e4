// Package cpu implements the PDP-11-derived CPU used by the Soviet
// BK-0010/BK-0011 home computers: eight 16-bit general registers (R6 is the
// stack pointer, R7 the program counter), a processor status word carrying
// condition flags and priority, eight addressing modes, and the associated
// opcode dispatch, traps, and interrupts.
package cpu

import "log"

// Bus provides word/byte-aligned memory access for the CPU. All addresses
// are 16-bit. A failed access (unmapped address, or a ROM write) is
// reported by the second return value / bool result, never by a sentinel
// value threaded through the data channel.
type Bus interface {
	ReadWord(addr uint16) (uint16, bool)
	ReadByte(addr uint16) (byte, bool)
	WriteWord(addr uint16, val uint16) bool
	WriteByte(addr uint16, val byte) bool
}

// TimedBus is optionally implemented by a Bus whose regions include devices
// that need the current CPU time (in machine cycles since reset) to
// timestamp an access — the audio output device in particular, per the
// one-bit PCM model.
type TimedBus interface {
	Bus
	ReadWordAt(cpuTime uint64, addr uint16) (uint16, bool)
	ReadByteAt(cpuTime uint64, addr uint16) (byte, bool)
	WriteWordAt(cpuTime uint64, addr uint16, val uint16) bool
	WriteByteAt(cpuTime uint64, addr uint16, val byte) bool
}

// Registers holds the programmer-visible state of the CPU.
type Registers struct {
	R   [8]uint16 // R6 = SP, R7 = PC
	PSW uint16
}

// CPU is the PDP-11-derived processor.
type CPU struct {
	reg      Registers
	bus      Bus
	timedBus TimedBus // non-nil when bus implements TimedBus
	cycles   uint64

	// ir holds the first (and for most opcodes, only) word of the
	// currently executing instruction, latched at fetch time.
	ir     uint16
	prevPC uint16 // PC of the instruction currently executing (for diagnostics)

	halted  bool // set by HALT or by a double fault while servicing a trap
	waiting bool // set by WAIT, cleared when an interrupt is serviced

	pendingPriority uint8  // highest pending device interrupt priority (0 = none)
	pendingVector   uint16 // vector to service when pendingPriority is taken
}

// New creates a CPU wired to the given bus. The caller must call Reset
// before executing instructions.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.timedBus, _ = bus.(TimedBus)
	return c
}

// Reset reads the initial SP from address 0 and the initial PC from address
// 2 (both words), sets PSW to 0340 (priority 7, all flags clear), and
// clears cycle/trap/interrupt state. See DESIGN.md for why the reset vector
// lives at addresses 0/2.
func (c *CPU) Reset() {
	c.timedBus, _ = c.bus.(TimedBus)
	c.cycles = 0
	c.halted = false
	c.waiting = false
	c.pendingPriority = 0
	c.pendingVector = 0

	sp, ok := c.readWord(0)
	if !ok {
		sp = 0
	}
	pc, ok := c.readWord(2)
	if !ok {
		pc = 0
	}

	c.reg = Registers{PSW: 0o340}
	c.reg.R[6] = sp
	c.reg.R[7] = pc
}

// Halted reports whether the CPU has stopped due to HALT or a double fault
// on an uninitialized trap vector.
func (c *CPU) Halted() bool { return c.halted }

// Waiting reports whether the CPU is idling in a WAIT instruction.
func (c *CPU) Waiting() bool { return c.waiting }

// Cycles returns the total machine-cycle count since the last reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Registers returns a snapshot of the current register file and PSW.
func (c *CPU) Registers() Registers { return c.reg }

// ReadRegister returns the current value of register n (0-7).
func (c *CPU) ReadRegister(n int) uint16 { return c.reg.R[n] }

// WriteRegister sets register n (0-7) directly. Intended for tests and for
// host-driven state restoration.
func (c *CPU) WriteRegister(n int, val uint16) { c.reg.R[n] = val }

// PSW returns the current processor status word.
func (c *CPU) PSW() uint16 { return c.reg.PSW }

// SetPSW sets the processor status word directly.
func (c *CPU) SetPSW(val uint16) { c.reg.PSW = val }

// SetState installs register and PSW state directly without performing a
// hardware reset. Used by tests that need exact CPU state before executing
// an instruction.
func (c *CPU) SetState(regs Registers) {
	c.timedBus, _ = c.bus.(TimedBus)
	c.reg = regs
	c.halted = false
	c.waiting = false
	c.cycles = 0
	c.pendingPriority = 0
	c.pendingVector = 0
}

// Step executes a single instruction and returns the number of cycles
// consumed. Returns 0 if the CPU is halted.
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}

	before := c.cycles

	if c.checkInterrupt() {
		return int(c.cycles - before)
	}

	if c.waiting {
		c.cycles += 4
		return int(c.cycles - before)
	}

	if c.reg.R[7]&1 != 0 {
		log.Printf("[cpu] bus error: odd PC=%06o", c.reg.R[7])
		c.trap(vecBusError)
		return int(c.cycles - before)
	}

	c.prevPC = c.reg.R[7]
	word, ok := c.fetchWord()
	if !ok {
		c.trap(vecBusError)
		return int(c.cycles - before)
	}
	c.ir = word

	handler := opcodeTable[c.ir]
	if handler == nil {
		log.Printf("[cpu] reserved opcode %06o at PC=%06o", c.ir, c.prevPC)
		c.trap(vecReservedOpcode)
		return int(c.cycles - before)
	}
	handler(c)

	return int(c.cycles - before)
}

// RequestInterrupt queues a device interrupt at the given priority (1-7)
// with the given trap vector. Only one request is held pending at a time:
// a higher priority replaces the pending one, and a request whose priority
// is not above the pending one is discarded.
func (c *CPU) RequestInterrupt(priority uint8, vector uint16) {
	if priority > c.pendingPriority {
		c.pendingPriority = priority
		c.pendingVector = vector
	}
}

// readWord reads a word from the bus, masking the address to 16 bits and
// rejecting odd addresses as a bus error.
func (c *CPU) readWord(addr uint16) (uint16, bool) {
	if addr&1 != 0 {
		return 0, false
	}
	if c.timedBus != nil {
		return c.timedBus.ReadWordAt(c.cycles, addr)
	}
	return c.bus.ReadWord(addr)
}

// readByte reads a byte from the bus.
func (c *CPU) readByte(addr uint16) (byte, bool) {
	if c.timedBus != nil {
		return c.timedBus.ReadByteAt(c.cycles, addr)
	}
	return c.bus.ReadByte(addr)
}

// writeWord writes a word to the bus, rejecting odd addresses.
func (c *CPU) writeWord(addr uint16, val uint16) bool {
	if addr&1 != 0 {
		return false
	}
	if c.timedBus != nil {
		return c.timedBus.WriteWordAt(c.cycles, addr, val)
	}
	return c.bus.WriteWord(addr, val)
}

// writeByte writes a byte to the bus.
func (c *CPU) writeByte(addr uint16, val byte) bool {
	if c.timedBus != nil {
		return c.timedBus.WriteByteAt(c.cycles, addr, val)
	}
	return c.bus.WriteByte(addr, val)
}

// fetchWord reads the word at PC and advances PC by 2.
func (c *CPU) fetchWord() (uint16, bool) {
	val, ok := c.readWord(c.reg.R[7])
	if !ok {
		return 0, false
	}
	c.reg.R[7] += 2
	return val, true
}

// pushWord pushes a word onto the stack (predecrement SP, then write).
func (c *CPU) pushWord(val uint16) bool {
	c.reg.R[6] -= 2
	return c.writeWord(c.reg.R[6], val)
}

// popWord pops a word from the stack (read, then postincrement SP).
func (c *CPU) popWord() (uint16, bool) {
	val, ok := c.readWord(c.reg.R[6])
	if !ok {
		return 0, false
	}
	c.reg.R[6] += 2
	return val, true
}
