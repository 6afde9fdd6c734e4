package cpu

// Operand kind: a resolved operand either lives directly in a register
// (mode 0) or at a computed memory address (modes 1-7).
const (
	eaRegister = iota
	eaMemory
)

// operand is a resolved effective-address operand. Exactly one of reg/addr
// is meaningful, selected by kind. post is the deferred register
// autoincrement of modes 2 and 3 (nil for every other mode), which the CPU
// invokes after the destination write and flag update, for both operands,
// in source-then-destination order. Autodecrement and the extension-word
// PC advance of modes 6/7 happen immediately, inside resolveOperand.
type operand struct {
	kind uint8
	reg  uint8
	addr uint16
	post func()
}

// read returns the operand's value. Register operands always yield the
// full 16-bit register contents regardless of size — byte mode only
// affects memory and condition codes, per the data model.
func (o operand) read(c *CPU, sz Size) (uint16, bool) {
	if o.kind == eaRegister {
		return c.reg.R[o.reg], true
	}
	if sz == Byte {
		v, ok := c.readByte(o.addr)
		return uint16(v), ok
	}
	return c.readWord(o.addr)
}

// write stores val into the operand. Register operands always store the
// full word passed in; byte-mode callers are responsible for having merged
// the new byte with the existing register value before calling write, since
// the architecture defines register operands as word-wide regardless of
// instruction size.
func (o operand) write(c *CPU, sz Size, val uint16) bool {
	if o.kind == eaRegister {
		c.reg.R[o.reg] = val
		return true
	}
	if sz == Byte {
		return c.writeByte(o.addr, byte(val))
	}
	return c.writeWord(o.addr, val)
}

// resolveOperand decodes a six-bit mode/register field into an operand,
// performing pre-addressing (autodecrement) and any extension-word fetch
// immediately, and recording autoincrement as a deferred post-action. ok is
// false if a memory access needed to resolve the address (a deferred
// pointer, or an index extension word) faulted.
func (c *CPU) resolveOperand(mode, reg uint8, sz Size) (operand, bool) {
	switch mode {
	case 0: // Register
		return operand{kind: eaRegister, reg: reg}, true

	case 1: // Register deferred: (Rn)
		return operand{kind: eaMemory, addr: c.reg.R[reg]}, true

	case 2: // Autoincrement: (Rn); Rn += size (always 2 for SP/PC in byte mode)
		addr := c.reg.R[reg]
		step := stepSize(reg, sz)
		return operand{
			kind: eaMemory,
			addr: addr,
			post: func() { c.reg.R[reg] += step },
		}, true

	case 3: // Autoincrement deferred: (@(Rn)); Rn += 2
		ptr := c.reg.R[reg]
		addr, ok := c.readWord(ptr)
		if !ok {
			return operand{}, false
		}
		return operand{
			kind: eaMemory,
			addr: addr,
			post: func() { c.reg.R[reg] += 2 },
		}, true

	case 4: // Autodecrement: Rn -= size; (Rn)
		step := stepSize(reg, sz)
		c.reg.R[reg] -= step
		return operand{kind: eaMemory, addr: c.reg.R[reg]}, true

	case 5: // Autodecrement deferred: Rn -= 2; (@(Rn))
		c.reg.R[reg] -= 2
		addr, ok := c.readWord(c.reg.R[reg])
		if !ok {
			return operand{}, false
		}
		return operand{kind: eaMemory, addr: addr}, true

	case 6: // Index: (Rn + X); PC += 2
		x, ok := c.fetchWord()
		if !ok {
			return operand{}, false
		}
		return operand{kind: eaMemory, addr: c.reg.R[reg] + x}, true

	case 7: // Index deferred: (@(Rn + X)); PC += 2
		x, ok := c.fetchWord()
		if !ok {
			return operand{}, false
		}
		addr, ok := c.readWord(c.reg.R[reg] + x)
		if !ok {
			return operand{}, false
		}
		return operand{kind: eaMemory, addr: addr}, true
	}
	return operand{}, false
}

// stepSize returns the autoincrement/autodecrement step for a register in
// the given instruction size. SP (R6) and PC (R7) always step by 2 in byte
// mode, to keep the stack and instruction stream word-aligned.
func stepSize(reg uint8, sz Size) uint16 {
	if sz == Byte && reg != 6 && reg != 7 {
		return 1
	}
	return 2
}
