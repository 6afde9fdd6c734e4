package cpu

// PSW flag bits (low four bits of the processor status word).
const (
	flagC uint16 = 1 << iota // Carry
	flagV                    // Overflow
	flagZ                    // Zero
	flagN                    // Negative
)

// Priority occupies bits 5-7 of the PSW.
const (
	priorityShift = 5
	priorityMask  = 0x7
)

// priority returns the current CPU priority (0-7) encoded in PSW bits 5-7.
func (c *CPU) priority() uint8 {
	return uint8((c.reg.PSW >> priorityShift) & priorityMask)
}

// setPriority sets PSW bits 5-7, leaving all other bits untouched.
func (c *CPU) setPriority(p uint8) {
	c.reg.PSW = (c.reg.PSW &^ (priorityMask << priorityShift)) | (uint16(p&priorityMask) << priorityShift)
}

// setFlagsAdd sets N,Z,V,C after result = dst + src.
func (c *CPU) setFlagsAdd(src, dst, result uint16, sz Size) {
	msb := sz.MSB()
	mask := sz.Mask()
	r := result & mask
	s := src & mask
	d := dst & mask

	c.reg.PSW &^= flagN | flagZ | flagV | flagC

	if r == 0 {
		c.reg.PSW |= flagZ
	}
	if r&msb != 0 {
		c.reg.PSW |= flagN
	}
	// Overflow: operands share a sign and the result's sign differs from it.
	if (s^r)&(d^r)&msb != 0 {
		c.reg.PSW |= flagV
	}
	// Carry: unsigned overflow out of the top bit.
	if uint32(s)+uint32(d) > uint32(mask) {
		c.reg.PSW |= flagC
	}
}

// setFlagsSub sets N,Z,V,C after result = dst - src.
func (c *CPU) setFlagsSub(src, dst, result uint16, sz Size) {
	msb := sz.MSB()
	mask := sz.Mask()
	r := result & mask
	s := src & mask
	d := dst & mask

	c.reg.PSW &^= flagN | flagZ | flagV | flagC

	if r == 0 {
		c.reg.PSW |= flagZ
	}
	if r&msb != 0 {
		c.reg.PSW |= flagN
	}
	// Overflow: operands differ in sign and the result's sign differs from dst.
	if (s^d)&(r^d)&msb != 0 {
		c.reg.PSW |= flagV
	}
	// Borrow (C set means a borrow occurred, the PDP-11 convention for SUB/CMP).
	if uint32(d) < uint32(s) {
		c.reg.PSW |= flagC
	}
}

// setFlagsCmp sets N,Z,V,C for CMP (dst - src, result discarded). Identical
// derivation to setFlagsSub; kept distinct because some callers may want to
// diverge on C in the future (CMP and SUB share PDP-11 condition-code rules
// today).
func (c *CPU) setFlagsCmp(src, dst, result uint16, sz Size) {
	c.setFlagsSub(src, dst, result, sz)
}

// setFlagsLogical sets N,Z from result, clears V, and preserves C. Used by
// MOV, BIT, TST and similar non-arithmetic operations.
func (c *CPU) setFlagsLogical(result uint16, sz Size) {
	mask := sz.Mask()
	r := result & mask

	c.reg.PSW &^= flagN | flagZ | flagV

	if r == 0 {
		c.reg.PSW |= flagZ
	}
	if r&sz.MSB() != 0 {
		c.reg.PSW |= flagN
	}
}

// setFlagsClr sets Z, clears N, V, C. Used by CLR/CLRB.
func (c *CPU) setFlagsClr() {
	c.reg.PSW &^= flagN | flagV | flagC
	c.reg.PSW |= flagZ
}

// setFlagsCom sets N,Z from result, clears V, sets C. Used by COM/COMB.
func (c *CPU) setFlagsCom(result uint16, sz Size) {
	c.setFlagsLogical(result, sz)
	c.reg.PSW |= flagC
}

// setFlagsSwab sets N,Z from the resulting low byte, clears V and C.
func (c *CPU) setFlagsSwab(result uint16) {
	c.reg.PSW &^= flagN | flagZ | flagV | flagC
	lo := result & 0xFF
	if lo == 0 {
		c.reg.PSW |= flagZ
	}
	if lo&0x80 != 0 {
		c.reg.PSW |= flagN
	}
}

// setFlagsShift sets C to the bit shifted out, V to N xor C (post-shift),
// and N,Z from the result. Shared by ASL/ASR/ROL/ROR.
func (c *CPU) setFlagsShift(result uint16, carryOut bool, sz Size) {
	c.reg.PSW &^= flagN | flagZ | flagV | flagC
	if carryOut {
		c.reg.PSW |= flagC
	}

	r := result & sz.Mask()
	if r == 0 {
		c.reg.PSW |= flagZ
	}
	n := r&sz.MSB() != 0
	if n {
		c.reg.PSW |= flagN
	}
	if n != carryOut {
		c.reg.PSW |= flagV
	}
}

// N, Z, V, C report the current condition flags.
func (c *CPU) N() bool { return c.reg.PSW&flagN != 0 }
func (c *CPU) Z() bool { return c.reg.PSW&flagZ != 0 }
func (c *CPU) V() bool { return c.reg.PSW&flagV != 0 }
func (c *CPU) C() bool { return c.reg.PSW&flagC != 0 }
