package cpu

// Jump/subroutine instructions: JMP, JSR, RTS, MARK, SOB.

const (
	opJMPbase  = 0o000100
	opJSRbase  = 0o004000
	opRTSbase  = 0o000200
	opMARKbase = 0o006400
	opSOBbase  = 0o077000
)

func init() {
	registerJMP()
	registerJSR()
	registerRTS()
	registerMARK()
	registerSOB()
}

// registerJMP fills modes 1-7 (mode 0, register-direct, has no address and
// is left unregistered — it decodes as a reserved opcode).
func registerJMP() {
	for mode := uint16(1); mode < 8; mode++ {
		for reg := uint16(0); reg < 8; reg++ {
			opcodeTable[opJMPbase|mode<<3|reg] = opJMP
		}
	}
}

func opJMP(c *CPU) {
	mode, reg := decodeSingle(c.ir)
	dst, ok := c.resolveOperand(mode, reg, Word)
	if !ok {
		c.trap(vecBusError)
		return
	}
	addr := dst.addr
	runPostActions(dst)
	c.reg.R[7] = addr
	c.cycles += 2 + eaCycles(mode)
}

func registerJSR() {
	for link := uint16(0); link < 8; link++ {
		for mode := uint16(1); mode < 8; mode++ {
			for reg := uint16(0); reg < 8; reg++ {
				opcodeTable[opJSRbase|link<<6|mode<<3|reg] = opJSR
			}
		}
	}
}

func opJSR(c *CPU) {
	link := uint8((c.ir >> 6) & 7)
	mode := uint8((c.ir >> 3) & 7)
	reg := uint8(c.ir & 7)

	dst, ok := c.resolveOperand(mode, reg, Word)
	if !ok {
		c.trap(vecBusError)
		return
	}
	addr := dst.addr

	if !c.pushWord(c.reg.R[link]) {
		c.trap(vecBusError)
		return
	}
	c.reg.R[link] = c.reg.R[7]
	runPostActions(dst)
	c.reg.R[7] = addr
	c.cycles += 4 + eaCycles(mode)
}

func registerRTS() {
	for reg := uint16(0); reg < 8; reg++ {
		opcodeTable[opRTSbase|reg] = opRTS
	}
}

func opRTS(c *CPU) {
	reg := uint8(c.ir & 7)
	newPC := c.reg.R[reg]
	val, ok := c.popWord()
	if !ok {
		c.trap(vecBusError)
		return
	}
	c.reg.R[reg] = val
	c.reg.R[7] = newPC
	c.cycles += 6
}

func registerMARK() {
	for n := uint16(0); n < 0o100; n++ {
		opcodeTable[opMARKbase|n] = opMARK
	}
}

// opMARK implements the standard PDP-11 subroutine-return-frame cleanup:
// SP is reset above the nn parameter words that were pushed for the call,
// PC is restored from R5, and R5 is popped off the newly-adjusted stack.
func opMARK(c *CPU) {
	n := c.ir & 0o77
	c.reg.R[6] = c.reg.R[7] + 2*n
	c.reg.R[7] = c.reg.R[5]
	val, ok := c.popWord()
	if !ok {
		c.trap(vecBusError)
		return
	}
	c.reg.R[5] = val
	c.cycles += 6
}

func registerSOB() {
	for reg := uint16(0); reg < 8; reg++ {
		for off := uint16(0); off < 0o100; off++ {
			opcodeTable[opSOBbase|reg<<6|off] = opSOB
		}
	}
}

// opSOB decrements the register and, if it's still nonzero, branches
// backward by the (always-subtracted) six-bit word offset.
func opSOB(c *CPU) {
	reg := uint8((c.ir >> 6) & 7)
	off := c.ir & 0o77

	c.reg.R[reg]--
	if c.reg.R[reg] != 0 {
		c.reg.R[7] -= 2 * off
	}
	c.cycles += 4
}
