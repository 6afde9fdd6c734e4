package cpu

// Single-operand instructions: one six-bit mode/register field in the low
// six bits of the opcode. Word forms occupy 0o0050xx-0o0067xx; byte forms
// set bit 15 (0o1050xx-0o1067xx), except SWAB (word only) and MFPS/MTPS
// (byte only), matching real PDP-11 opcode assignment.

const (
	opCLRbase = 0o005000
	opCOMbase = 0o005100
	opINCbase = 0o005200
	opDECbase = 0o005300
	opNEGbase = 0o005400
	opADCbase = 0o005500
	opSBCbase = 0o005600
	opTSTbase = 0o005700
	opRORbase = 0o006000
	opROLbase = 0o006100
	opASRbase = 0o006200
	opASLbase = 0o006300
	opSXTbase = 0o006700
	opSWABop  = 0o000300 // fixed mode/reg loop, word only

	opCLRBbase = 0o105000
	opCOMBbase = 0o105100
	opINCBbase = 0o105200
	opDECBbase = 0o105300
	opNEGBbase = 0o105400
	opADCBbase = 0o105500
	opSBCBbase = 0o105600
	opTSTBbase = 0o105700
	opRORBbase = 0o106000
	opROLBbase = 0o106100
	opASRBbase = 0o106200
	opASLBbase = 0o106300

	opMTPSbase = 0o106400 // byte only
	opMFPSbase = 0o106700 // byte only
)

func init() {
	registerSingleOperand(opCLRbase, Word, opCLR)
	registerSingleOperand(opCOMbase, Word, opCOM)
	registerSingleOperand(opINCbase, Word, opINC)
	registerSingleOperand(opDECbase, Word, opDEC)
	registerSingleOperand(opNEGbase, Word, opNEG)
	registerSingleOperand(opADCbase, Word, opADC)
	registerSingleOperand(opSBCbase, Word, opSBC)
	registerSingleOperand(opTSTbase, Word, opTST)
	registerSingleOperand(opRORbase, Word, opROR)
	registerSingleOperand(opROLbase, Word, opROL)
	registerSingleOperand(opASRbase, Word, opASR)
	registerSingleOperand(opASLbase, Word, opASL)
	registerSingleOperand(opSXTbase, Word, opSXT)

	registerSingleOperand(opCLRBbase, Byte, opCLR)
	registerSingleOperand(opCOMBbase, Byte, opCOM)
	registerSingleOperand(opINCBbase, Byte, opINC)
	registerSingleOperand(opDECBbase, Byte, opDEC)
	registerSingleOperand(opNEGBbase, Byte, opNEG)
	registerSingleOperand(opADCBbase, Byte, opADC)
	registerSingleOperand(opSBCBbase, Byte, opSBC)
	registerSingleOperand(opTSTBbase, Byte, opTST)
	registerSingleOperand(opRORBbase, Byte, opROR)
	registerSingleOperand(opROLBbase, Byte, opROL)
	registerSingleOperand(opASRBbase, Byte, opASR)
	registerSingleOperand(opASLBbase, Byte, opASL)

	registerSingleOperand(opSWABop, Word, opSWAB)
	registerSingleOperand(opMTPSbase, Byte, opMTPS)
	registerSingleOperand(opMFPSbase, Byte, opMFPS)
}

func registerSingleOperand(base uint16, sz Size, fn sizedOpFunc) {
	for mode := uint16(0); mode < 8; mode++ {
		for reg := uint16(0); reg < 8; reg++ {
			opcode := base | mode<<3 | reg
			opcodeTable[opcode] = func(c *CPU) { fn(c, sz) }
		}
	}
}

func decodeSingle(ir uint16) (mode, reg uint8) {
	mode = uint8((ir >> 3) & 7)
	reg = uint8(ir & 7)
	return
}

func opCLR(c *CPU, sz Size) {
	mode, reg := decodeSingle(c.ir)
	dst, ok := c.resolveOperand(mode, reg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	if !writeSized(c, dst, sz, 0) {
		c.trap(vecBusError)
		return
	}
	c.setFlagsClr()
	runPostActions(dst)
	c.cycles += 2 + eaCycles(mode)
}

func opCOM(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 { return ^d & sz.Mask() }, func(_, result uint16) {
		c.setFlagsCom(result, sz)
	})
}

func opINC(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 { return d + 1 }, func(d, result uint16) {
		c.setFlagsLogical(result, sz)
		if d&sz.Mask() == sz.MSB()-1 {
			c.reg.PSW |= flagV
		}
	})
}

func opDEC(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 { return d - 1 }, func(d, result uint16) {
		c.setFlagsLogical(result, sz)
		if d&sz.Mask() == sz.MSB() {
			c.reg.PSW |= flagV
		}
	})
}

func opNEG(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 { return (^d + 1) & sz.Mask() }, func(d, result uint16) {
		c.setFlagsSub(d, 0, result, sz)
		if result == 0 {
			c.reg.PSW &^= flagC
		} else {
			c.reg.PSW |= flagC
		}
	})
}

func opADC(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 {
		carry := uint16(0)
		if c.C() {
			carry = 1
		}
		return d + carry
	}, func(d, result uint16) {
		carry := uint16(0)
		if c.C() {
			carry = 1
		}
		c.setFlagsAdd(carry, d, result, sz)
	})
}

func opSBC(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 {
		carry := uint16(0)
		if c.C() {
			carry = 1
		}
		return d - carry
	}, func(d, result uint16) {
		carry := uint16(0)
		if c.C() {
			carry = 1
		}
		c.setFlagsSub(carry, d, result, sz)
	})
}

func opTST(c *CPU, sz Size) {
	mode, reg := decodeSingle(c.ir)
	src, ok := c.resolveOperand(mode, reg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	val, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	c.setFlagsLogical(val, sz)
	runPostActions(src)
	c.cycles += 2 + eaCycles(mode)
}

func opROR(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 {
		carryIn := uint16(0)
		if c.C() {
			carryIn = 1
		}
		return (d >> 1) | (carryIn << (sz.Bits() - 1))
	}, func(d, result uint16) {
		c.setFlagsShift(result, d&1 != 0, sz)
	})
}

func opROL(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 {
		carryIn := uint16(0)
		if c.C() {
			carryIn = 1
		}
		return ((d << 1) | carryIn) & sz.Mask()
	}, func(d, result uint16) {
		c.setFlagsShift(result, d&sz.MSB() != 0, sz)
	})
}

func opASR(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 {
		return (d >> 1) | (d & sz.MSB())
	}, func(d, result uint16) {
		c.setFlagsShift(result, d&1 != 0, sz)
	})
}

func opASL(c *CPU, sz Size) {
	withSingleOperand(c, sz, func(d uint16) uint16 {
		return (d << 1) & sz.Mask()
	}, func(d, result uint16) {
		c.setFlagsShift(result, d&sz.MSB() != 0, sz)
	})
}

func opSXT(c *CPU, sz Size) {
	mode, reg := decodeSingle(c.ir)
	dst, ok := c.resolveOperand(mode, reg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	var result uint16
	if c.N() {
		result = 0xFFFF
	}
	if !dst.write(c, sz, result) {
		c.trap(vecBusError)
		return
	}
	c.reg.PSW &^= flagV
	if result == 0 {
		c.reg.PSW |= flagZ
	} else {
		c.reg.PSW &^= flagZ
	}
	runPostActions(dst)
	c.cycles += 2 + eaCycles(mode)
}

func opSWAB(c *CPU, sz Size) {
	mode, reg := decodeSingle(c.ir)
	dst, ok := c.resolveOperand(mode, reg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	val, ok := dst.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	result := (val<<8 | val>>8) & 0xFFFF
	if !dst.write(c, sz, result) {
		c.trap(vecBusError)
		return
	}
	c.setFlagsSwab(result)
	runPostActions(dst)
	c.cycles += 2 + eaCycles(mode)
}

func opMFPS(c *CPU, sz Size) {
	mode, reg := decodeSingle(c.ir)
	dst, ok := c.resolveOperand(mode, reg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	val := c.reg.PSW & 0xFF
	if !writeSized(c, dst, sz, val) {
		c.trap(vecBusError)
		return
	}
	c.setFlagsLogical(val, Byte)
	runPostActions(dst)
	c.cycles += 2 + eaCycles(mode)
}

func opMTPS(c *CPU, sz Size) {
	mode, reg := decodeSingle(c.ir)
	src, ok := c.resolveOperand(mode, reg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	val, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	c.reg.PSW = (c.reg.PSW &^ 0xFF) | (val & 0xFF)
	runPostActions(src)
	c.cycles += 2 + eaCycles(mode)
}

// withSingleOperand resolves a single operand, reads its current value,
// computes a new value with compute, writes it back, then invokes setFlags
// with the original and new values before running the deferred
// post-addressing action. d and the value passed to compute/setFlags are
// always masked to sz, so byte-mode compute closures see an 8-bit operand
// regardless of whether the source is a register (word-wide per ea.go) or
// a memory byte — writeSized then re-merges the masked result into the
// destination register's untouched upper byte when sz is Byte.
func withSingleOperand(c *CPU, sz Size, compute func(d uint16) uint16, setFlags func(d, result uint16)) {
	mode, reg := decodeSingle(c.ir)
	dst, ok := c.resolveOperand(mode, reg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	raw, ok := dst.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	d := raw & sz.Mask()
	result := compute(d) & sz.Mask()
	if !writeSized(c, dst, sz, result) {
		c.trap(vecBusError)
		return
	}
	setFlags(d, result)
	runPostActions(dst)
	c.cycles += 2 + eaCycles(mode)
}

// writeSized writes result (already masked to sz) to dst. A byte-mode
// write to a register operand preserves the register's upper byte rather
// than zeroing or polluting it with compute overflow, per ea.go's
// "register operands are word-wide regardless of instruction size"
// invariant.
func writeSized(c *CPU, dst operand, sz Size, result uint16) bool {
	if sz == Byte && dst.kind == eaRegister {
		result = (c.reg.R[dst.reg] &^ sz.Mask()) | (result & sz.Mask())
	}
	return dst.write(c, sz, result)
}
