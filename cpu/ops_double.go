package cpu

// Double-operand instructions: MOV, CMP, BIT, BIC, BIS (word and byte
// forms), ADD, SUB (word only). Encoding: opcode(4) srcMode(3) srcReg(3)
// dstMode(3) dstReg(3). The byte forms of MOV/CMP/BIT/BIC/BIS set bit 15 of
// the opcode nibble relative to their word form, per spec §4.3.

const (
	opMOVbase = 0o010000
	opCMPbase = 0o020000
	opBITbase = 0o030000
	opBICbase = 0o040000
	opBISbase = 0o050000
	opADDbase = 0o060000
	opSUBbase = 0o160000

	opMOVBbase = 0o110000
	opCMPBbase = 0o120000
	opBITBbase = 0o130000
	opBICBbase = 0o140000
	opBISBbase = 0o150000
)

func init() {
	registerDoubleOperand(opMOVbase, Word, opMOV)
	registerDoubleOperand(opCMPbase, Word, opCMP)
	registerDoubleOperand(opBITbase, Word, opBIT)
	registerDoubleOperand(opBICbase, Word, opBIC)
	registerDoubleOperand(opBISbase, Word, opBIS)
	registerDoubleOperand(opADDbase, Word, opADD)
	registerDoubleOperand(opSUBbase, Word, opSUB)

	registerDoubleOperand(opMOVBbase, Byte, opMOV)
	registerDoubleOperand(opCMPBbase, Byte, opCMP)
	registerDoubleOperand(opBITBbase, Byte, opBIT)
	registerDoubleOperand(opBICBbase, Byte, opBIC)
	registerDoubleOperand(opBISBbase, Byte, opBIS)
}

// sizedOpFunc executes a double-operand instruction at a fixed size. The
// size is closed over by the registration loop below rather than decoded
// from the opcode, since MOV/MOVB etc. occupy disjoint opcode ranges.
type sizedOpFunc func(c *CPU, sz Size)

// registerDoubleOperand fills every (srcMode,srcReg,dstMode,dstReg)
// combination for one opcode base, the same nested-loop table-fill idiom
// the teacher uses for MOVE/ADD.
func registerDoubleOperand(base uint16, sz Size, fn sizedOpFunc) {
	for srcMode := uint16(0); srcMode < 8; srcMode++ {
		for srcReg := uint16(0); srcReg < 8; srcReg++ {
			for dstMode := uint16(0); dstMode < 8; dstMode++ {
				for dstReg := uint16(0); dstReg < 8; dstReg++ {
					opcode := base | srcMode<<9 | srcReg<<6 | dstMode<<3 | dstReg
					opcodeTable[opcode] = func(c *CPU) { fn(c, sz) }
				}
			}
		}
	}
}

// decodeDouble extracts the four operand fields from the current
// instruction word.
func decodeDouble(ir uint16) (srcMode, srcReg, dstMode, dstReg uint8) {
	srcMode = uint8((ir >> 9) & 7)
	srcReg = uint8((ir >> 6) & 7)
	dstMode = uint8((ir >> 3) & 7)
	dstReg = uint8(ir & 7)
	return
}

func opMOV(c *CPU, sz Size) {
	srcMode, srcReg, dstMode, dstReg := decodeDouble(c.ir)

	src, ok := c.resolveOperand(srcMode, srcReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	val, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	dst, ok := c.resolveOperand(dstMode, dstReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	if !dst.write(c, sz, val) {
		c.trap(vecBusError)
		return
	}

	c.setFlagsLogical(val, sz)
	runPostActions(src, dst)
	c.cycles += 2 + eaCycles(srcMode) + eaCycles(dstMode)
}

func opCMP(c *CPU, sz Size) {
	srcMode, srcReg, dstMode, dstReg := decodeDouble(c.ir)

	src, ok := c.resolveOperand(srcMode, srcReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	s, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	dst, ok := c.resolveOperand(dstMode, dstReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	d, ok := dst.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	result := d - s
	c.setFlagsCmp(s, d, result, sz)
	runPostActions(src, dst)
	c.cycles += 2 + eaCycles(srcMode) + eaCycles(dstMode)
}

func opBIT(c *CPU, sz Size) {
	srcMode, srcReg, dstMode, dstReg := decodeDouble(c.ir)

	src, ok := c.resolveOperand(srcMode, srcReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	s, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	dst, ok := c.resolveOperand(dstMode, dstReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	d, ok := dst.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	c.setFlagsLogical(s&d, sz)
	runPostActions(src, dst)
	c.cycles += 2 + eaCycles(srcMode) + eaCycles(dstMode)
}

func opBIC(c *CPU, sz Size) {
	doLogicalToDest(c, sz, func(s, d uint16) uint16 { return d &^ s })
}

func opBIS(c *CPU, sz Size) {
	doLogicalToDest(c, sz, func(s, d uint16) uint16 { return d | s })
}

// doLogicalToDest implements BIC/BIS: read both operands, combine, write
// back to the destination, set flags from the result.
func doLogicalToDest(c *CPU, sz Size, combine func(s, d uint16) uint16) {
	srcMode, srcReg, dstMode, dstReg := decodeDouble(c.ir)

	src, ok := c.resolveOperand(srcMode, srcReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	s, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	dst, ok := c.resolveOperand(dstMode, dstReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	d, ok := dst.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	result := combine(s, d)
	if !dst.write(c, sz, result) {
		c.trap(vecBusError)
		return
	}

	c.setFlagsLogical(result, sz)
	runPostActions(src, dst)
	c.cycles += 2 + eaCycles(srcMode) + eaCycles(dstMode)
}

func opADD(c *CPU, sz Size) {
	srcMode, srcReg, dstMode, dstReg := decodeDouble(c.ir)

	src, ok := c.resolveOperand(srcMode, srcReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	s, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	dst, ok := c.resolveOperand(dstMode, dstReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	d, ok := dst.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	result := d + s
	if !dst.write(c, sz, result) {
		c.trap(vecBusError)
		return
	}

	c.setFlagsAdd(s, d, result, sz)
	runPostActions(src, dst)
	c.cycles += 2 + eaCycles(srcMode) + eaCycles(dstMode)
}

func opSUB(c *CPU, sz Size) {
	srcMode, srcReg, dstMode, dstReg := decodeDouble(c.ir)

	src, ok := c.resolveOperand(srcMode, srcReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	s, ok := src.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	dst, ok := c.resolveOperand(dstMode, dstReg, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}
	d, ok := dst.read(c, sz)
	if !ok {
		c.trap(vecBusError)
		return
	}

	result := d - s
	if !dst.write(c, sz, result) {
		c.trap(vecBusError)
		return
	}

	c.setFlagsSub(s, d, result, sz)
	runPostActions(src, dst)
	c.cycles += 2 + eaCycles(srcMode) + eaCycles(dstMode)
}

// runPostActions invokes each operand's deferred autoincrement, source
// before destination, per the execution sequence in spec §4.3 step 7.
func runPostActions(ops ...operand) {
	for _, o := range ops {
		if o.post != nil {
			o.post()
		}
	}
}
