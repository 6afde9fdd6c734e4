package cpu

// Branch instructions: high byte identifies the opcode/condition, low byte
// is a signed 8-bit displacement counted in words from PC (already
// advanced past the instruction word). Encoding bases below are the
// standard PDP-11 octal opcode values; each spans 0o400 (256) low-byte
// displacement values.

const (
	opBRbase   = 0o000400
	opBNEbase  = 0o001000
	opBEQbase  = 0o001400
	opBGEbase  = 0o002000
	opBLTbase  = 0o002400
	opBGTbase  = 0o003000
	opBLEbase  = 0o003400
	opBPLbase  = 0o100000
	opBMIbase  = 0o100400
	opBHIbase  = 0o101000
	opBLOSbase = 0o101400
	opBVCbase  = 0o102000
	opBVSbase  = 0o102400
	opBCCbase  = 0o103000
	opBCSbase  = 0o103400
)

// branchCond is a predicate over CPU condition flags, evaluated to decide
// whether a branch is taken.
type branchCond func(c *CPU) bool

func init() {
	registerBranch(opBRbase, func(c *CPU) bool { return true })
	registerBranch(opBNEbase, func(c *CPU) bool { return !c.Z() })
	registerBranch(opBEQbase, func(c *CPU) bool { return c.Z() })
	registerBranch(opBGEbase, func(c *CPU) bool { return c.N() == c.V() })
	registerBranch(opBLTbase, func(c *CPU) bool { return c.N() != c.V() })
	registerBranch(opBGTbase, func(c *CPU) bool { return !c.Z() && c.N() == c.V() })
	registerBranch(opBLEbase, func(c *CPU) bool { return c.Z() || c.N() != c.V() })
	registerBranch(opBPLbase, func(c *CPU) bool { return !c.N() })
	registerBranch(opBMIbase, func(c *CPU) bool { return c.N() })
	registerBranch(opBHIbase, func(c *CPU) bool { return !c.C() && !c.Z() })
	registerBranch(opBLOSbase, func(c *CPU) bool { return c.C() || c.Z() })
	registerBranch(opBVCbase, func(c *CPU) bool { return !c.V() })
	registerBranch(opBVSbase, func(c *CPU) bool { return c.V() })
	registerBranch(opBCCbase, func(c *CPU) bool { return !c.C() })
	registerBranch(opBCSbase, func(c *CPU) bool { return c.C() })
}

func registerBranch(base uint16, cond branchCond) {
	for disp := uint16(0); disp < 0o400; disp++ {
		opcode := base | disp
		opcodeTable[opcode] = func(c *CPU) { opBranch(c, cond) }
	}
}

func opBranch(c *CPU, cond branchCond) {
	disp := int32(int8(c.ir & 0xFF))
	if cond(c) {
		c.reg.R[7] = uint16(int32(c.reg.R[7]) + disp*2)
		c.cycles += 4
	} else {
		c.cycles += 2
	}
}
