package cpu

// Trap/interrupt and miscellaneous control instructions: HALT, WAIT, RTI,
// BPT, IOT, RESET, RTT, EMT, TRAP.

const (
	opHALT  = 0o000000
	opWAIT  = 0o000001
	opRTI   = 0o000002
	opBPT   = 0o000003
	opIOT   = 0o000004
	opRESET = 0o000005
	opRTT   = 0o000006
	opEMT   = 0o104000 // + nn (0-0o377)
	opTRAP  = 0o104400 // + nn (0-0o377)
)

// Resettable is optionally implemented by a Bus whose devices need to know
// about a software RESET instruction (distinct from a full CPU Reset).
type Resettable interface {
	Reset()
}

func init() {
	opcodeTable[opHALT] = opHALTfn
	opcodeTable[opWAIT] = opWAITfn
	opcodeTable[opRTI] = opRTIfn
	opcodeTable[opBPT] = opBPTfn
	opcodeTable[opIOT] = opIOTfn
	opcodeTable[opRESET] = opRESETfn
	opcodeTable[opRTT] = opRTTfn

	for nn := uint16(0); nn < 0o400; nn++ {
		opcodeTable[opEMT|nn] = opEMTfn
		opcodeTable[opTRAP|nn] = opTRAPfn
	}
}

// opHALTfn stops instruction execution. The host observes this via
// CPU.Halted; no trap is taken.
func opHALTfn(c *CPU) {
	c.halted = true
	c.cycles += 4
}

// opWAITfn idles the CPU until an interrupt is serviced.
func opWAITfn(c *CPU) {
	c.waiting = true
	c.cycles += 4
}

func opRTIfn(c *CPU) {
	returnFromTrap(c)
	c.cycles += 6
}

// opRTTfn behaves identically to RTI in this CORE: the real PDP-11
// distinction (RTT suppresses an immediate trace trap on the restored PSW)
// has no effect here since the T (trace) bit is not modeled.
func opRTTfn(c *CPU) {
	returnFromTrap(c)
	c.cycles += 6
}

func returnFromTrap(c *CPU) {
	pc, ok := c.popWord()
	if !ok {
		c.trap(vecBusError)
		return
	}
	psw, ok := c.popWord()
	if !ok {
		c.trap(vecBusError)
		return
	}
	c.reg.R[7] = pc
	c.reg.PSW = psw
}

func opBPTfn(c *CPU) { c.trap(vecBPT) }
func opIOTfn(c *CPU) { c.trap(vecIOT) }

// opEMTfn and opTRAPfn always trap through their fixed vector; the
// low-byte argument (nn) is left in the instruction word for the trap
// handler to read back out of memory at the word just before the saved PC,
// exactly as real PDP-11 firmware does.
func opEMTfn(c *CPU)  { c.trap(vecEMT) }
func opTRAPfn(c *CPU) { c.trap(vecTRAP) }

func opRESETfn(c *CPU) {
	if r, ok := c.bus.(Resettable); ok {
		r.Reset()
	}
	c.cycles += 20
}
