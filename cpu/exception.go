package cpu

import "log"

// PDP-11 trap vectors (octal, per the architecture and spec §4.5).
const (
	vecBusError       = 0o4  // unmapped/odd-address access, or odd PC on fetch
	vecReservedOpcode = 0o10 // decode found no table entry
	vecBPT            = 0o14
	vecIOT            = 0o20
	vecEMT            = 0o30
	vecTRAP           = 0o34
)

// trap pushes PSW then PC (each via predecrement of SP), reads the new PC
// and PSW from the two words at the given vector, and transfers control
// there. If the vector itself is unmapped, the CPU halts (a double fault on
// an uninitialized vector has no defined recovery).
func (c *CPU) trap(vector uint16) {
	pc := c.reg.R[7]
	psw := c.reg.PSW

	if !c.pushWord(psw) || !c.pushWord(pc) {
		log.Printf("[cpu] double fault: stack push failed servicing trap %03o", vector)
		c.halted = true
		return
	}

	newPC, ok := c.readWord(vector)
	if !ok {
		log.Printf("[cpu] double fault: vector %03o unmapped", vector)
		c.halted = true
		return
	}
	newPSW, ok := c.readWord(vector + 2)
	if !ok {
		log.Printf("[cpu] double fault: vector %03o+2 unmapped", vector)
		c.halted = true
		return
	}

	c.reg.R[7] = newPC
	c.reg.PSW = newPSW
	c.waiting = false
	c.cycles += 4
}
