package cpu

// checkInterrupt tests whether a pending device interrupt outranks the
// CPU's current priority and, if so, services it. Called at the start of
// every Step, between instructions, per spec §4.5/§5. Reports whether an
// interrupt was serviced, so Step can end its turn there rather than also
// fetching and executing the first instruction of the handler.
func (c *CPU) checkInterrupt() bool {
	if c.pendingPriority == 0 {
		return false
	}
	if c.pendingPriority > c.priority() {
		c.processInterrupt()
		return true
	}
	return false
}

// processInterrupt services the pending interrupt: clears it and takes a
// trap through its vector, which pushes PSW and PC and loads the new PC and
// PSW from the vector. The new priority is whatever the vector's PSW word
// holds; the interrupt's own priority is not written into the PSW.
func (c *CPU) processInterrupt() {
	vector := c.pendingVector
	c.pendingPriority = 0
	c.pendingVector = 0
	c.waiting = false

	c.trap(vector)
}
