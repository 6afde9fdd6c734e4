package cpu

import "testing"

func TestResetReadsSPAndPCFromLowMemory(t *testing.T) {
	bus := &testBus{}
	bus.loadWords(0, 0o1000, 0o2000)
	c := New(bus)
	c.Reset()

	if got := c.ReadRegister(6); got != 0o1000 {
		t.Errorf("SP = %#o, want %#o", got, 0o1000)
	}
	if got := c.ReadRegister(7); got != 0o2000 {
		t.Errorf("PC = %#o, want %#o", got, 0o2000)
	}
	if c.PSW() != 0o340 {
		t.Errorf("PSW = %#o, want %#o", c.PSW(), 0o340)
	}
}

func TestMovImmediateToRegister(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opMOVbase | 2<<9 | 7<<6 | 0<<3 | 0) // MOV #n,R0
	bus.loadWords(0o1000, instr, 0x1234)
	c := newTestCPU(bus, cpuState{R: [8]uint16{7: 0o1000}})

	c.Step()

	if got := c.ReadRegister(0); got != 0x1234 {
		t.Errorf("R0 = %#x, want %#x", got, 0x1234)
	}
	wantFlag(t, c, "Z", c.Z(), false)
	wantFlag(t, c, "N", c.N(), false)
	if got := c.ReadRegister(7); got != 0o1004 {
		t.Errorf("PC = %#o, want %#o (instruction + immediate word)", got, 0o1004)
	}
}

func TestMovRegisterToRegisterSetsZeroFlag(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opMOVbase | 0<<9 | 1<<6 | 0<<3 | 0) // MOV R1,R0
	bus.loadWords(0o1000, instr)
	c := newTestCPU(bus, cpuState{R: [8]uint16{0: 0o123, 1: 0, 7: 0o1000}, PSW: flagN})

	c.Step()

	if got := c.ReadRegister(0); got != 0 {
		t.Errorf("R0 = %#o, want 0", got)
	}
	wantFlag(t, c, "Z", c.Z(), true)
	wantFlag(t, c, "N", c.N(), false)
}

func TestSwabSplitsHighAndLowBytes(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opSWABop | 0<<3 | 0) // SWAB R0
	bus.loadWords(0o1000, instr)
	c := newTestCPU(bus, cpuState{R: [8]uint16{0: 0o377, 7: 0o1000}, PSW: 7}) // 0x00FF, C/V/Z initially set

	c.Step()

	if got := c.ReadRegister(0); got != 0xFF00 {
		t.Errorf("R0 = %#x, want %#x", got, 0xFF00)
	}
	// Result's low byte (what was the high byte) is 0x00: Z set, N clear.
	wantFlag(t, c, "Z", c.Z(), true)
	wantFlag(t, c, "N", c.N(), false)
	wantFlag(t, c, "V", c.V(), false)
	wantFlag(t, c, "C", c.C(), false)
}

func TestTstZeroAndSignCases(t *testing.T) {
	cases := []struct {
		name    string
		val     uint16
		wantZ   bool
		wantN   bool
	}{
		{"zero", 0, true, false},
		{"negative", 0x8000, false, true},
		{"positive", 1, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bus := &testBus{}
			instr := uint16(opTSTbase | 0<<3 | 0) // TST R0
			bus.loadWords(0o1000, instr)
			c := newTestCPU(bus, cpuState{R: [8]uint16{0: tc.val, 7: 0o1000}})

			c.Step()

			wantFlag(t, c, "Z", c.Z(), tc.wantZ)
			wantFlag(t, c, "N", c.N(), tc.wantN)
		})
	}
}

func TestBccTakenWhenCarryClear(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opBCCbase | 2) // BCC +2 words
	bus.loadWords(0o1000, instr)
	c := newTestCPU(bus, cpuState{R: [8]uint16{7: 0o1000}, PSW: 0})

	c.Step()

	wantPC := uint16(0o1000 + 2 + 2*2) // fetch advances 2, then branch of 2 words
	if got := c.ReadRegister(7); got != wantPC {
		t.Errorf("PC = %#o, want %#o", got, wantPC)
	}
	if c.Cycles() != 4 {
		t.Errorf("cycles = %d, want 4 (branch taken)", c.Cycles())
	}
}

func TestBccNotTakenWhenCarrySet(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opBCCbase | 2)
	bus.loadWords(0o1000, instr)
	c := newTestCPU(bus, cpuState{R: [8]uint16{7: 0o1000}, PSW: flagC})

	c.Step()

	if got := c.ReadRegister(7); got != 0o1002 {
		t.Errorf("PC = %#o, want %#o (branch not taken)", got, 0o1002)
	}
	if c.Cycles() != 2 {
		t.Errorf("cycles = %d, want 2 (branch not taken)", c.Cycles())
	}
}

func TestIndexModeMovReadsMemory(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opMOVbase | 6<<9 | 1<<6 | 0<<3 | 0) // MOV X(R1),R0
	bus.loadWords(0o1000, instr, 0o10)                  // extension word X = 010
	bus.mem[0o2010] = 0o52
	bus.mem[0o2011] = 0o100
	c := newTestCPU(bus, cpuState{R: [8]uint16{1: 0o2000, 7: 0o1000}})

	c.Step()

	want := uint16(0o25100) // 0o52<<8 | 0o100: the byte at the even address is the high byte
	if got := c.ReadRegister(0); got != want {
		t.Errorf("R0 = %#o, want %#o", got, want)
	}
	if got := c.ReadRegister(7); got != 0o1004 {
		t.Errorf("PC = %#o, want %#o (instruction word + extension word)", got, 0o1004)
	}
}

func TestAutoincrementAdvancesSourceRegister(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opMOVbase | 2<<9 | 1<<6 | 0<<3 | 0) // MOV (R1)+,R0
	bus.loadWords(0o1000, instr)
	bus.mem[0o2000] = 0o1
	bus.mem[0o2001] = 0o2
	c := newTestCPU(bus, cpuState{R: [8]uint16{1: 0o2000, 7: 0o1000}})

	c.Step()

	if got := c.ReadRegister(1); got != 0o2002 {
		t.Errorf("R1 = %#o, want %#o (advanced by word size)", got, 0o2002)
	}
}

func TestOddPCTrapsToBusErrorVector(t *testing.T) {
	bus := &testBus{}
	bus.loadWords(4, 0o3000, 0o340) // bus error vector: new PC/PSW
	c := newTestCPU(bus, cpuState{R: [8]uint16{6: 0o1000, 7: 0o1001}})

	c.Step()

	if c.Halted() {
		t.Fatal("CPU halted on a serviceable bus error trap")
	}
	if got := c.ReadRegister(7); got != 0o3000 {
		t.Errorf("PC = %#o, want %#o (vector)", got, 0o3000)
	}
	if got := c.ReadRegister(6); got != 0o1000-4 {
		t.Errorf("SP = %#o, want %#o (two words pushed)", got, 0o1000-4)
	}
}

func TestDoubleFaultHalts(t *testing.T) {
	fb := &faultingBus{faultAddr: 4}
	c := New(fb)
	c.SetState(Registers{R: [8]uint16{6: 0o1000, 7: 0o1001}})

	c.Step()

	if !c.Halted() {
		t.Fatal("expected CPU to halt on an unmapped trap vector (double fault)")
	}
}

func TestHaltStopsExecution(t *testing.T) {
	bus := &testBus{}
	bus.loadWords(0o1000, opHALT)
	c := newTestCPU(bus, cpuState{R: [8]uint16{7: 0o1000}})

	c.Step()
	if !c.Halted() {
		t.Fatal("expected CPU to be halted after HALT")
	}
	if got := c.Step(); got != 0 {
		t.Errorf("Step() after halt = %d, want 0", got)
	}
}

func TestJsrAndRts(t *testing.T) {
	bus := &testBus{}
	// JSR R5,100: link=5, dst mode 1 reg... use mode 1 (Rn) via R2 holding a subroutine address.
	jsr := uint16(opJSRbase | 5<<6 | 1<<3 | 2) // JSR R5,(R2)
	rts := uint16(opRTSbase | 5)               // RTS R5
	bus.loadWords(0o1000, jsr)
	bus.loadWords(0o2000, rts)
	c := newTestCPU(bus, cpuState{R: [8]uint16{2: 0o2000, 6: 0o1776, 7: 0o1000}})

	c.Step() // JSR
	if got := c.ReadRegister(7); got != 0o2000 {
		t.Errorf("PC after JSR = %#o, want %#o", got, 0o2000)
	}
	if got := c.ReadRegister(5); got != 0o1002 {
		t.Errorf("R5 (link) after JSR = %#o, want return address %#o", got, 0o1002)
	}

	c.Step() // RTS
	if got := c.ReadRegister(7); got != 0o1002 {
		t.Errorf("PC after RTS = %#o, want %#o", got, 0o1002)
	}
}

func TestRequestInterruptOutranksCurrentPriority(t *testing.T) {
	bus := &testBus{}
	bus.loadWords(0o100, 0o5000, 0o340) // interrupt vector at 0o100
	bus.loadWords(0o1000, opWAIT)
	c := newTestCPU(bus, cpuState{R: [8]uint16{6: 0o1000, 7: 0o1000}, PSW: 0})
	c.Step() // enters WAIT

	c.RequestInterrupt(4, 0o100)
	c.Step()

	if c.Waiting() {
		t.Fatal("expected WAIT to be cleared by a serviced interrupt")
	}
	if got := c.ReadRegister(7); got != 0o5000 {
		t.Errorf("PC = %#o, want %#o (interrupt vector)", got, 0o5000)
	}
}

func TestLowerPriorityInterruptIsIgnored(t *testing.T) {
	bus := &testBus{}
	bus.loadWords(0o1000, opWAIT)
	c := newTestCPU(bus, cpuState{R: [8]uint16{7: 0o1000}, PSW: 7 << priorityShift})

	c.Step() // enters WAIT at priority 7
	c.RequestInterrupt(3, 0o100)
	c.Step()

	if !c.Waiting() {
		t.Fatal("expected a priority-3 interrupt to be masked by priority 7")
	}
}

func TestAddSetsCarryAndOverflow(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opADDbase | 0<<9 | 1<<6 | 0<<3 | 0) // ADD R1,R0
	bus.loadWords(0o1000, instr)
	c := newTestCPU(bus, cpuState{R: [8]uint16{0: 0x7FFF, 1: 1, 7: 0o1000}})

	c.Step()

	if got := c.ReadRegister(0); got != 0x8000 {
		t.Errorf("R0 = %#x, want %#x", got, 0x8000)
	}
	wantFlag(t, c, "V", c.V(), true) // positive + positive = negative
	wantFlag(t, c, "C", c.C(), false)
	wantFlag(t, c, "N", c.N(), true)
}

func TestSobBranchesBackwardWhileNonzero(t *testing.T) {
	bus := &testBus{}
	instr := uint16(opSOBbase | 0<<6 | 1) // SOB R0,-2 (one word back)
	bus.loadWords(0o1010, instr)
	c := newTestCPU(bus, cpuState{R: [8]uint16{0: 2, 7: 0o1010}})

	c.Step()

	if got := c.ReadRegister(0); got != 1 {
		t.Errorf("R0 = %d, want 1", got)
	}
	if got := c.ReadRegister(7); got != 0o1010 {
		t.Errorf("PC = %#o, want %#o (branched back over the SOB word)", got, 0o1010)
	}
}

func TestCcOpsSetAndClearFlags(t *testing.T) {
	bus := &testBus{}
	sec := uint16(opCCbase | 0x10 | flagC) // SEC
	bus.loadWords(0o1000, sec)
	c := newTestCPU(bus, cpuState{R: [8]uint16{7: 0o1000}})

	c.Step()
	wantFlag(t, c, "C", c.C(), true)

	bus.loadWords(0o1002, uint16(opCCbase|flagC)) // CLC
	c.Step()
	wantFlag(t, c, "C", c.C(), false)
}
