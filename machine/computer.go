// Package machine wires together the cpu, bus, device, and audio packages
// into the BK-0010/0011 CORE's top-level Computer: construct, populate
// with memory and devices, reset, then run.
package machine

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/go-retro/bk11core/audio"
	"github.com/go-retro/bk11core/bus"
	"github.com/go-retro/bk11core/cpu"
	"github.com/go-retro/bk11core/device"
)

// defaultClockHz is the BK-0010's nominal CPU clock frequency.
const defaultClockHz = 3_000_000

// Computer is the CORE's value-oriented top-level object: it carries its
// whole state (per DESIGN NOTES §9, "there is no global state"), so
// multiple independent instances can coexist in a single process, e.g.
// for parallel tests.
type Computer struct {
	cpu      *cpu.CPU
	bus      *bus.Bus
	synth    *audio.Synth
	clockHz  uint64
	wallBase time.Time
	pace     bool
}

// New constructs an empty Computer. Call AddMemory/AddDevice to populate
// it, then Reset before executing.
func New() *Computer {
	b := bus.New()
	c := &Computer{
		bus:     b,
		cpu:     cpu.New(b),
		clockHz: defaultClockHz,
		pace:    true,
	}
	return c
}

// SetClockFrequency sets the CPU clock used to convert simulated cycles to
// nanoseconds for ExecuteFor pacing and audio synthesis. Must be called
// before AttachAudio/ExecuteFor to take effect.
func (c *Computer) SetClockFrequency(hz uint64) {
	if hz > 0 {
		c.clockHz = hz
	}
}

// SetPacing enables or disables wall-clock pacing in ExecuteFor. Disabled
// by default in tests that want to run as fast as possible; enabled by
// default otherwise.
func (c *Computer) SetPacing(enabled bool) { c.pace = enabled }

// AddMemory installs a RAM (writable) or ROM (read-only) region.
func (c *Computer) AddMemory(start uint16, data []byte, writable bool) error {
	return c.bus.AddMemory(start, data, writable)
}

// AddDevice installs a memory-mapped device.
func (c *Computer) AddDevice(dev device.Device) error {
	return c.bus.AddDevice(dev)
}

// AttachAudio wires a Sink to the computer's PCM output via an audio.Ring
// fed by a device.SysReg registered separately, and starts the emission
// thread. Call after AddDevice has registered the system register built
// from the same Ring via device.NewSysReg.
func (c *Computer) AttachAudio(ring *audio.Ring, sink audio.Sink, sampleRate uint64, bufferSamples int) {
	c.synth = audio.NewSynth(ring, sink, c.clockHz, sampleRate, bufferSamples)
	c.synth.Start(c.cpu.Cycles())
}

// StopAudio joins the emission thread, if one was started.
func (c *Computer) StopAudio() {
	if c.synth != nil {
		c.synth.Stop()
	}
}

// Reset resets the CPU (which reads SP/PC from low memory, per cpu.Reset)
// and initializes every device with cpu_time=0, per spec §6.
func (c *Computer) Reset() {
	c.bus.Init(0)
	c.cpu.Reset()
	c.wallBase = time.Now()
}

// Cpu returns the underlying CPU for observation (registers, PSW, halted,
// etc.) — the one place tests and the CLI reach past Computer's API.
func (c *Computer) Cpu() *cpu.CPU { return c.cpu }

// ExecuteSingleInstruction steps the CPU once, ticks every device.Ticker
// (the line-clock timer) with the CPU's current time, and returns the
// cycles consumed.
func (c *Computer) ExecuteSingleInstruction() int {
	cycles := c.cpu.Step()

	now := c.cpu.Cycles()
	for _, dev := range c.bus.Devices() {
		if t, ok := dev.(device.Ticker); ok {
			t.Tick(now, c.cpu)
		}
	}

	return cycles
}

// ExecuteFor runs instructions until at least nanos of simulated CPU time
// have elapsed (converted via the configured clock frequency), per spec
// §6. If pacing is enabled, it sleeps at the single well-defined point
// spec §5 allows — after an instruction completes, never mid-instruction
// — so simulated time never runs far ahead of the wall clock.
func (c *Computer) ExecuteFor(nanos uint64) {
	targetCycles := nanos * c.clockHz / 1_000_000_000
	start := c.cpu.Cycles()

	for c.cpu.Cycles()-start < targetCycles {
		if c.cpu.Halted() {
			return
		}
		c.ExecuteSingleInstruction()

		if c.pace {
			c.paceToWallClock()
		}
	}
}

func (c *Computer) paceToWallClock() {
	simulatedNanos := c.cpu.Cycles() * 1_000_000_000 / c.clockHz
	wallElapsed := time.Since(c.wallBase)
	ahead := time.Duration(simulatedNanos) - wallElapsed
	if ahead > 0 {
		time.Sleep(ahead)
	}
}

// state is the on-disk envelope combining CPU and device state, composed
// per spec §6's opaque save/restore contract.
type state struct {
	CPU     []byte
	Devices []deviceState
}

type deviceState struct {
	Addr uint16
	Bag  device.Bag
}

// SaveState serializes the CPU and every device's Bag into one opaque blob.
func (c *Computer) SaveState() ([]byte, error) {
	cpuBuf := make([]byte, c.cpu.SerializeSize())
	if err := c.cpu.Serialize(cpuBuf); err != nil {
		return nil, err
	}

	st := state{CPU: cpuBuf}
	for _, dev := range c.bus.Devices() {
		addrs := dev.Addresses()
		if len(addrs) == 0 {
			continue
		}
		st.Devices = append(st.Devices, deviceState{Addr: addrs[0], Bag: dev.SaveState()})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(st); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RestoreState restores CPU and device state previously produced by
// SaveState. Devices are matched to their saved Bag by the first address
// they claim.
func (c *Computer) RestoreState(blob []byte) error {
	var st state
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&st); err != nil {
		return err
	}
	if err := c.cpu.Deserialize(st.CPU); err != nil {
		return err
	}

	byAddr := make(map[uint16]device.Bag, len(st.Devices))
	for _, ds := range st.Devices {
		byAddr[ds.Addr] = ds.Bag
	}
	for _, dev := range c.bus.Devices() {
		addrs := dev.Addresses()
		if len(addrs) == 0 {
			continue
		}
		if bag, ok := byAddr[addrs[0]]; ok {
			dev.RestoreState(bag)
		}
	}
	return nil
}
