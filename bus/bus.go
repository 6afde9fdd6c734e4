// Package bus implements the BK-0010/0011 CORE's flat 16-bit memory map:
// non-overlapping RAM/ROM/device regions looked up by address, with a
// bus-error-as-(value, false) result rather than an out-of-band sentinel.
package bus

import (
	"fmt"
	"log"
	"sort"

	"github.com/go-retro/bk11core/cpu"
	"github.com/go-retro/bk11core/device"
)

// Kind distinguishes how a Region is backed.
type Kind uint8

const (
	RAM Kind = iota
	ROM
	DeviceKind
)

// Region is a contiguous, non-overlapping slice of the 16-bit address
// space. RAM and ROM regions are backed by plain buffers (reads succeed on
// both, except a word access that runs past the region's end; writes fail
// on ROM); device regions delegate every access to a device.Device.
type Region struct {
	Start  uint16
	Length uint16
	Kind   Kind

	buf []byte // RAM / ROM
	dev device.Device
}

func (r *Region) end() uint32 { return uint32(r.Start) + uint32(r.Length) }

func (r *Region) contains(addr uint16) bool {
	return uint32(addr) >= uint32(r.Start) && uint32(addr) < r.end()
}

// Bus routes byte/word reads and writes to the region claiming each
// address. Regions are kept sorted by start address for O(log N) lookup.
type Bus struct {
	regions []*Region
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// AddMemory installs a RAM (writable=true) or ROM (writable=false) region
// starting at start, backed by a copy of data. Returns an error if the
// region would overlap an existing one.
func (b *Bus) AddMemory(start uint16, data []byte, writable bool) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	kind := ROM
	if writable {
		kind = RAM
	}
	return b.insert(&Region{Start: start, Length: uint16(len(data)), Kind: kind, buf: buf})
}

// AddDevice installs dev at the contiguous range spanned by its declared
// addresses (lowest to highest, inclusive).
func (b *Bus) AddDevice(dev device.Device) error {
	addrs := dev.Addresses()
	if len(addrs) == 0 {
		return fmt.Errorf("bus: device %T claims no addresses", dev)
	}
	lo, hi := addrs[0], addrs[0]
	for _, a := range addrs {
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}
	return b.insert(&Region{Start: lo, Length: hi - lo + 1, Kind: DeviceKind, dev: dev})
}

// insert places r in sorted order, rejecting any overlap with an existing
// region (spec §3 invariant: "no two memory regions overlap").
func (b *Bus) insert(r *Region) error {
	idx := sort.Search(len(b.regions), func(i int) bool { return b.regions[i].Start >= r.Start })

	if idx > 0 {
		prev := b.regions[idx-1]
		if uint32(prev.Start)+uint32(prev.Length) > uint32(r.Start) {
			return fmt.Errorf("bus: region [%#o,%#o) overlaps existing region [%#o,%#o)",
				r.Start, r.end(), prev.Start, prev.end())
		}
	}
	if idx < len(b.regions) {
		next := b.regions[idx]
		if uint32(r.Start)+uint32(r.Length) > uint32(next.Start) {
			return fmt.Errorf("bus: region [%#o,%#o) overlaps existing region [%#o,%#o)",
				r.Start, r.end(), next.Start, next.end())
		}
	}

	b.regions = append(b.regions, nil)
	copy(b.regions[idx+1:], b.regions[idx:])
	b.regions[idx] = r
	return nil
}

// find returns the region claiming addr, if any.
func (b *Bus) find(addr uint16) (*Region, bool) {
	idx := sort.Search(len(b.regions), func(i int) bool { return b.regions[i].end() > uint32(addr) })
	if idx < len(b.regions) && b.regions[idx].contains(addr) {
		return b.regions[idx], true
	}
	return nil, false
}

// Devices returns every device region's Device, in address order.
func (b *Bus) Devices() []device.Device {
	var out []device.Device
	for _, r := range b.regions {
		if r.Kind == DeviceKind {
			out = append(out, r.dev)
		}
	}
	return out
}

// Init calls Init(cpuTime) on every device region, per spec §6's
// "reset() — resets CPU; devices receive an init callback with cpu_time=0".
func (b *Bus) Init(cpuTime uint64) {
	for _, dev := range b.Devices() {
		dev.Init(cpuTime)
	}
}

// ReadWord implements cpu.Bus.
func (b *Bus) ReadWord(addr uint16) (uint16, bool) { return b.ReadWordAt(0, addr) }

// ReadByte implements cpu.Bus.
func (b *Bus) ReadByte(addr uint16) (byte, bool) { return b.ReadByteAt(0, addr) }

// WriteWord implements cpu.Bus.
func (b *Bus) WriteWord(addr uint16, val uint16) bool { return b.WriteWordAt(0, addr, val) }

// WriteByte implements cpu.Bus.
func (b *Bus) WriteByte(addr uint16, val byte) bool { return b.WriteByteAt(0, addr, val) }

// ReadWordAt implements cpu.TimedBus.
func (b *Bus) ReadWordAt(cpuTime uint64, addr uint16) (uint16, bool) {
	r, ok := b.find(addr)
	if !ok {
		log.Printf("[bus] bus error: unmapped read at %06o", addr)
		return 0, false
	}
	off := addr - r.Start
	switch r.Kind {
	case RAM, ROM:
		if int(off)+1 >= len(r.buf) {
			log.Printf("[bus] bus error: word read at %06o crosses region end", addr)
			return 0, false
		}
		return uint16(r.buf[off])<<8 | uint16(r.buf[off+1]), true
	case DeviceKind:
		return r.dev.Read(cpuTime, addr), true
	}
	return 0, false
}

// ReadByteAt implements cpu.TimedBus.
func (b *Bus) ReadByteAt(cpuTime uint64, addr uint16) (byte, bool) {
	r, ok := b.find(addr)
	if !ok {
		log.Printf("[bus] bus error: unmapped read at %06o", addr)
		return 0, false
	}
	off := addr - r.Start
	switch r.Kind {
	case RAM, ROM:
		return r.buf[off], true
	case DeviceKind:
		word := deviceWordAt(r.dev, cpuTime, addr)
		if addr&1 == 0 {
			return byte(word >> 8), true
		}
		return byte(word), true
	}
	return 0, false
}

// WriteWordAt implements cpu.TimedBus.
func (b *Bus) WriteWordAt(cpuTime uint64, addr uint16, val uint16) bool {
	r, ok := b.find(addr)
	if !ok {
		log.Printf("[bus] bus error: unmapped write at %06o", addr)
		return false
	}
	off := addr - r.Start
	switch r.Kind {
	case RAM:
		if int(off)+1 >= len(r.buf) {
			log.Printf("[bus] bus error: word write at %06o crosses region end", addr)
			return false
		}
		r.buf[off] = byte(val >> 8)
		r.buf[off+1] = byte(val)
		return true
	case ROM:
		log.Printf("[bus] bus error: write to ROM at %06o", addr)
		return false
	case DeviceKind:
		r.dev.Write(cpuTime, false, addr, val)
		return true
	}
	return false
}

// WriteByteAt implements cpu.TimedBus.
func (b *Bus) WriteByteAt(cpuTime uint64, addr uint16, val byte) bool {
	r, ok := b.find(addr)
	if !ok {
		log.Printf("[bus] bus error: unmapped write at %06o", addr)
		return false
	}
	off := addr - r.Start
	switch r.Kind {
	case RAM:
		r.buf[off] = val
		return true
	case ROM:
		log.Printf("[bus] bus error: write to ROM at %06o", addr)
		return false
	case DeviceKind:
		r.dev.Write(cpuTime, true, addr, uint16(val))
		return true
	}
	return false
}

// deviceWordAt reads the word-aligned value underlying a device byte
// access (the low address of the pair the byte belongs to).
func deviceWordAt(dev device.Device, cpuTime uint64, addr uint16) uint16 {
	aligned := addr &^ 1
	return dev.Read(cpuTime, aligned)
}

var (
	_ cpu.Bus      = (*Bus)(nil)
	_ cpu.TimedBus = (*Bus)(nil)
)
