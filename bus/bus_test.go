package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-retro/bk11core/device"
)

func TestRAMReadWriteRoundTrip(t *testing.T) {
	b := New()
	require.NoError(t, b.AddMemory(0o1000, make([]byte, 0o100), true))

	ok := b.WriteWord(0o1002, 0o123456&0xFFFF)
	require.True(t, ok)

	got, ok := b.ReadWord(0o1002)
	require.True(t, ok)
	assert.Equal(t, uint16(0o123456&0xFFFF), got)
}

func TestROMRejectsWrites(t *testing.T) {
	b := New()
	require.NoError(t, b.AddMemory(0o100000, []byte{0o1, 0o2, 0o3, 0o4}, false))

	assert.False(t, b.WriteWord(0o100000, 0x1234))
	assert.False(t, b.WriteByte(0o100000, 0x12))

	val, ok := b.ReadWord(0o100000)
	require.True(t, ok)
	assert.Equal(t, uint16(1)<<8|uint16(2), val)
}

func TestUnmappedAddressIsBusError(t *testing.T) {
	b := New()
	_, ok := b.ReadWord(0o177776)
	assert.False(t, ok)
}

func TestOverlappingRegionsRejected(t *testing.T) {
	b := New()
	require.NoError(t, b.AddMemory(0o1000, make([]byte, 0o100), true))

	err := b.AddMemory(0o1040, make([]byte, 0o100), true)
	assert.Error(t, err)
}

func TestAdjacentRegionsDoNotOverlap(t *testing.T) {
	b := New()
	require.NoError(t, b.AddMemory(0o1000, make([]byte, 0o100), true))
	err := b.AddMemory(0o1100, make([]byte, 0o100), true)
	assert.NoError(t, err)
}

type latchDevice struct {
	addr uint16
	val  uint16
}

func (d *latchDevice) Addresses() []uint16 { return []uint16{d.addr, d.addr + 1} }
func (d *latchDevice) Init(uint64)         { d.val = 0 }
func (d *latchDevice) Read(_ uint64, _ uint16) uint16 {
	return d.val
}
func (d *latchDevice) Write(_ uint64, _ bool, _ uint16, val uint16) { d.val = val }
func (d *latchDevice) SaveState() device.Bag                        { return nil }
func (d *latchDevice) RestoreState(device.Bag)                     {}

func TestDeviceRegionDispatchesReadsAndWrites(t *testing.T) {
	b := New()
	dev := &latchDevice{addr: 0o177560}
	require.NoError(t, b.AddDevice(dev))

	ok := b.WriteWord(0o177560, 0o5252)
	require.True(t, ok)

	got, ok := b.ReadWord(0o177560)
	require.True(t, ok)
	assert.Equal(t, uint16(0o5252), got)
}

func TestDeviceByteReadSplitsWord(t *testing.T) {
	b := New()
	dev := &latchDevice{addr: 0o177560, val: 0o1234}
	require.NoError(t, b.AddDevice(dev))

	hi, ok := b.ReadByte(0o177560)
	require.True(t, ok)
	lo, ok := b.ReadByte(0o177561)
	require.True(t, ok)

	assert.Equal(t, byte(0o1234>>8), hi)
	assert.Equal(t, byte(0o1234&0xFF), lo)
}

func TestInitCallsDeviceInit(t *testing.T) {
	b := New()
	dev := &latchDevice{addr: 0o177560, val: 0o7777}
	require.NoError(t, b.AddDevice(dev))

	b.Init(0)

	got, _ := b.ReadWord(0o177560)
	assert.Equal(t, uint16(0), got)
}
