package device

// Video is a minimal stand-in for the BK-0010 video-sync register: it
// claims one status word whose bits report frame/line sync state. Actual
// pixel generation is a host/GUI concern, out of CORE scope (spec §1); the
// CORE only needs somewhere for software polling the sync bits to read
// from and write to without faulting.
type Video struct {
	addr  uint16
	value uint16
}

func NewVideo(addr uint16) *Video {
	return &Video{addr: addr}
}

func (v *Video) Addresses() []uint16 { return []uint16{v.addr, v.addr + 1} }

func (v *Video) Init(cpuTime uint64) { v.value = 0 }

func (v *Video) Read(cpuTime uint64, addr uint16) uint16 { return v.value }

func (v *Video) Write(cpuTime uint64, byteMode bool, addr uint16, val uint16) {
	v.value = val
}

// SetSyncBits is called by the host display layer to report frame/line
// sync state polled by software.
func (v *Video) SetSyncBits(bits uint16) { v.value = bits }

func (v *Video) SaveState() Bag {
	return Bag{"value": {byte(v.value >> 8), byte(v.value)}}
}

func (v *Video) RestoreState(b Bag) {
	val, ok := b["value"]
	if !ok || len(val) < 2 {
		return
	}
	v.value = uint16(val[0])<<8 | uint16(val[1])
}
