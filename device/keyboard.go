package device

// Keyboard is a minimal stand-in for the BK-0010 keyboard matrix: it
// claims one register word holding the last scan code, which any write
// clears. Real
// key-matrix scanning is a host/GUI concern, out of CORE scope; this
// exists so the bus has a real occupant to dispatch to, and so a host can
// poke scan codes in through SetScanCode for its own input handling.
type Keyboard struct {
	addr     uint16
	scanCode uint16
}

func NewKeyboard(addr uint16) *Keyboard {
	return &Keyboard{addr: addr}
}

func (k *Keyboard) Addresses() []uint16 { return []uint16{k.addr, k.addr + 1} }

func (k *Keyboard) Init(cpuTime uint64) { k.scanCode = 0 }

func (k *Keyboard) Read(cpuTime uint64, addr uint16) uint16 { return k.scanCode }

func (k *Keyboard) Write(cpuTime uint64, byteMode bool, addr uint16, val uint16) {
	// The real register is read-mostly from software's perspective; a
	// write acknowledges/clears the pending scan code.
	k.scanCode = 0
}

// SetScanCode is called by the host input layer (outside the CORE) to
// deliver a key event.
func (k *Keyboard) SetScanCode(code uint16) { k.scanCode = code }

func (k *Keyboard) SaveState() Bag {
	return Bag{"scanCode": {byte(k.scanCode >> 8), byte(k.scanCode)}}
}

func (k *Keyboard) RestoreState(b Bag) {
	v, ok := b["scanCode"]
	if !ok || len(v) < 2 {
		return
	}
	k.scanCode = uint16(v[0])<<8 | uint16(v[1])
}
