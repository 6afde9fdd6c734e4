package cpu

// opFunc is the handler signature for a single PDP-11 instruction. The
// instruction word is already latched in c.ir when called.
type opFunc func(*CPU)

// opcodeTable is a 64K-entry lookup table indexed by the raw instruction
// word. nil entries decode as a reserved-opcode trap.
var opcodeTable [65536]opFunc
