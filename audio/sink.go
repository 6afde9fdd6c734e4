package audio

// Sink is the host audio output, external to the CORE per spec §1/§6. The
// CORE only depends on this interface; sink/oto provides the concrete
// speaker-backed implementation.
type Sink interface {
	// Write delivers one buffer of signed 16-bit mono samples. Write may
	// block until the host has room for the data — that blocking is how
	// the emission thread paces itself to real time.
	Write(samples []int16) error
}
