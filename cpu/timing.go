package cpu

// eaCycles returns the addressing-mode surcharge added to an opcode's base
// execution time, per spec §3's invariant that cycles-accounted equals base
// time plus per-addressing-mode surcharges. These are an architectural
// short-cycle approximation (spec §1 disclaims true bus-timing accuracy),
// scaled by the number of extra memory accesses each mode performs: none
// for register-direct, one for a single indirection, two for a
// deferred/indexed access.
func eaCycles(mode uint8) uint64 {
	switch mode {
	case 0: // Register
		return 0
	case 1, 2, 4: // (Rn), (Rn)+, -(Rn): one memory access
		return 2
	case 3, 5: // @(Rn)+, @-(Rn): pointer fetch + operand access
		return 4
	case 6: // index: extension word fetch + operand access
		return 4
	case 7: // index deferred: extension word + pointer fetch + operand access
		return 6
	}
	return 0
}
