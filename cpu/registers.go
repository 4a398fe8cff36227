package cpu

import "dmgcore/mask"

// Registers is the LR35902 register file: eight 8-bit cells and two 16-bit
// cells, with logical 16-bit pair views over the 8-bit halves. Like the
// teacher's Cpu struct, this is a flat collection of fields rather than a
// name-indexed map — register access is never done by name lookup (spec.md
// §9's "avoid name-based dispatch").
type Registers struct {
	A, F    byte
	B, C    byte
	D, E    byte
	H, L    byte
	SP, PC  uint16
}

// Flag bit masks within F: Z occupies bit 7, N bit 6, H bit 5, C bit 4;
// bits 3..0 are always zero (spec.md §3 invariant iii). The flag getters
// below address the same bits through mask's MSB-first byteIndex (I1 is
// bit 7).
const (
	flagZBit = 1 << 7
	flagNBit = 1 << 6
	flagHBit = 1 << 5
	flagCBit = 1 << 4
)

func setBit(b byte, bit byte, v bool) byte {
	if v {
		return b | bit
	}
	return b &^ bit
}

// Zero reports the Z flag (bit 7 of F).
func (r *Registers) Zero() bool { return mask.IsSet(r.F, mask.I1) }

// Subtract reports the N flag (bit 6 of F).
func (r *Registers) Subtract() bool { return mask.IsSet(r.F, mask.I2) }

// HalfCarry reports the H flag (bit 5 of F).
func (r *Registers) HalfCarry() bool { return mask.IsSet(r.F, mask.I3) }

// Carry reports the C flag (bit 4 of F).
func (r *Registers) Carry() bool { return mask.IsSet(r.F, mask.I4) }

// SetZero, SetSubtract, SetHalfCarry and SetCarry write a single flag bit,
// leaving the others and the always-zero low nibble untouched.
func (r *Registers) SetZero(v bool)      { r.F = setBit(r.F, flagZBit, v) }
func (r *Registers) SetSubtract(v bool)  { r.F = setBit(r.F, flagNBit, v) }
func (r *Registers) SetHalfCarry(v bool) { r.F = setBit(r.F, flagHBit, v) }
func (r *Registers) SetCarry(v bool)     { r.F = setBit(r.F, flagCBit, v) }

// SetF assigns all four flags in one move, masking the low nibble to zero
// per spec.md §3's invariant, via mask.ClearLowNibble.
func (r *Registers) SetF(v byte) { r.F = mask.ClearLowNibble(v) }

// AF returns the 16-bit pair view (A<<8)|F.
func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }

// SetAF splits v into A (high byte) and F (low byte, masked to its valid
// nibble).
func (r *Registers) SetAF(v uint16) {
	r.A = byte(v >> 8)
	r.SetF(byte(v))
}

// BC returns the 16-bit pair view (B<<8)|C.
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }

// SetBC splits v into B (high) and C (low).
func (r *Registers) SetBC(v uint16) {
	r.B = byte(v >> 8)
	r.C = byte(v)
}

// DE returns the 16-bit pair view (D<<8)|E.
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }

// SetDE splits v into D (high) and E (low).
func (r *Registers) SetDE(v uint16) {
	r.D = byte(v >> 8)
	r.E = byte(v)
}

// HL returns the 16-bit pair view (H<<8)|L.
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetHL splits v into H (high) and L (low).
func (r *Registers) SetHL(v uint16) {
	r.H = byte(v >> 8)
	r.L = byte(v)
}
