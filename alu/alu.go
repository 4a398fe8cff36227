// Package alu implements the pure arithmetic the Sharp LR35902 needs to
// compute its four status flags (Z, N, H, C). Every function here is a pure
// value transform: given operands, it returns the truncated result plus the
// half-carry/carry/zero bits that the calling instruction handler is
// responsible for folding into F. None of these can fail.
package alu

// Add8 computes p+q+c as an 8-bit value. h is the carry out of bit 3
// (nibble carry), c is the carry out of bit 7, z is whether the result is
// zero.
func Add8(p, q, carryIn byte) (result byte, h, c, z bool) {
	sum := uint16(p) + uint16(q) + uint16(carryIn)
	result = byte(sum)
	h = (p&0x0F)+(q&0x0F)+carryIn > 0x0F
	c = sum > 0xFF
	z = result == 0
	return
}

// Sub8 computes p-q-c as an 8-bit value. h is a borrow out of bit 4, c is a
// borrow out of bit 8 (i.e. p < q+c).
func Sub8(p, q, carryIn byte) (result byte, h, c, z bool) {
	result = p - q - carryIn
	h = (p & 0x0F) < (q&0x0F)+carryIn
	c = uint16(p) < uint16(q)+uint16(carryIn)
	z = result == 0
	return
}

// Add16 computes p+q as a 16-bit value. h is the carry out of bit 11, c is
// the carry out of bit 15. Used by ADD HL,rr; Z is never consulted by that
// family (spec: "— 0 H12 C16"), so it is not returned.
func Add16(p, q uint16) (result uint16, h, c bool) {
	sum := uint32(p) + uint32(q)
	result = uint16(sum)
	h = (p&0x0FFF)+(q&0x0FFF) > 0x0FFF
	c = sum > 0xFFFF
	return
}

// Add16E adds a signed-extended byte q to a 16-bit base p, the way LDHL
// SP,r8 and ADD SP,r8 do. H and C are computed at the bit-3/bit-7
// positions, as if the low byte of p were added to q as an 8-bit value —
// NOT at bits 11/15, despite the 16-bit result. This asymmetry is
// deliberate hardware behavior (spec.md §4.1, §9 design note a) and must
// not be "corrected" to the Add16 bit positions.
func Add16E(p uint16, q byte) (result uint16, h, c bool) {
	signed := Signed(q)
	result = uint16(int32(p) + int32(signed))
	lo := byte(p)
	h = (lo&0x0F)+(q&0x0F) > 0x0F
	c = uint16(lo)+uint16(q) > 0xFF
	return
}

// Signed sign-extends a byte to a 16-bit two's-complement value.
func Signed(v byte) int16 {
	return int16(int8(v))
}
