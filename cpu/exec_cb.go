package cpu

import (
	"strconv"

	"dmgcore/mask"
)

// shiftKind is one CB-page rotate/shift's pure bit transform: given the
// source byte and the incoming carry flag (only meaningful for RL/RR), it
// returns the new byte and the carry bit that falls out.
type shiftKind func(v byte, carryIn bool) (result byte, carryOut bool)

func shiftRLC(v byte, _ bool) (byte, bool) {
	carryOut := v&0x80 != 0
	return v<<1 | boolBit(carryOut), carryOut
}

func shiftRL(v byte, carryIn bool) (byte, bool) {
	carryOut := v&0x80 != 0
	return v<<1 | boolBit(carryIn), carryOut
}

func shiftRRC(v byte, _ bool) (byte, bool) {
	carryOut := v&0x01 != 0
	return v>>1 | boolBit(carryOut)<<7, carryOut
}

func shiftRR(v byte, carryIn bool) (byte, bool) {
	carryOut := v&0x01 != 0
	return v>>1 | boolBit(carryIn)<<7, carryOut
}

// shiftSWAP exchanges the nibbles of v via mask.SwapNibbles.
func shiftSWAP(v byte, _ bool) (byte, bool) {
	return mask.SwapNibbles(v), false
}

// execShift applies one CB-page rotate/shift family uniformly over any
// operand (register or (HL)): the five families bound to it (RLC, RRC, RL,
// RR, SWAP) share the same Z/N/H/C pattern (Z from the result, N and H
// cleared, C from the bit that fell out). SWAP also clears C, which
// shiftSWAP reports directly.
func execShift(kind shiftKind) func(c *CPU, inst *Instruction) int {
	return func(c *CPU, inst *Instruction) int {
		op := inst.Operands[0]
		result, carryOut := kind(byte(op.Get(c)), c.Reg.Carry())
		op.Set(c, uint16(result))
		c.Reg.SetZero(result == 0)
		c.Reg.SetSubtract(false)
		c.Reg.SetHalfCarry(false)
		c.Reg.SetCarry(carryOut)
		return 0
	}
}

func execBIT(c *CPU, inst *Instruction) int {
	n := bitIndex(inst.Operands[0])
	v := byte(inst.Operands[1].Get(c))
	c.Reg.SetZero(v&(1<<n) == 0)
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(true)
	return 0
}

func execRES(c *CPU, inst *Instruction) int {
	n := bitIndex(inst.Operands[0])
	op := inst.Operands[1]
	op.Set(c, uint16(byte(op.Get(c)) &^ (1 << n)))
	return 0
}

func execSET(c *CPU, inst *Instruction) int {
	n := bitIndex(inst.Operands[0])
	op := inst.Operands[1]
	op.Set(c, uint16(byte(op.Get(c))|(1<<n)))
	return 0
}

// bitIndex recovers the literal bit number (0-7) the table encoded as a
// numeric constant operand token ("0".."7").
func bitIndex(op *Operand) uint {
	n, err := strconv.Atoi(op.String())
	if err != nil {
		panic("cpu: CB bit-index operand is not numeric: " + op.String())
	}
	return uint(n)
}
