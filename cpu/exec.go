package cpu

import "dmgcore/alu"

// registerFamilies binds every opcode-table mnemonic to its handler. It runs
// once, before the table itself is built, so mustBuildInstruction can look
// family up by name while parsing opcodes.yml and the generated blocks.
func registerFamilies() {
	families = map[string]family{
		"nop":  {exec: execNop},
		"stop": {exec: execStop},
		"halt": {exec: execHalt},
		"di":   {exec: execDI},
		"ei":   {exec: execEI},

		"ld":         {exec: execLD},
		"ld16":       {exec: execLD},
		"ldsp_a16":   {exec: execLD},
		"ldsp_hl":    {exec: execLD},
		"ldhl_sp_r8": {exec: execLDHLSPR8},
		"addsp_r8":   {exec: execADDSPR8},
		"ldi":        {exec: execLDI},
		"ldd":        {exec: execLDD},

		"push": {exec: execPUSH},
		"pop":  {exec: execPOP},

		"inc8":  {exec: execINC8},
		"dec8":  {exec: execDEC8},
		"inc16": {exec: execINC16},
		"dec16": {exec: execDEC16},
		"addhl": {exec: execADDHL},

		"add": {exec: execALU(addOp)},
		"adc": {exec: execALU(adcOp)},
		"sub": {exec: execALU(subOp)},
		"sbc": {exec: execALU(sbcOp)},
		"and": {exec: execALU(andOp)},
		"xor": {exec: execALU(xorOp)},
		"or":  {exec: execALU(orOp)},
		"cp":  {exec: execALU(cpOp)},

		"rlca": {exec: execRLCA},
		"rla":  {exec: execRLA},
		"rrca": {exec: execRRCA},
		"rra":  {exec: execRRA},
		"daa":  {unimplemented: true},
		"cpl":  {exec: execCPL},
		"scf":  {exec: execSCF},
		"ccf":  {exec: execCCF},

		"jp":    {controlFlow: true, exec: execJP},
		"jp_hl": {controlFlow: true, exec: execJPHL},
		"jp_cc": {controlFlow: true, exec: execJPCC},
		"jr":    {controlFlow: true, exec: execJR},
		"jr_cc": {controlFlow: true, exec: execJRCC},

		"call":    {controlFlow: true, exec: execCALL},
		"call_cc": {controlFlow: true, exec: execCALLCC},
		"ret":     {controlFlow: true, exec: execRET},
		"ret_cc":  {controlFlow: true, exec: execRETCC},
		"reti":    {controlFlow: true, exec: execRETI},
		"rst":     {controlFlow: true, exec: execRST},

		"rlc":  {exec: execShift(shiftRLC)},
		"rrc":  {exec: execShift(shiftRRC)},
		"rl":   {exec: execShift(shiftRL)},
		"rr":   {exec: execShift(shiftRR)},
		"sla":  {unimplemented: true},
		"sra":  {unimplemented: true},
		"swap": {exec: execShift(shiftSWAP)},
		"srl":  {unimplemented: true},

		"bit": {exec: execBIT},
		"res": {exec: execRES},
		"set": {exec: execSET},
	}
}

func execNop(c *CPU, inst *Instruction) int { return 0 }

// execStop sets the stopped latch of spec.md's running/halted/stopped state
// machine. The emulator models no joypad input, so a stopped CPU resumes
// only through an interrupt dispatch in Step (IME set) or a call to Resume.
func execStop(c *CPU, inst *Instruction) int {
	c.stopped = true
	return 0
}

func execHalt(c *CPU, inst *Instruction) int {
	c.halted = true
	return 0
}

func execDI(c *CPU, inst *Instruction) int {
	c.ime = false
	c.eiPending = false
	return 0
}

// execEI does not set IME immediately: it arms the pending flag that the
// next Step() consumes at its top, so IME is in force from the instruction
// following EI onward (spec.md §4.1's one-instruction latch).
func execEI(c *CPU, inst *Instruction) int {
	c.eiPending = true
	return 0
}

func execLD(c *CPU, inst *Instruction) int {
	dst, src := inst.Operands[0], inst.Operands[1]
	dst.Set(c, src.Get(c))
	return 0
}

// execLDHLSPR8 implements LD HL,SP+r8: HL := SP + sign-extend(r8), with
// flags computed at the 8-bit low-byte positions (alu.Add16E), never Z/N.
func execLDHLSPR8(c *CPU, inst *Instruction) int {
	_ = inst.Operands[1].Get(c) // SP, unused beyond being the base
	r8 := inst.Operands[2].Get(c)
	result, h, cf := alu.Add16E(c.Reg.SP, byte(r8))
	c.Reg.SetHL(result)
	c.Reg.SetZero(false)
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(h)
	c.Reg.SetCarry(cf)
	return 0
}

func execADDSPR8(c *CPU, inst *Instruction) int {
	r8 := inst.Operands[1].Get(c)
	result, h, cf := alu.Add16E(c.Reg.SP, byte(r8))
	c.Reg.SP = result
	c.Reg.SetZero(false)
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(h)
	c.Reg.SetCarry(cf)
	return 0
}

func execLDI(c *CPU, inst *Instruction) int {
	execLD(c, inst)
	c.Reg.SetHL(c.Reg.HL() + 1)
	return 0
}

func execLDD(c *CPU, inst *Instruction) int {
	execLD(c, inst)
	c.Reg.SetHL(c.Reg.HL() - 1)
	return 0
}

func execPUSH(c *CPU, inst *Instruction) int {
	c.pushStack(inst.Operands[0].Get(c))
	return 0
}

func execPOP(c *CPU, inst *Instruction) int {
	inst.Operands[0].Set(c, c.popStack())
	return 0
}

func execINC8(c *CPU, inst *Instruction) int {
	op := inst.Operands[0]
	result, h, _, z := alu.Add8(byte(op.Get(c)), 1, 0)
	op.Set(c, uint16(result))
	c.Reg.SetZero(z)
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(h)
	return 0
}

func execDEC8(c *CPU, inst *Instruction) int {
	op := inst.Operands[0]
	result, h, _, z := alu.Sub8(byte(op.Get(c)), 1, 0)
	op.Set(c, uint16(result))
	c.Reg.SetZero(z)
	c.Reg.SetSubtract(true)
	c.Reg.SetHalfCarry(h)
	return 0
}

func execINC16(c *CPU, inst *Instruction) int {
	op := inst.Operands[0]
	op.Set(c, op.Get(c)+1)
	return 0
}

func execDEC16(c *CPU, inst *Instruction) int {
	op := inst.Operands[0]
	op.Set(c, op.Get(c)-1)
	return 0
}

func execADDHL(c *CPU, inst *Instruction) int {
	result, h, cf := alu.Add16(c.Reg.HL(), inst.Operands[1].Get(c))
	c.Reg.SetHL(result)
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(h)
	c.Reg.SetCarry(cf)
	return 0
}

// aluOp is one ALU-A,r family's pure operation: given A and the other
// operand plus the incoming carry, it returns the new A value (writeback
// may be suppressed, as CP does) and the four flags.
type aluOp struct {
	apply    func(a, v, carryIn byte) (result byte, h, c, z bool)
	writeback bool
	subtract  bool
	usesCarry bool
}

var (
	addOp = aluOp{apply: alu.Add8, writeback: true}
	adcOp = aluOp{apply: alu.Add8, writeback: true, usesCarry: true}
	subOp = aluOp{apply: alu.Sub8, writeback: true, subtract: true}
	sbcOp = aluOp{apply: alu.Sub8, writeback: true, subtract: true, usesCarry: true}
	cpOp  = aluOp{apply: alu.Sub8, writeback: false, subtract: true}
)

func logicOp(combine func(a, v byte) byte) aluOp {
	return aluOp{
		apply: func(a, v, _ byte) (byte, bool, bool, bool) {
			r := combine(a, v)
			return r, false, false, r == 0
		},
		writeback: true,
	}
}

var (
	andOp = logicAndOp()
	xorOp = logicOp(func(a, v byte) byte { return a ^ v })
	orOp  = logicOp(func(a, v byte) byte { return a | v })
)

// logicAndOp is AND's own constructor because, uniquely among the logic
// ops, AND sets H (spec.md's instruction table: AND leaves H=1, the others
// H=0).
func logicAndOp() aluOp {
	return aluOp{
		apply: func(a, v, _ byte) (byte, bool, bool, bool) {
			r := a & v
			return r, true, false, r == 0
		},
		writeback: true,
	}
}

func execALU(op aluOp) func(c *CPU, inst *Instruction) int {
	return func(c *CPU, inst *Instruction) int {
		a := c.Reg.A
		v := byte(inst.Operands[1].Get(c))
		var carryIn byte
		if op.usesCarry && c.Reg.Carry() {
			carryIn = 1
		}
		result, h, cf, z := op.apply(a, v, carryIn)
		if op.writeback {
			c.Reg.A = result
		}
		c.Reg.SetZero(z)
		c.Reg.SetSubtract(op.subtract)
		c.Reg.SetHalfCarry(h)
		c.Reg.SetCarry(cf)
		return 0
	}
}

func execRLCA(c *CPU, inst *Instruction) int {
	old := c.Reg.A
	carryOut := old&0x80 != 0
	c.Reg.A = old<<1 | boolBit(carryOut)
	applyRotateFlags(c, c.Reg.A, carryOut)
	return 0
}

func execRLA(c *CPU, inst *Instruction) int {
	old := c.Reg.A
	newCarry := old&0x80 != 0
	c.Reg.A = old<<1 | boolBit(c.Reg.Carry())
	applyRotateFlags(c, c.Reg.A, newCarry)
	return 0
}

func execRRCA(c *CPU, inst *Instruction) int {
	old := c.Reg.A
	newCarry := old&0x01 != 0
	c.Reg.A = old>>1 | boolBit(newCarry)<<7
	applyRotateFlags(c, c.Reg.A, newCarry)
	return 0
}

func execRRA(c *CPU, inst *Instruction) int {
	old := c.Reg.A
	newCarry := old&0x01 != 0
	c.Reg.A = old>>1 | boolBit(c.Reg.Carry())<<7
	applyRotateFlags(c, c.Reg.A, newCarry)
	return 0
}

func boolBit(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// applyRotateFlags sets the four flags the way every 1-byte rotate (RLCA,
// RLA, RRCA, RRA) does: Z always cleared (these operate on A only and the
// result is conventionally never reported zero), N and H cleared, C takes
// the bit that rotated out.
func applyRotateFlags(c *CPU, result byte, carryOut bool) {
	c.Reg.SetZero(false)
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(false)
	c.Reg.SetCarry(carryOut)
}

func execCPL(c *CPU, inst *Instruction) int {
	c.Reg.A = ^c.Reg.A
	c.Reg.SetSubtract(true)
	c.Reg.SetHalfCarry(true)
	return 0
}

func execSCF(c *CPU, inst *Instruction) int {
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(false)
	c.Reg.SetCarry(true)
	return 0
}

func execCCF(c *CPU, inst *Instruction) int {
	c.Reg.SetSubtract(false)
	c.Reg.SetHalfCarry(false)
	c.Reg.SetCarry(!c.Reg.Carry())
	return 0
}

func execJP(c *CPU, inst *Instruction) int {
	target := inst.Operands[0].Get(c)
	c.Reg.PC = target
	return inst.Time[0]
}

func execJPHL(c *CPU, inst *Instruction) int {
	c.Reg.PC = c.Reg.HL()
	return inst.Time[0]
}

func execJPCC(c *CPU, inst *Instruction) int {
	cond, target := inst.Operands[0], inst.Operands[1]
	addr := target.Get(c) // always fetched: the operand bytes are consumed either way
	if cond.Get(c) != 0 {
		c.Reg.PC = addr
		return inst.Time[0]
	}
	c.Reg.PC = c.mmu.FetchIndex()
	return inst.Time[1]
}

func execJR(c *CPU, inst *Instruction) int {
	offset := alu.Signed(byte(inst.Operands[0].Get(c)))
	c.Reg.PC = uint16(int32(c.mmu.FetchIndex()) + int32(offset))
	return inst.Time[0]
}

func execJRCC(c *CPU, inst *Instruction) int {
	cond, rel := inst.Operands[0], inst.Operands[1]
	offset := alu.Signed(byte(rel.Get(c)))
	if cond.Get(c) != 0 {
		c.Reg.PC = uint16(int32(c.mmu.FetchIndex()) + int32(offset))
		return inst.Time[0]
	}
	c.Reg.PC = c.mmu.FetchIndex()
	return inst.Time[1]
}

func execCALL(c *CPU, inst *Instruction) int {
	target := inst.Operands[0].Get(c)
	c.pushStack(c.mmu.FetchIndex())
	c.Reg.PC = target
	return inst.Time[0]
}

func execCALLCC(c *CPU, inst *Instruction) int {
	cond, target := inst.Operands[0], inst.Operands[1]
	addr := target.Get(c)
	if cond.Get(c) != 0 {
		c.pushStack(c.mmu.FetchIndex())
		c.Reg.PC = addr
		return inst.Time[0]
	}
	c.Reg.PC = c.mmu.FetchIndex()
	return inst.Time[1]
}

func execRET(c *CPU, inst *Instruction) int {
	c.Reg.PC = c.popStack()
	return inst.Time[0]
}

func execRETCC(c *CPU, inst *Instruction) int {
	cond := inst.Operands[0]
	if cond.Get(c) != 0 {
		c.Reg.PC = c.popStack()
		return inst.Time[0]
	}
	c.Reg.PC = c.mmu.FetchIndex()
	return inst.Time[1]
}

func execRETI(c *CPU, inst *Instruction) int {
	c.Reg.PC = c.popStack()
	c.ime = true
	c.eiPending = false
	return inst.Time[0]
}

func execRST(c *CPU, inst *Instruction) int {
	vector := inst.Operands[0].Get(c)
	c.pushStack(c.mmu.FetchIndex())
	c.Reg.PC = vector
	return inst.Time[0]
}
