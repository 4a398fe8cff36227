package cpu

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed opcodes.yml
var opcodesYAML []byte

// rawInst is the wire shape of one opcodes.yml entry, decoded with
// gopkg.in/yaml.v3 the way the original interpreter's inst.yml was loaded
// via PyYAML — a single declarative table describing every irregular
// opcode, parsed once at package init rather than hand-written as Go
// control flow (spec.md §9 design note b).
type rawInst struct {
	Code     int      `yaml:"code"`
	Op       string   `yaml:"op"`
	Operands []string `yaml:"operands"`
	Bits     int      `yaml:"bits"`
	Size     int      `yaml:"size"`
	Time     []int    `yaml:"time"`
}

// Instruction is a fully resolved opcode-table row: its operands are
// already-built evaluators (see operand.go), and Exec is the family
// handler bound at table-build time. Step never re-parses anything.
type Instruction struct {
	Code          byte
	Mnemonic      string
	Operands      []*Operand
	Bits          int
	Size          int
	Time          [2]int // [normal/taken, not-taken]; equal for unconditional ops
	ControlFlow   bool
	Unimplemented bool
	Exec          func(c *CPU, inst *Instruction) int
}

// family describes one mnemonic's execution behavior: its handler and
// whether it manages PC/cycle accounting itself (spec.md §9's split
// between generic and self-managed instructions). A family marked
// unimplemented has no exec: the opcode decodes to a real, named
// instruction, but reaching it at Step time raises a kind-4 Fault instead
// of running anything, mirroring original_source/inst.py's
// sla_tmpl/sra_tmpl/srl_tmpl/daa_tmpl, which raise rather than compute.
type family struct {
	controlFlow   bool
	unimplemented bool
	exec          func(c *CPU, inst *Instruction) int
}

var families map[string]family

var (
	baseTable [256]*Instruction
	cbTable   [256]*Instruction
)

func mustBuildInstruction(code int, mnemonic string, operandTokens []string, bits, size int, time []int) *Instruction {
	fam, ok := families[mnemonic]
	if !ok {
		panic(fmt.Sprintf("cpu: no family handler registered for mnemonic %q (opcode 0x%02X)", mnemonic, code))
	}
	ops := make([]*Operand, len(operandTokens))
	for i, tok := range operandTokens {
		ops[i] = parseOperand(tok, bits)
	}
	inst := &Instruction{
		Code:          byte(code),
		Mnemonic:      mnemonic,
		Operands:      ops,
		Bits:          bits,
		Size:          size,
		ControlFlow:   fam.controlFlow,
		Unimplemented: fam.unimplemented,
		Exec:          fam.exec,
	}
	inst.Time[0] = time[0]
	if len(time) > 1 {
		inst.Time[1] = time[1]
	} else {
		inst.Time[1] = time[0]
	}
	return inst
}

func init() {
	registerFamilies()

	var raw []rawInst
	if err := yaml.Unmarshal(opcodesYAML, &raw); err != nil {
		panic(fmt.Sprintf("cpu: malformed opcodes.yml: %v", err))
	}
	for _, r := range raw {
		inst := mustBuildInstruction(r.Code, r.Op, r.Operands, r.Bits, r.Size, r.Time)
		if r.Code >= 0 && r.Code < 0x100 {
			baseTable[r.Code] = inst
		}
	}

	buildRegularBlocks()
	buildCBPage()
}

// regName returns the table token for the Game Boy's 3-bit register
// selector order: B C D E H L (HL) A.
func regName(i int) string {
	switch i {
	case 0:
		return "B"
	case 1:
		return "C"
	case 2:
		return "D"
	case 3:
		return "E"
	case 4:
		return "H"
	case 5:
		return "L"
	case 6:
		return "(HL)"
	default:
		return "A"
	}
}

// buildRegularBlocks generates the three dense, arithmetic-progression
// pages that make up most of the unprefixed opcode space: LD r,r' (0x40-
// 0x7F, minus HALT at 0x76), the eight ALU-A,r' families (0x80-0xBF, plus
// their d8-immediate counterparts at 0xC6..0xFE), and INC/DEC r8. Writing
// these as loops instead of 151 nearly-identical table rows is the
// build-time equivalent of the original's declarative table (spec.md §9).
func buildRegularBlocks() {
	for dst := 0; dst < 8; dst++ {
		for src := 0; src < 8; src++ {
			code := 0x40 + dst*8 + src
			if code == 0x76 {
				continue // HALT, not LD (HL),(HL)
			}
			time := 4
			if dst == 6 || src == 6 {
				time = 8
			}
			baseTable[code] = mustBuildInstruction(code, "ld", []string{regName(dst), regName(src)}, 8, 1, []int{time})
		}
	}

	aluOps := []string{"add", "adc", "sub", "sbc", "and", "xor", "or", "cp"}
	for i, op := range aluOps {
		for src := 0; src < 8; src++ {
			code := 0x80 + i*8 + src
			time := 4
			if src == 6 {
				time = 8
			}
			baseTable[code] = mustBuildInstruction(code, op, []string{"A", regName(src)}, 8, 1, []int{time})
		}
		immCode := 0xC6 + i*8
		baseTable[immCode] = mustBuildInstruction(immCode, op, []string{"A", "d8"}, 8, 2, []int{8})
	}

	for r := 0; r < 8; r++ {
		incCode := 0x04 + r*8
		decCode := 0x05 + r*8
		time := 4
		if r == 6 {
			time = 12
		}
		baseTable[incCode] = mustBuildInstruction(incCode, "inc8", []string{regName(r)}, 8, 1, []int{time})
		baseTable[decCode] = mustBuildInstruction(decCode, "dec8", []string{regName(r)}, 8, 1, []int{time})
	}
}

// buildCBPage generates the entire 0xCB-prefixed page: eight rotate/shift
// families over the eight registers (0x00-0x3F), then BIT/RES/SET over
// eight bit indices times eight registers (0x40-0xFF). The bit index is
// passed as a numeric constant operand, matching how the family handlers
// consume it (exec_cb.go).
func buildCBPage() {
	shiftOps := []string{"rlc", "rrc", "rl", "rr", "sla", "sra", "swap", "srl"}
	for i, op := range shiftOps {
		for r := 0; r < 8; r++ {
			code := i*8 + r
			time := 8
			if r == 6 {
				time = 16
			}
			cbTable[code] = mustBuildInstruction(code, op, []string{regName(r)}, 8, 2, []int{time})
		}
	}

	bitFamilies := []struct {
		base int
		op   string
	}{
		{0x40, "bit"},
		{0x80, "res"},
		{0xC0, "set"},
	}
	for _, bf := range bitFamilies {
		for b := 0; b < 8; b++ {
			for r := 0; r < 8; r++ {
				code := bf.base + b*8 + r
				time := 8
				if r == 6 {
					time = 16
					if bf.op == "bit" {
						time = 12
					}
				}
				cbTable[code] = mustBuildInstruction(code, bf.op, []string{fmt.Sprintf("%d", b), regName(r)}, 8, 2, []int{time})
			}
		}
	}
}
