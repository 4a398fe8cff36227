package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

// Stepper is the narrow slice of system.System the TUI drives: one step at
// a time, plus enough memory access to render a page table. Declared here
// (rather than imported from system) so cpu never depends on system —
// system already depends on cpu.
type Stepper interface {
	Step() (int, error)
	PeekRange(lo, hi uint16) []byte
}

// tuiModel is the bubbletea program model, generalizing the teacher's
// 6502 register/page dump (cpu/debugger.go) to the LR35902's eight
// registers, four flags, and CB-prefixed opcode table.
type tuiModel struct {
	target Stepper
	cpu    *CPU
	offset uint16
	prevPC uint16
	err    error
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "s":
			m.prevPC = m.cpu.Reg.PC
			if _, err := m.target.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m tuiModel) renderPage(start uint16) string {
	row := m.target.PeekRange(start, start+16)
	s := fmt.Sprintf("%04x | ", start)
	for i, b := range row {
		addr := start + uint16(i)
		if addr == m.cpu.Reg.PC {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m tuiModel) pageTable() string {
	base := m.cpu.Reg.PC &^ 0x0F
	lines := []string{"addr | 0    1    2    3    4    5    6    7    8    9    a    b    c    d    e    f"}
	for i := -2; i <= 2; i++ {
		lines = append(lines, m.renderPage(base+uint16(i*16)))
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) status() string {
	r := m.cpu.Reg
	flagBits := []struct {
		name string
		set  bool
	}{
		{"Z", r.Zero()}, {"N", r.Subtract()}, {"H", r.HalfCarry()}, {"C", r.Carry()},
	}
	var flags string
	for _, f := range flagBits {
		if f.set {
			flags += f.name + " "
		} else {
			flags += "_ "
		}
	}
	return fmt.Sprintf(`
PC: %04x (was %04x)
SP: %04x
AF: %04x   BC: %04x
DE: %04x   HL: %04x
flags: %s
ime: %v  halted: %v  stopped: %v
`,
		r.PC, m.prevPC, r.SP, r.AF(), r.BC(), r.DE(), r.HL(), flags,
		m.cpu.ime, m.cpu.halted, m.cpu.stopped)
}

func (m tuiModel) View() string {
	if m.err != nil {
		return spew.Sdump(m.err)
	}
	opcode := m.target.PeekRange(m.cpu.Reg.PC, m.cpu.Reg.PC+2)
	var inst *Instruction
	if len(opcode) >= 1 {
		inst = baseTable[opcode[0]]
	}
	if len(opcode) == 2 && opcode[0] == 0xCB {
		inst = cbTable[opcode[1]]
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.pageTable(), m.status()),
		"",
		spew.Sdump(inst),
	)
}

// RunTUI starts an interactive bubbletea debugger session over cpu, using
// target to single-step and peek memory. Space or 's' steps one
// instruction; 'q' quits.
func RunTUI(target Stepper, c *CPU) error {
	p := tea.NewProgram(tuiModel{target: target, cpu: c})
	_, err := p.Run()
	return err
}
