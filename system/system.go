// Package system wires the MMU, CPU, and GPU into the single front-end
// sequencing loop spec.md §5 specifies: CPU.Step(), then GPU.Step(cycles)
// with the cycles the CPU step actually took, then a FrameSink hand-off when
// V-Blank begins. Debugger callbacks fire synchronously inside CPU.Step;
// there is no separate drain. Grounded on original_source/system.py's top-level driver and on
// Francesco149-go-hachi/hachi/driver.go's Driver-interface/null-default
// idiom, generalized from CHIP-8's single UpdateScreen call to a Game Boy
// V-Blank FrameSink.
package system

import (
	"dmgcore/cpu"
	"dmgcore/gpu"
	"dmgcore/mem"
)

// FrameSink receives a completed frame at V-Blank. Present returns
// quickly; System does not retain the slice across calls, so a sink that
// needs to keep it must copy.
type FrameSink interface {
	Present(frame *[gpu.Width * gpu.Height]byte)
}

// nullFrameSink is the registration default, mirroring go-hachi's null
// Driver: Present costs a function call and nothing else.
type nullFrameSink struct{}

func (nullFrameSink) Present(*[gpu.Width * gpu.Height]byte) {}

// System is the assembled machine: MMU plus the CPU and GPU wired to it.
type System struct {
	MMU *mem.MMU
	CPU *cpu.CPU
	GPU *gpu.GPU

	Sink FrameSink

	lastLY byte
}

// New assembles a System: a fresh MMU, a CPU wired to it, and a GPU wired
// to both the MMU and the CPU's interrupt line.
func New() *System {
	m := mem.NewMMU()
	c := cpu.New(m)
	g := gpu.New(m, c)
	return &System{MMU: m, CPU: c, GPU: g, Sink: nullFrameSink{}}
}

// LoadBootROM loads the bootstrap ROM at path into the MMU, per spec.md
// §6's bootstrap external interface.
func (s *System) LoadBootROM(path string) error {
	return s.MMU.LoadBootROM(path)
}

// Step executes exactly one CPU instruction (or HALT/interrupt tick),
// advances the GPU by the same number of cycles, and presents a frame to
// Sink the instant V-Blank begins. It returns the cycles consumed and any
// *cpu.Fault from an illegal opcode.
func (s *System) Step() (int, error) {
	cycles, err := s.CPU.Step()
	if err != nil {
		return cycles, err
	}
	s.GPU.Step(cycles)
	if s.lastLY != gpu.Height && s.GPU.CurrentLine() == gpu.Height {
		s.Sink.Present(s.GPU.Frame())
	}
	s.lastLY = s.GPU.CurrentLine()
	return cycles, nil
}

// PeekRange reads [lo, hi) without side effects beyond whatever a read
// hook normally does, for the TUI debugger's page-table view
// (cpu.Stepper).
func (s *System) PeekRange(lo, hi uint16) []byte {
	out := make([]byte, 0, int(hi-lo))
	for a := uint32(lo); a < uint32(hi); a++ {
		out = append(out, s.MMU.Read(uint16(a)))
	}
	return out
}

// Run steps the system until Step returns an error (normally a *cpu.Fault)
// or until stop is closed, whichever comes first. stop may be nil, in
// which case Run only returns on a Fault.
func (s *System) Run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		if _, err := s.Step(); err != nil {
			return err
		}
	}
}
