// Command dmgcore runs the Sharp LR35902 core standalone: load a boot ROM
// (and, optionally, a cartridge image copied flat with no MBC), then either free-run with an optional trace log and
// breakpoint, or drop into the bubbletea TUI debugger.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"dmgcore/cpu"
	"dmgcore/system"
)

func main() {
	log.SetFlags(0)

	bootROM := flag.String("boot", "", "path to the boot ROM image (required)")
	cartridge := flag.String("cart", "", "path to a cartridge ROM image (loaded at 0x0000 past the boot ROM's mirror, no MBC)")
	breakAt := flag.Uint("break", 0x10000, "stop free-running once PC reaches this address")
	trace := flag.Bool("trace", false, "log every fetched opcode to stderr")
	debug := flag.Bool("debug", false, "launch the interactive TUI debugger instead of free-running")
	flag.Parse()

	if *bootROM == "" {
		log.Fatal("dmgcore: -boot is required")
	}

	s := system.New()
	if err := s.LoadBootROM(*bootROM); err != nil {
		log.Fatalf("dmgcore: loading boot ROM: %v", err)
	}
	if *cartridge != "" {
		if err := loadCartridge(s, *cartridge); err != nil {
			log.Fatalf("dmgcore: loading cartridge: %v", err)
		}
	}

	if *trace {
		s.CPU.Debugger = traceLogger{}
	}

	if *debug {
		if err := cpu.RunTUI(s, s.CPU); err != nil {
			log.Fatalf("dmgcore: debugger: %v", err)
		}
		return
	}

	runFree(s, *breakAt)
}

// loadCartridge copies a cartridge image directly into memory starting at
// 0x0000. Bank switching (MBC1/MBC3/...) is out of scope (spec.md
// Non-goals); this is a flat, no-op-MBC load only.
func loadCartridge(s *system.System, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for i, b := range data {
		if i >= 0x10000 {
			break
		}
		s.MMU.Write(uint16(i), b)
	}
	return nil
}

func runFree(s *system.System, breakAt uint) {
	for {
		if uint(s.CPU.Reg.PC) == breakAt {
			fmt.Fprintf(os.Stderr, "dmgcore: breakpoint hit at 0x%04X\n", breakAt)
			return
		}
		if _, err := s.Step(); err != nil {
			var fault *cpu.Fault
			if asFault(err, &fault) {
				fmt.Fprintf(os.Stderr, "dmgcore: %v\n%+v\n", err, fault.Registers)
			} else {
				fmt.Fprintf(os.Stderr, "dmgcore: %v\n", err)
			}
			os.Exit(1)
		}
	}
}

func asFault(err error, target **cpu.Fault) bool {
	f, ok := err.(*cpu.Fault)
	if ok {
		*target = f
	}
	return ok
}

// traceLogger is a minimal cpu.Debugger that logs every fetch to stderr.
type traceLogger struct{}

func (traceLogger) OnFetch(pc uint16, opcode byte) {
	fmt.Fprintf(os.Stderr, "pc=%04x opcode=%02x\n", pc, opcode)
}
func (traceLogger) BeforeExec(c *cpu.CPU, inst *cpu.Instruction) {}
func (traceLogger) AfterExec(c *cpu.CPU, inst *cpu.Instruction, cycles int) {}
