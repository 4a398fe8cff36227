package system

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dmgcore/gpu"
)

type capturingSink struct {
	frames int
}

func (c *capturingSink) Present(frame *[gpu.Width * gpu.Height]byte) { c.frames++ }

func TestStepRunsOneCPUInstruction(t *testing.T) {
	s := New()
	s.MMU.Write(0x0000, 0x00) // NOP
	cycles, err := s.Step()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0001), s.CPU.Reg.PC)
}

func TestFrameSinkReceivesOneFrameAtVBlank(t *testing.T) {
	s := New()
	sink := &capturingSink{}
	s.Sink = sink
	for i := 0; i < 0x10000; i++ {
		s.MMU.Write(uint16(i), 0x00) // NOP everywhere: a free-running no-op program
	}
	s.MMU.Write(0xFF40, 0x91) // LCD on, after the fill that zeroed LCDC
	s.CPU.Reg.PC = 0

	var err error
	for cyclesRun := 0; cyclesRun < 2*70224 && err == nil; {
		var c int
		c, err = s.Step()
		cyclesRun += c
	}
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, sink.frames, 1)
}

func TestRunStopsOnFault(t *testing.T) {
	s := New()
	s.MMU.Write(0x0000, 0xD3) // illegal
	err := s.Run(nil)
	assert.Error(t, err)
}
