package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dmgcore/mem"
)

func newTestCPU() (*CPU, *mem.MMU) {
	m := mem.NewMMU()
	c := New(m)
	return c, m
}

func TestLDBImmediate(t *testing.T) {
	c, m := newTestCPU()
	m.Write(0x0000, 0x06) // LD B,d8
	m.Write(0x0001, 0x42)
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x42), c.Reg.B)
	assert.Equal(t, uint16(0x0002), c.Reg.PC)
	assert.Equal(t, 8, cycles)
}

func TestLDDHLA(t *testing.T) {
	c, m := newTestCPU()
	c.Reg.A = 0x5A
	c.Reg.SetHL(0xC000)
	m.Write(0x0000, 0x32) // LD (HL-),A
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x5A), m.Read(0xC000))
	assert.Equal(t, uint16(0xBFFF), c.Reg.HL())
}

func TestLDIAHL(t *testing.T) {
	c, m := newTestCPU()
	c.Reg.SetHL(0xC000)
	m.Write(0xC000, 0x99)
	m.Write(0x0000, 0x2A) // LD A,(HL+)
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x99), c.Reg.A)
	assert.Equal(t, uint16(0xC001), c.Reg.HL())
}

func TestADDAB(t *testing.T) {
	c, mm := newTestCPU()
	c.Reg.A = 0x3A
	c.Reg.B = 0x71
	mm.Write(0x0000, 0x80) // ADD A,B
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAB), c.Reg.A)
	assert.False(t, c.Reg.Zero())
	assert.False(t, c.Reg.HalfCarry())
	assert.False(t, c.Reg.Carry())
}

func TestADCWithCarry(t *testing.T) {
	c, mm := newTestCPU()
	c.Reg.A = 0x71
	c.Reg.SetCarry(true)
	mm.Write(0x0000, 0xCE) // ADC A,d8
	mm.Write(0x0001, 0x3A)
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAC), c.Reg.A)
}

func TestPushPopRoundTrip(t *testing.T) {
	c, mm := newTestCPU()
	c.Reg.SP = 0xFFFE
	c.Reg.SetBC(0x1234)
	mm.Write(0x0000, 0xC5) // PUSH BC
	mm.Write(0x0001, 0xD1) // POP DE
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xFFFC), c.Reg.SP)
	_, err = c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), c.Reg.DE())
	assert.Equal(t, uint16(0xFFFE), c.Reg.SP)
}

func TestJRTakenAndNotTaken(t *testing.T) {
	c, mm := newTestCPU()
	c.Reg.SetZero(true)
	mm.Write(0x0000, 0x28) // JR Z,r8
	mm.Write(0x0001, 0x05)
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0007), c.Reg.PC)
	assert.Equal(t, 12, cycles)

	c2, mm2 := newTestCPU()
	c2.Reg.SetZero(false)
	mm2.Write(0x0000, 0x28)
	mm2.Write(0x0001, 0x05)
	cycles2, err := c2.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0002), c2.Reg.PC)
	assert.Equal(t, 8, cycles2)
}

func TestCALLRETRoundTrip(t *testing.T) {
	c, mm := newTestCPU()
	c.Reg.SP = 0xFFFE
	c.Reg.PC = 0x0100
	mm.Write(0x0100, 0xCD) // CALL a16
	mm.Write(0x0101, 0x50)
	mm.Write(0x0102, 0x00)
	mm.Write(0x0050, 0xC9) // RET
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0050), c.Reg.PC)
	assert.Equal(t, uint16(0xFFFC), c.Reg.SP)

	_, err = c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0103), c.Reg.PC)
	assert.Equal(t, uint16(0xFFFE), c.Reg.SP)
}

func TestHaltStopsFetchingUntilInterrupt(t *testing.T) {
	c, mm := newTestCPU()
	mm.Write(0x0000, 0x76) // HALT
	_, err := c.Step()
	assert.NoError(t, err)
	assert.True(t, c.halted)

	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0001), c.Reg.PC) // PC never advances while halted
}

func TestEIEnablesAfterFollowingInstruction(t *testing.T) {
	c, mm := newTestCPU()
	mm.Write(0x0000, 0xFB) // EI
	mm.Write(0x0001, 0x00) // NOP
	_, err := c.Step()
	assert.NoError(t, err)
	assert.False(t, c.ime) // not yet active

	_, err = c.Step()
	assert.NoError(t, err)
	assert.True(t, c.ime)
}

func TestInterruptDispatchPushesPCAndClearsIME(t *testing.T) {
	c, mm := newTestCPU()
	c.ime = true
	c.Reg.PC = 0x0200
	c.Reg.SP = 0xFFFE
	mm.Write(regIE, 0x01)
	mm.Write(regIF, 0x01) // VBlank pending
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, interruptDispatchCycles, cycles)
	assert.Equal(t, uint16(0x0040), c.Reg.PC)
	assert.False(t, c.ime)
	assert.Equal(t, byte(0), mm.Read(regIF))
	assert.Equal(t, uint16(0x0200), mm.Read16(c.Reg.SP))
}

func TestIllegalOpcodeFaults(t *testing.T) {
	c, mm := newTestCPU()
	mm.Write(0x0000, 0xD3) // unassigned
	_, err := c.Step()
	assert.Error(t, err)
	var fault *Fault
	assert.ErrorAs(t, err, &fault)
	assert.Equal(t, byte(0xD3), fault.Opcode)
}

func TestCBBitSetRes(t *testing.T) {
	c, mm := newTestCPU()
	c.Reg.B = 0x00
	mm.Write(0x0000, 0xCB)
	mm.Write(0x0001, 0xC0) // SET 0,B
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x01), c.Reg.B)

	mm.Write(0x0002, 0xCB)
	mm.Write(0x0003, 0x47) // BIT 0,A (A==0, so Z set)
	_, err = c.Step()
	assert.NoError(t, err)
	assert.True(t, c.Reg.Zero())
	assert.True(t, c.Reg.HalfCarry())

	mm.Write(0x0004, 0xCB)
	mm.Write(0x0005, 0x80) // RES 0,B
	_, err = c.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x00), c.Reg.B)
}

func TestDAAFaultsAsUnimplemented(t *testing.T) {
	c, mm := newTestCPU()
	mm.Write(0x0000, 0x27) // DAA
	_, err := c.Step()
	var fault *Fault
	assert.ErrorAs(t, err, &fault)
	assert.True(t, fault.Unimplemented)
	assert.Equal(t, byte(0x27), fault.Opcode)
}

func TestCBShiftsFaultAsUnimplemented(t *testing.T) {
	for _, tc := range []struct {
		name   string
		opcode byte
	}{
		{"SLA B", 0x20},
		{"SRA B", 0x28},
		{"SRL B", 0x38},
	} {
		c, mm := newTestCPU()
		mm.Write(0x0000, 0xCB)
		mm.Write(0x0001, tc.opcode)
		_, err := c.Step()
		var fault *Fault
		assert.ErrorAsf(t, err, &fault, "%s", tc.name)
		assert.Truef(t, fault.Unimplemented, "%s", tc.name)
		assert.Equalf(t, tc.opcode, fault.Opcode, "%s", tc.name)
	}
}

