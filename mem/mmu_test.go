package mem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWriteRoundTrip(t *testing.T) {
	m := NewMMU()
	m.Write(0x1234, 0x42)
	assert.Equal(t, byte(0x42), m.Read(0x1234))
}

func TestWrite16LittleEndian(t *testing.T) {
	m := NewMMU()
	m.Write16(0x2000, 0xBEEF)
	assert.Equal(t, byte(0xEF), m.Read(0x2000))
	assert.Equal(t, byte(0xBE), m.Read(0x2001))
	assert.Equal(t, uint16(0xBEEF), m.Read16(0x2000))
}

func TestFetcherIsIndependentOfPC(t *testing.T) {
	m := NewMMU()
	m.Write(0x10, 0xAA)
	m.Write(0x11, 0xBB)
	m.FetchSet(0x10)
	assert.Equal(t, byte(0xAA), m.Fetch())
	assert.Equal(t, byte(0xBB), m.Fetch())
	assert.Equal(t, uint16(0x12), m.FetchIndex())
}

func TestFetch16(t *testing.T) {
	m := NewMMU()
	m.Write(0x10, 0x34)
	m.Write(0x11, 0x12)
	m.FetchSet(0x10)
	assert.Equal(t, uint16(0x1234), m.Fetch16())
}

func TestReadHookOverridesBackingByte(t *testing.T) {
	m := NewMMU()
	m.Write(0xFF44, 99) // backing byte, should never surface
	m.AddReadHook(0xFF44, func(addr uint16) (byte, bool) {
		return 0x90, true
	})
	assert.Equal(t, byte(0x90), m.Read(0xFF44))
}

func TestReadHookFallsThroughWhenNotOK(t *testing.T) {
	m := NewMMU()
	m.Write(0x9000, 7)
	m.AddReadHook(0x9000, func(addr uint16) (byte, bool) {
		return 0, false
	})
	assert.Equal(t, byte(7), m.Read(0x9000))
}

func TestWriteHookSuppressesBackingStore(t *testing.T) {
	m := NewMMU()
	var seen byte
	m.AddWriteHook(0xFF40, func(addr uint16, v byte) bool {
		seen = v
		return true
	})
	m.Write(0xFF40, 0x91)
	assert.Equal(t, byte(0x91), seen)
	assert.Equal(t, byte(0), m.Read(0xFF40)) // suppressed, backing byte untouched
}

func TestWriteHookRange(t *testing.T) {
	m := NewMMU()
	var hits int
	m.AddWriteHookRange(0xFF10, 0xFF14, func(addr uint16, v byte) bool {
		hits++
		return false
	})
	m.Write(0xFF10, 1)
	m.Write(0xFF14, 1)
	m.Write(0xFF15, 1) // outside range
	assert.Equal(t, 2, hits)
}

func TestLoadBootROMMirrorsHeaderArea(t *testing.T) {
	dir := t.TempDir()
	boot := make([]byte, 0x100)
	for i := range boot {
		boot[i] = byte(i)
	}
	path := filepath.Join(dir, "boot.bin")
	assert.NoError(t, os.WriteFile(path, boot, 0o644))

	m := NewMMU()
	assert.NoError(t, m.LoadBootROM(path))

	assert.Equal(t, boot[0], m.Read(0x0000))
	assert.Equal(t, boot[0xFF], m.Read(0x00FF))
	assert.Equal(t, boot[0xA8], m.Read(0x0104))
	assert.Equal(t, boot[0xFF], m.Read(0x0104+0xFF-0xA8))
}

type spyDebugger struct {
	reads, writes int
}

func (s *spyDebugger) OnRead(addr uint16, value byte)  { s.reads++ }
func (s *spyDebugger) OnWrite(addr uint16, value byte) { s.writes++ }

func TestDebuggerIsNotifiedOnEveryAccess(t *testing.T) {
	m := NewMMU()
	spy := &spyDebugger{}
	m.Debugger = spy

	m.Write(0x10, 1)
	m.Read(0x10)
	assert.Equal(t, 1, spy.writes)
	assert.Equal(t, 1, spy.reads)
}
