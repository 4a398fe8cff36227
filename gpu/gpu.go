// Package gpu implements the Game Boy's scanline-driven LCD controller: a
// four-phase mode machine, background/window/sprite compositing into a
// 160x144 visible frame, and the handful of memory-mapped control
// registers that drive it. The teacher repo has no PPU of its own (its
// 6502/NES target has none in scope), so this package is built from
// original_source/gpu.py's mode shape and the register table, in the same
// flat, field-heavy struct style the teacher uses for its Cpu.
package gpu

import "dmgcore/mem"

// Visible frame dimensions.
const (
	Width  = 160
	Height = 144

	bgMapSize = 256
)

// LCD mode values, matching STAT (0xFF41) bits 0-1.
const (
	ModeHBlank = 0
	ModeVBlank = 1
	ModeOAM    = 2
	ModeTransfer = 3
)

// Mode durations in clock cycles (spec.md §4.4).
const (
	oamCycles      = 80
	transferCycles = 172
	hblankCycles   = 204
	scanlineCycles = oamCycles + transferCycles + hblankCycles // 456
	vblankLines    = 10
)

const (
	regLCDC = 0xFF40
	regSTAT = 0xFF41
	regSCY  = 0xFF42
	regSCX  = 0xFF43
	regLY   = 0xFF44
	regLYC  = 0xFF45
	regDMA  = 0xFF46
	regBGP  = 0xFF47
	regOBP0 = 0xFF48
	regOBP1 = 0xFF49
	regWY   = 0xFF4A
	regWX   = 0xFF4B

	vramStart = 0x8000
	tileDataLow = 0x8000 // unsigned-tile base
	tileDataHigh = 0x9000
	oamStart  = 0xFE00
	oamEnd    = 0xFEA0
)

// InterruptRequester is the narrow slice of cpu.CPU the GPU needs: raising
// V-Blank and LCD STAT interrupts. Declared locally so gpu never imports
// cpu, keeping the component dependency order of spec.md §2 (GPU depends
// on MMU, not on CPU).
type InterruptRequester interface {
	RequestInterrupt(bit uint)
}

// Interrupt bit numbers, duplicated from cpu's constants (gpu must not
// import cpu) to keep the two packages' dependency edges one-directional.
const (
	intVBlank  = 0
	intLCDStat = 1
)

// GPU is the LCD controller: its control-register-derived configuration,
// mode-machine run state, and the two pixel buffers spec.md §3 calls for —
// a 256x256 background composition buffer and the 160x144 visible frame.
type GPU struct {
	mmu *mem.MMU
	irq InterruptRequester

	lcdEnable      bool
	windowTileMapHi bool
	windowEnable   bool
	tileDataLowBase bool
	bgTileMapHi    bool
	spriteSize8x16 bool
	spriteEnable   bool
	bgEnable       bool

	scx, scy byte
	wx, wy   byte
	ly, lyc  byte
	bgp, obp0, obp1 byte

	statInterrupt struct {
		hblank, vblank, oam, lyc bool
	}

	mode  int
	clock int

	bg     [bgMapSize * bgMapSize]byte
	frame  [Width * Height]byte
	oam    [oamEnd - oamStart]byte
	vram   [0x2000]byte
}

// New returns a GPU wired to mmu's I/O and VRAM/OAM hook ranges, reporting
// V-Blank and LCD STAT interrupts to irq (normally the system's CPU).
func New(mmu *mem.MMU, irq InterruptRequester) *GPU {
	g := &GPU{mmu: mmu, irq: irq}
	g.wireRegisters()
	g.wireMemory()
	return g
}

func (g *GPU) wireRegisters() {
	g.mmu.AddWriteHook(regLCDC, func(addr uint16, v byte) bool {
		wasEnabled := g.lcdEnable
		g.lcdEnable = v&0x80 != 0
		g.windowTileMapHi = v&0x40 != 0
		g.windowEnable = v&0x20 != 0
		g.tileDataLowBase = v&0x10 != 0
		g.bgTileMapHi = v&0x08 != 0
		g.spriteSize8x16 = v&0x04 != 0
		g.spriteEnable = v&0x02 != 0
		g.bgEnable = v&0x01 != 0
		if g.lcdEnable && !wasEnabled {
			g.ly = 0
			g.clock = 0
			g.mode = ModeOAM
		}
		return false
	})
	g.mmu.AddReadHook(regLY, func(addr uint16) (byte, bool) { return g.ly, true })
	g.mmu.AddWriteHook(regLY, func(addr uint16, v byte) bool { return true }) // read-only on hardware

	g.mmu.AddWriteHook(regLYC, func(addr uint16, v byte) bool {
		g.lyc = v
		return false
	})
	g.mmu.AddWriteHook(regSCX, func(addr uint16, v byte) bool { g.scx = v; return false })
	g.mmu.AddWriteHook(regSCY, func(addr uint16, v byte) bool { g.scy = v; return false })
	g.mmu.AddWriteHook(regWX, func(addr uint16, v byte) bool { g.wx = v; return false })
	g.mmu.AddWriteHook(regWY, func(addr uint16, v byte) bool { g.wy = v; return false })
	g.mmu.AddWriteHook(regBGP, func(addr uint16, v byte) bool { g.bgp = v; return false })
	g.mmu.AddWriteHook(regOBP0, func(addr uint16, v byte) bool { g.obp0 = v; return false })
	g.mmu.AddWriteHook(regOBP1, func(addr uint16, v byte) bool { g.obp1 = v; return false })

	g.mmu.AddWriteHook(regSTAT, func(addr uint16, v byte) bool {
		g.statInterrupt.hblank = v&0x08 != 0
		g.statInterrupt.oam = v&0x20 != 0
		g.statInterrupt.vblank = v&0x10 != 0
		g.statInterrupt.lyc = v&0x40 != 0
		return true // bits 0-2 (mode, coincidence) are read-only; we own the byte entirely
	})
	g.mmu.AddReadHook(regSTAT, func(addr uint16) (byte, bool) {
		v := byte(g.mode) & 0x03
		if g.ly == g.lyc {
			v |= 0x04
		}
		if g.statInterrupt.hblank {
			v |= 0x08
		}
		if g.statInterrupt.oam {
			v |= 0x20
		}
		if g.statInterrupt.vblank {
			v |= 0x10
		}
		if g.statInterrupt.lyc {
			v |= 0x40
		}
		return v | 0x80, true
	})
}

// wireMemory routes VRAM and OAM through the GPU's own backing arrays
// instead of MMU's flat RAM, the way real hardware keeps video memory on
// the PPU's side of the bus. OAM also sits in the MMU's sparse range via
// AddReadHookRange/AddWriteHookRange, per spec.md §9's dense-array-for-hot-
// ranges note (VRAM is one of the two dense ranges named there).
func (g *GPU) wireMemory() {
	g.mmu.AddReadHookRange(vramStart, 0x9FFF, func(addr uint16) (byte, bool) {
		return g.vram[addr-vramStart], true
	})
	g.mmu.AddWriteHookRange(vramStart, 0x9FFF, func(addr uint16, v byte) bool {
		g.vram[addr-vramStart] = v
		return true
	})
	g.mmu.AddReadHookRange(oamStart, oamEnd-1, func(addr uint16) (byte, bool) {
		return g.oam[addr-oamStart], true
	})
	g.mmu.AddWriteHookRange(oamStart, oamEnd-1, func(addr uint16, v byte) bool {
		g.oam[addr-oamStart] = v
		return true
	})
}

// Frame returns the current visible 160x144 buffer, one shade index
// (0-3) per pixel, already palette-mapped through BGP (OBP0/OBP1 for
// sprite pixels).
func (g *GPU) Frame() *[Width * Height]byte { return &g.frame }

// CurrentLine reports LY (0xFF44), the scanline the mode machine is
// currently on or about to enter.
func (g *GPU) CurrentLine() byte { return g.ly }

// Step advances the mode machine by cycles clock ticks, rendering a
// scanline on entry to mode 3->0 the way real hardware paints pixels
// during mode 3 but is modeled here (as spec.md §4.4 point 3-4 does) as a
// single render_scanline call at the mode-3-to-0 transition.
func (g *GPU) Step(cycles int) {
	if !g.lcdEnable {
		return
	}
	g.clock += cycles
	for g.advanceMode() {
	}
}

// advanceMode makes the one mode transition that g.clock already covers, if
// any, and reports whether it made one.
func (g *GPU) advanceMode() bool {
	switch g.mode {
	case ModeOAM:
		if g.clock >= oamCycles {
			g.clock -= oamCycles
			g.mode = ModeTransfer
			return true
		}
	case ModeTransfer:
		if g.clock >= transferCycles {
			g.clock -= transferCycles
			g.renderScanline()
			g.mode = ModeHBlank
			if g.statInterrupt.hblank {
				g.irq.RequestInterrupt(intLCDStat)
			}
			return true
		}
	case ModeHBlank:
		if g.clock >= hblankCycles {
			g.clock -= hblankCycles
			g.ly++
			g.checkLYC()
			if g.ly == Height {
				g.mode = ModeVBlank
				g.irq.RequestInterrupt(intVBlank)
				if g.statInterrupt.vblank {
					g.irq.RequestInterrupt(intLCDStat)
				}
				g.composeFrame()
			} else {
				g.mode = ModeOAM
				if g.statInterrupt.oam {
					g.irq.RequestInterrupt(intLCDStat)
				}
			}
			return true
		}
	case ModeVBlank:
		if g.clock >= scanlineCycles {
			g.clock -= scanlineCycles
			g.ly++
			g.checkLYC()
			if g.ly >= Height+vblankLines {
				g.ly = 0
				g.checkLYC()
				g.mode = ModeOAM
				if g.statInterrupt.oam {
					g.irq.RequestInterrupt(intLCDStat)
				}
			}
			return true
		}
	}
	return false
}

func (g *GPU) checkLYC() {
	if g.ly == g.lyc && g.statInterrupt.lyc {
		g.irq.RequestInterrupt(intLCDStat)
	}
}
