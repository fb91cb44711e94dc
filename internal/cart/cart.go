package cart

// Sizes and addresses of the cartridge bus.
const (
	ROMBankSize = 0x4000
	RAMBankSize = 0x2000
	RAMBase     = 0xA000
	ramEnd      = 0xBFFF

	mbc2RAMSize   = 512
	ramEnableCode = 0x0A
	openBus       = 0xFF
)

// controller is the mapper-specific half of a cartridge. Implementations keep
// no register state of their own; everything lives on the Cartridge.
type controller interface {
	// writeControl handles writes to the register area 0x0000-0x7FFF.
	writeControl(addr uint16, value byte)
	// romOffset resolves 0x0000-0x7FFF to an offset in [0, ROMSize).
	romOffset(addr uint16) int
	// ramBank returns the RAM bank the registers select, before wrapping.
	// The boolean is false when the RAM area is mapped to something else.
	ramBank() (int, bool)
	readRAM(addr uint16) byte
	writeRAM(addr uint16, value byte)
}

// Cartridge is one inserted cartridge: header classification, the banking
// registers, and non-owning references to the ROM and RAM images.
type Cartridge struct {
	Title    [16]byte
	Type     Type
	Info     TypeInfo
	Filename string

	ROMSize     int
	RAMSize     int
	NumROMBanks int
	NumRAMBanks int

	SelectedROMBank int
	SelectedRAMBank int
	EnableRAM       bool
	ModeSelect      byte

	rom []byte
	ram []byte

	rtc       *RTC
	latchPrev byte // last value written to the MBC3 latch register
	rumble    bool // MBC5 motor line

	mbc controller
}

func newController(c *Cartridge) controller {
	switch c.Info.Family {
	case FamilyMBC1:
		return &mbc1{c: c}
	case FamilyMBC2:
		return &mbc2{c: c}
	case FamilyMBC3:
		return &mbc3{c: c}
	case FamilyMBC5:
		return &mbc5{c: c}
	default:
		return &romOnly{c: c}
	}
}

// SetROM attaches the ROM image. The slice is referenced, not copied.
func (c *Cartridge) SetROM(rom []byte) { c.rom = rom }

// SetRAM attaches the external RAM image. The slice is referenced, not copied;
// it normally comes from a memory-mapped save file.
func (c *Cartridge) SetRAM(ram []byte) { c.ram = ram }

func (c *Cartridge) ROM() []byte { return c.rom }
func (c *Cartridge) RAM() []byte { return c.ram }

// RTC returns the clock of MBC3+TIMER cartridges and nil for every other type.
func (c *Cartridge) RTC() *RTC { return c.rtc }

// Rumble reports the state of the motor line on MBC5 rumble cartridges.
func (c *Cartridge) Rumble() bool { return c.rumble }

// TitleString returns the title with trailing padding removed.
func (c *Cartridge) TitleString() string {
	n := len(c.Title)
	for n > 0 && c.Title[n-1] == 0 {
		n--
	}
	return string(c.Title[:n])
}

// ResetRegisters puts the banking registers back to their power-on state.
// The RTC keeps running: it has its own battery.
func (c *Cartridge) ResetRegisters() {
	c.SelectedROMBank = 1
	c.SelectedRAMBank = 0
	c.EnableRAM = false
	c.ModeSelect = 0
	c.latchPrev = openBus
	c.rumble = false
}

// Read returns the byte at a cartridge bus address: ROM at 0x0000-0x7FFF,
// RAM or clock registers at 0xA000-0xBFFF. Anything else reads as open bus.
func (c *Cartridge) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return c.romByte(c.mbc.romOffset(addr))
	case addr >= RAMBase && addr <= ramEnd:
		return c.mbc.readRAM(addr)
	}
	return openBus
}

// Write applies a byte written to a cartridge bus address: bank controller
// registers at 0x0000-0x7FFF, RAM or clock registers at 0xA000-0xBFFF.
func (c *Cartridge) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		c.mbc.writeControl(addr, value)
	case addr >= RAMBase && addr <= ramEnd:
		c.mbc.writeRAM(addr, value)
	}
}

// ROMOffset returns the ROM image offset that a read of addr (0x0000-0x7FFF)
// resolves to with the current registers. Other addresses return -1.
func (c *Cartridge) ROMOffset(addr uint16) int {
	if addr >= 0x8000 {
		return -1
	}
	return c.mbc.romOffset(addr)
}

// RAMOffset returns the RAM image offset that addr (0xA000-0xBFFF) resolves
// to. The boolean is false when the access would be dropped.
func (c *Cartridge) RAMOffset(addr uint16) (int, bool) {
	if addr < RAMBase || addr > ramEnd {
		return 0, false
	}
	return c.ramOffset(addr)
}

// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
func (c *Cartridge) ROMBank() int {
	return c.mbc.romOffset(0x4000) / ROMBankSize
}

// RAMBank returns the RAM bank currently mapped at 0xA000-0xBFFF, or -1 when
// no RAM bank is reachable.
func (c *Cartridge) RAMBank() int {
	bank, ok := c.mbc.ramBank()
	if !ok || c.NumRAMBanks == 0 {
		return -1
	}
	return bank % c.NumRAMBanks
}

// ramOffset resolves addr through the selected RAM bank. Accesses are dropped
// while RAM is disabled; plain ROM+RAM carts have no enable register.
func (c *Cartridge) ramOffset(addr uint16) (int, bool) {
	bank, ok := c.mbc.ramBank()
	if !ok {
		return 0, false
	}
	if !c.EnableRAM && c.Info.Family != FamilyROMOnly {
		return 0, false
	}
	return c.ramBankOffset(bank, addr)
}

// bankOffset places addr inside ROM bank, wrapping the bank on the bank count.
func (c *Cartridge) bankOffset(bank int, addr uint16) int {
	n := max(c.NumROMBanks, 1)
	return (bank%n)*ROMBankSize + int(addr&(ROMBankSize-1))
}

// ramBankOffset places addr inside RAM bank, wrapping on both bank count and
// total size so partial banks mirror.
func (c *Cartridge) ramBankOffset(bank int, addr uint16) (int, bool) {
	if !c.Info.RAM || c.RAMSize == 0 || c.NumRAMBanks == 0 {
		return 0, false
	}
	off := (bank%c.NumRAMBanks)*RAMBankSize + int(addr-RAMBase)
	return off % c.RAMSize, true
}

func (c *Cartridge) romByte(off int) byte {
	if off >= 0 && off < len(c.rom) {
		return c.rom[off]
	}
	return openBus
}

func (c *Cartridge) readBankedRAM(addr uint16) byte {
	off, ok := c.ramOffset(addr)
	if ok && off >= 0 && off < len(c.ram) {
		return c.ram[off]
	}
	return openBus
}

func (c *Cartridge) writeBankedRAM(addr uint16, value byte) {
	off, ok := c.ramOffset(addr)
	if ok && off >= 0 && off < len(c.ram) {
		c.ram[off] = value
	}
}

func (c *Cartridge) writeRAMEnable(value byte) {
	c.EnableRAM = value&0x0F == ramEnableCode
}
