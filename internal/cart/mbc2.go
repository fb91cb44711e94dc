package cart

// mbc2 implements MBC2: 4-bit ROM banking and 512x4 bits of built-in RAM.
// Both registers live in 0000-3FFF; address bit 8 picks which one is written.
type mbc2 struct {
	c *Cartridge
}

func (m *mbc2) writeControl(addr uint16, value byte) {
	if addr >= 0x4000 {
		return
	}
	if addr&0x0100 == 0 {
		m.c.writeRAMEnable(value)
		return
	}
	bank := int(value & 0x0F)
	if bank == 0 {
		bank = 1
	}
	m.c.SelectedROMBank = bank
}

func (m *mbc2) romOffset(addr uint16) int {
	if addr < 0x4000 {
		return m.c.bankOffset(0, addr)
	}
	return m.c.bankOffset(m.c.SelectedROMBank, addr)
}

// The 512 nibbles repeat through A000-BFFF.
func (m *mbc2) ramBank() (int, bool) { return 0, true }

// Only the low nibble exists; the upper bits float high.
func (m *mbc2) readRAM(addr uint16) byte {
	return m.c.readBankedRAM(addr) | 0xF0
}

func (m *mbc2) writeRAM(addr uint16, value byte) {
	m.c.writeBankedRAM(addr, value&0x0F)
}
