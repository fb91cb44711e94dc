package cart

// mbc1 implements MBC1 ROM/RAM banking.
//
//   - 0000-1FFF: RAM enable (0x0A in low nibble)
//   - 2000-3FFF: ROM bank low 5 bits (0 maps to 1)
//   - 4000-5FFF: 2-bit register, ROM bank bits 5-6 or RAM bank
//   - 6000-7FFF: mode select, 0 ROM banking (default), 1 RAM banking
//
// SelectedROMBank holds low5 | high2<<5 and SelectedRAMBank holds the 2-bit
// register; ModeSelect decides which of the two consumes it.
type mbc1 struct {
	c *Cartridge
}

func (m *mbc1) writeControl(addr uint16, value byte) {
	c := m.c
	switch {
	case addr < 0x2000:
		c.writeRAMEnable(value)
	case addr < 0x4000:
		low := int(value & 0x1F)
		if low == 0 {
			low = 1
		}
		c.SelectedROMBank = c.SelectedROMBank&0x60 | low
	case addr < 0x6000:
		high := int(value & 0x03)
		c.SelectedRAMBank = high
		c.SelectedROMBank = c.SelectedROMBank&0x1F | high<<5
	default:
		c.ModeSelect = value & 0x01
	}
}

func (m *mbc1) romOffset(addr uint16) int {
	c := m.c
	if addr < 0x4000 {
		// mode 1 also applies the high bits to the fixed area on large carts
		if c.ModeSelect == 1 {
			return c.bankOffset(c.SelectedRAMBank<<5, addr)
		}
		return c.bankOffset(0, addr)
	}
	if c.ModeSelect == 1 {
		return c.bankOffset(c.SelectedROMBank&0x1F, addr)
	}
	return c.bankOffset(c.SelectedROMBank, addr)
}

func (m *mbc1) ramBank() (int, bool) {
	if m.c.ModeSelect == 1 {
		return m.c.SelectedRAMBank, true
	}
	return 0, true
}

func (m *mbc1) readRAM(addr uint16) byte         { return m.c.readBankedRAM(addr) }
func (m *mbc1) writeRAM(addr uint16, value byte) { m.c.writeBankedRAM(addr, value) }
