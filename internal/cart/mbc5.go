package cart

// mbc5 implements MBC5 (and the register-compatible MBC4): 9-bit ROM banking
// and 4-bit RAM banking. On rumble carts bit 3 of the RAM bank register drives
// the motor instead of selecting RAM.
type mbc5 struct {
	c *Cartridge
}

func (m *mbc5) writeControl(addr uint16, value byte) {
	c := m.c
	switch {
	case addr < 0x2000:
		c.writeRAMEnable(value)
	case addr < 0x3000:
		// low 8 bits of ROM bank
		c.SelectedROMBank = c.SelectedROMBank&0x100 | int(value)
	case addr < 0x4000:
		// high bit of ROM bank (bit8)
		c.SelectedROMBank = c.SelectedROMBank&0xFF | int(value&0x01)<<8
	case addr < 0x6000:
		if c.Info.Rumble {
			c.rumble = value&0x08 != 0
			c.SelectedRAMBank = int(value & 0x07)
		} else {
			c.SelectedRAMBank = int(value & 0x0F)
		}
	}
}

func (m *mbc5) romOffset(addr uint16) int {
	if addr < 0x4000 {
		return m.c.bankOffset(0, addr)
	}
	bank := m.c.SelectedROMBank
	if bank == 0 {
		bank = 1
	}
	return m.c.bankOffset(bank, addr)
}

func (m *mbc5) ramBank() (int, bool) { return m.c.SelectedRAMBank, true }

func (m *mbc5) readRAM(addr uint16) byte         { return m.c.readBankedRAM(addr) }
func (m *mbc5) writeRAM(addr uint16, value byte) { m.c.writeBankedRAM(addr, value) }
