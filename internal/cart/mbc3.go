package cart

// mbc3 implements MBC3 banking and the clock registers.
//
//   - 0000-1FFF: RAM and RTC enable (0x0A in low nibble)
//   - 2000-3FFF: ROM bank 7 bits (0 maps to 1)
//   - 4000-5FFF: RAM bank 0-3, or 08-0C to map an RTC register at A000-BFFF
//   - 6000-7FFF: latch clock, writing 0x00 then 0x01 copies the live clock
type mbc3 struct {
	c *Cartridge
}

const (
	rtcSelectFirst = 0x08
	rtcSelectLast  = 0x0C
)

func (m *mbc3) writeControl(addr uint16, value byte) {
	c := m.c
	switch {
	case addr < 0x2000:
		c.writeRAMEnable(value)
	case addr < 0x4000:
		bank := int(value & 0x7F)
		if bank == 0 {
			bank = 1
		}
		c.SelectedROMBank = bank
	case addr < 0x6000:
		c.SelectedRAMBank = int(value & 0x0F)
	default:
		if c.latchPrev == 0x00 && value == 0x01 && c.rtc != nil {
			c.rtc.Latch()
		}
		c.latchPrev = value
	}
}

func (m *mbc3) romOffset(addr uint16) int {
	if addr < 0x4000 {
		return m.c.bankOffset(0, addr)
	}
	return m.c.bankOffset(m.c.SelectedROMBank, addr)
}

func (m *mbc3) ramBank() (int, bool) {
	if m.c.SelectedRAMBank >= rtcSelectFirst {
		return 0, false
	}
	return m.c.SelectedRAMBank & 0x03, true
}

// rtcRegister returns the selected clock register index, if any.
func (m *mbc3) rtcRegister() (int, bool) {
	sel := m.c.SelectedRAMBank
	if m.c.rtc == nil || sel < rtcSelectFirst || sel > rtcSelectLast {
		return 0, false
	}
	return sel - rtcSelectFirst, true
}

func (m *mbc3) readRAM(addr uint16) byte {
	if reg, ok := m.rtcRegister(); ok {
		if !m.c.EnableRAM {
			return openBus
		}
		return m.c.rtc.readRegister(reg)
	}
	return m.c.readBankedRAM(addr)
}

func (m *mbc3) writeRAM(addr uint16, value byte) {
	if reg, ok := m.rtcRegister(); ok {
		if m.c.EnableRAM {
			m.c.rtc.writeRegister(reg, value)
		}
		return
	}
	m.c.writeBankedRAM(addr, value)
}
