package cart

// romOnly is a cartridge without a bank controller: 32KB of ROM mapped
// straight through, optionally with up to 8KB of RAM that needs no enable.
type romOnly struct {
	c *Cartridge
}

func (m *romOnly) writeControl(addr uint16, value byte) {
	// no registers: writes to ROM are ignored
}

func (m *romOnly) romOffset(addr uint16) int {
	if addr < 0x4000 {
		return m.c.bankOffset(0, addr)
	}
	return m.c.bankOffset(1, addr)
}

func (m *romOnly) ramBank() (int, bool) { return 0, true }

func (m *romOnly) readRAM(addr uint16) byte         { return m.c.readBankedRAM(addr) }
func (m *romOnly) writeRAM(addr uint16, value byte) { m.c.writeBankedRAM(addr, value) }
