package cart

import "testing"

func TestMBC1_ROMBanking(t *testing.T) {
	c, _ := bankedROM(t, byte(TypeMBC1), 0x02, 0x00) // 128KB, 8 banks

	// Bank0 region reads from bank 0 in mode 0
	if got := c.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}

	// Switchable bank defaults to 1
	if got := c.Read(0x4000); got != 0x01 {
		t.Fatalf("bank1 read got %02X want 01", got)
	}

	c.Write(0x2000, 0x03)
	if got := c.Read(0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %02X want 03", got)
	}

	// Writing 0 maps to 1
	c.Write(0x2000, 0x00)
	if got := c.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}

	// Bank 9 wraps on an 8 bank ROM
	c.Write(0x2000, 0x09)
	if got := c.Read(0x4000); got != 0x01 {
		t.Fatalf("bank9 wrap got %02X want 01", got)
	}
}

func TestMBC1_HighBitsExtendROMBank(t *testing.T) {
	c, _ := bankedROM(t, byte(TypeMBC1), 0x06, 0x00) // 2MB, 128 banks

	c.Write(0x2000, 0x05)
	c.Write(0x4000, 0x02)
	if got := c.ROMBank(); got != 0x45 {
		t.Fatalf("mode0 ROM bank got %02X want 45", got)
	}
	if got := c.Read(0x4000); got != 0x45 {
		t.Fatalf("mode0 read got %02X want 45", got)
	}

	// 0x20 aliases to 0x21: only the low 5 bits are checked for zero
	c.Write(0x2000, 0x00)
	c.Write(0x4000, 0x01)
	if got := c.ROMBank(); got != 0x21 {
		t.Fatalf("bank 0x20 alias got %02X want 21", got)
	}

	// mode 1: the 2-bit register no longer reaches the switchable area
	c.Write(0x6000, 0x01)
	if got := c.ROMBank(); got != 0x01 {
		t.Fatalf("mode1 ROM bank got %02X want 01", got)
	}
	if got := c.Read(0x0000); got != 0x20 {
		t.Fatalf("mode1 fixed area got %02X want 20", got)
	}
}

func TestMBC1_RAMBanking_Mode1(t *testing.T) {
	c, _ := bankedROM(t, byte(TypeMBC1RAMBattery), 0x02, 0x03) // 128KB ROM, 32KB RAM

	// Enable RAM
	c.Write(0x0000, 0x0A)

	// Select mode 1 (RAM banking)
	c.Write(0x6000, 0x01)
	// Select RAM bank 2 via high bits
	c.Write(0x4000, 0x02)

	// Write/read in A000-BFFF should go to bank 2
	c.Write(0xA000, 0x77)
	if got := c.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}
	if got := c.RAM()[2*RAMBankSize]; got != 0x77 {
		t.Fatalf("RAM image bank2 got %02X want 77", got)
	}

	// mode 0 pins RAM to bank 0
	c.Write(0x6000, 0x00)
	if got := c.RAMBank(); got != 0 {
		t.Fatalf("mode0 RAM bank got %d want 0", got)
	}
	if got := c.Read(0xA000); got != 0x00 {
		t.Fatalf("mode0 RAM read got %02X want 00", got)
	}
}

func TestMBC1_RAMDisabled(t *testing.T) {
	c, _ := bankedROM(t, byte(TypeMBC1RAM), 0x01, 0x02)
	c.RAM()[0] = 0x42

	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
	c.Write(0xA000, 0x11)
	if c.RAM()[0] != 0x42 {
		t.Fatalf("disabled RAM write went through")
	}

	c.Write(0x0000, 0x0A)
	if got := c.Read(0xA000); got != 0x42 {
		t.Fatalf("enabled RAM read got %02X want 42", got)
	}
	c.Write(0x0000, 0x00)
	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("re-disabled RAM read got %02X want FF", got)
	}
}
