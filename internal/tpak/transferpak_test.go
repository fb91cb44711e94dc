package tpak

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"
)

// testCart builds an MBC5 cartridge with 8KB RAM whose ROM banks carry their
// own bank number in the first byte.
func testCart(t *testing.T) *cart.Cartridge {
	t.Helper()
	rom := make([]byte, 4*cart.ROMBankSize)
	rom[cart.OffsetType] = byte(cart.TypeMBC5RAMBattery)
	rom[cart.OffsetROMSize] = cart.ROMSize64K
	rom[cart.OffsetRAMSize] = cart.RAMSize8K
	copy(rom[cart.OffsetTitle:], "TPAKTEST")
	for bank := 0; bank < 4; bank++ {
		rom[bank*cart.ROMBankSize] = byte(0xB0 + bank)
	}
	c, err := cart.NewCartridge(rom, "tpaktest.gb")
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	c.SetRAM(make([]byte, c.RAMSize))
	return c
}

func TestNoCartridgeReadsOpenBus(t *testing.T) {
	tp := New()
	tp.Write(RegionPower, PowerOn)
	tp.Write(RegionAccess, 0x01)
	for addr := 0xC000; addr <= 0xFFFF; addr += 0x111 {
		tp.Write(uint16(addr), 0x00)
		if got := tp.Read(uint16(addr)); got != 0xFF {
			t.Fatalf("read %04X without cartridge got %02X want FF", addr, got)
		}
	}
	if got := tp.Read(RegionAccess); got&StatusRemoved == 0 {
		t.Fatalf("status %02X missing REMOVED", got)
	}
}

func TestUnpoweredWindow(t *testing.T) {
	tp := New()
	c := testCart(t)
	tp.Insert(c)
	if got := tp.Read(0xC000); got != 0xFF {
		t.Fatalf("unpowered read got %02X want FF", got)
	}
	tp.Write(0xC000+0x2000, 0x02) // would select ROM bank 2
	if c.ROMBank() != 1 {
		t.Fatalf("unpowered write reached the cartridge: bank %d", c.ROMBank())
	}
}

func TestPowerAndAccess(t *testing.T) {
	tp := New()
	tp.Insert(testCart(t))
	if got := tp.Read(RegionPower); got != 0x00 {
		t.Fatalf("power read got %02X want 00", got)
	}
	tp.Write(RegionPower+0x0123, 0x55) // ignored
	if tp.Powered() {
		t.Fatalf("power set by 55")
	}
	tp.Write(RegionPower, PowerOn)
	if got := tp.Read(RegionPower + 0x0FFF); got != PowerOn {
		t.Fatalf("power read got %02X want 84", got)
	}
	if got := tp.Status(); got != StatusPowered {
		t.Fatalf("status got %02X want 80", got)
	}

	tp.Write(RegionAccess, 0x01)
	if got := tp.Status(); got != StatusPowered|StatusReady {
		t.Fatalf("status got %02X want 81", got)
	}
	if !tp.AccessChanged() {
		t.Fatalf("access change not reported")
	}
	if tp.AccessChanged() {
		t.Fatalf("access change reported twice")
	}
	tp.Write(RegionAccess, 0x01)
	if tp.AccessChanged() {
		t.Fatalf("repeated enable reported as a change")
	}
	tp.Write(RegionAccess+0x0800, 0x00)
	if !tp.AccessChanged() || tp.AccessEnabled() {
		t.Fatalf("disable not applied")
	}

	tp.Write(RegionPower, PowerOff)
	if tp.Powered() {
		t.Fatalf("still powered after FE")
	}
}

func TestResetOneShot(t *testing.T) {
	tp := New()
	c := testCart(t)
	tp.Insert(c)
	tp.Write(RegionPower, PowerOn)
	tp.Write(RegionAccess, 0x01)
	tp.Write(RegionBank, 0x02)

	tp.Reset()
	if tp.Powered() || tp.AccessEnabled() || tp.Bank() != 0 {
		t.Fatalf("reset left power=%t access=%t bank=%d", tp.Powered(), tp.AccessEnabled(), tp.Bank())
	}
	if tp.Cartridge() != c {
		t.Fatalf("reset detached the cartridge")
	}
	if got := tp.Status(); got&StatusWasReset == 0 {
		t.Fatalf("status peek got %02X, missing WAS_RESET", got)
	}
	if got := tp.Read(RegionAccess); got != StatusWasReset {
		t.Fatalf("first status read got %02X want 04", got)
	}
	if got := tp.Read(RegionAccess); got != 0x00 {
		t.Fatalf("second status read got %02X want 00", got)
	}
	if got := tp.Status(); got&StatusIsResetting != 0 {
		t.Fatalf("IS_RESETTING held: %02X", got)
	}
}

func TestBankRegister(t *testing.T) {
	tp := New()
	tp.Write(RegionBank, 0xFF)
	if tp.Bank() != 3 {
		t.Fatalf("bank got %d want 3", tp.Bank())
	}
	if got := tp.Read(RegionBank); got != 0x00 {
		t.Fatalf("unpowered bank read got %02X want 00", got)
	}
	tp.Write(RegionPower, PowerOn)
	if got := tp.Read(RegionBank + 0x0FFF); got != 0x03 {
		t.Fatalf("bank read got %02X want 03", got)
	}
	if got := tp.Read(0x9000); got != 0x00 {
		t.Fatalf("unused region got %02X want 00", got)
	}
	if got := tp.Read(0x1234); got != 0x00 {
		t.Fatalf("low region got %02X want 00", got)
	}
}

func TestWindowMapping(t *testing.T) {
	tp := New()
	c := testCart(t)
	tp.Insert(c)
	tp.Write(RegionPower, PowerOn)
	tp.Write(RegionAccess, 0x01)

	// window 0 shows cartridge 0x0000-0x3FFF
	tp.Write(RegionBank, 0)
	if got := tp.Read(0xC000); got != 0xB0 {
		t.Fatalf("bank 0 read got %02X want B0", got)
	}
	if got := tp.Read(0xC134); got != 'T' {
		t.Fatalf("title read got %02X want 54", got)
	}

	// window 1 shows the switchable ROM bank; select bank 3 through window 0
	tp.Write(0xE000, 0x03) // 0x2000 on the cartridge
	tp.Write(RegionBank, 1)
	if got := tp.Read(0xC000); got != 0xB3 {
		t.Fatalf("bank 1 read got %02X want B3", got)
	}
	if got := tp.CartAddress(0xD234); got != 0x5234 {
		t.Fatalf("cart address got %04X want 5234", got)
	}

	// window 2 covers the cartridge RAM area from 0xA000
	tp.Write(RegionBank, 0)
	tp.Write(0xC000, 0x0A) // RAM enable
	tp.Write(RegionBank, 2)
	tp.Write(0xE000, 0x5A) // cartridge 0xA000
	if got := c.RAM()[0]; got != 0x5A {
		t.Fatalf("RAM write got %02X want 5A", got)
	}
	if got := tp.Read(0xE000); got != 0x5A {
		t.Fatalf("RAM read got %02X want 5A", got)
	}
	// window 2 below 0xA000 is cartridge 0x8000-0x9FFF: open bus
	if got := tp.Read(0xC000); got != 0xFF {
		t.Fatalf("cartridge 8000 got %02X want FF", got)
	}
}

func TestPowerOnResetsBanking(t *testing.T) {
	tp := New()
	c := testCart(t)
	tp.Insert(c)
	tp.Write(RegionPower, PowerOn)
	tp.Write(0xE000, 0x02)
	if c.ROMBank() != 2 {
		t.Fatalf("bank select failed: %d", c.ROMBank())
	}
	tp.Write(RegionPower, PowerOff)
	tp.Write(RegionPower, PowerOn)
	if c.ROMBank() != 1 {
		t.Fatalf("power cycle left bank %d want 1", c.ROMBank())
	}
}

func TestEject(t *testing.T) {
	tp := New()
	c := testCart(t)
	tp.Insert(c)
	if got := tp.Eject(); got != c {
		t.Fatalf("Eject returned %p want %p", got, c)
	}
	if tp.Cartridge() != nil || tp.Status()&StatusRemoved == 0 {
		t.Fatalf("cartridge still attached")
	}
}

func TestStateRoundTrip(t *testing.T) {
	tp := New()
	tp.Write(RegionPower, PowerOn)
	tp.Write(RegionAccess, 0x01)
	tp.Write(RegionBank, 0x02)
	s := tp.State()

	n := New()
	n.SetState(s)
	if !n.Powered() || !n.AccessEnabled() || n.Bank() != 2 {
		t.Fatalf("restored state %+v", n.State())
	}
	if n.AccessChanged() {
		t.Fatalf("restore reported an access change")
	}
}
