package host

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/tpak"
)

// writeCart performs a cartridge bus write through the pak's paging window.
func writeCart(tp *tpak.TransferPak, addr uint16, v byte) {
	tp.Write(tpak.RegionBank, byte(addr>>14))
	tp.Write(tpak.RegionWindow|addr&0x3FFF, v)
}

// readWindow copies one 16KB cartridge window (0 or 1) into buf.
func readWindow(tp *tpak.TransferPak, window byte, buf []byte) {
	tp.Write(tpak.RegionBank, window)
	for i := range buf {
		buf[i] = tp.Read(tpak.RegionWindow + uint16(i))
	}
}

// DumpROM reads every ROM bank of the inserted cartridge through the pak, the
// way a controller-side dumper would, and writes the image to w. The pak is
// left powered with access enabled and the cartridge in its power-on banking.
func DumpROM(tp *tpak.TransferPak, w io.Writer) (int, error) {
	c := tp.Cartridge()
	if c == nil {
		return 0, ErrNoCartridge
	}
	tp.Write(tpak.RegionPower, tpak.PowerOn)
	tp.Write(tpak.RegionAccess, 0x01)

	buf := make([]byte, cart.ROMBankSize)
	total := 0
	for bank := 0; bank < c.NumROMBanks; bank++ {
		window := selectBank(tp, c.Info.Family, bank)
		readWindow(tp, window, buf)
		n, err := w.Write(buf)
		total += n
		if err != nil {
			return total, err
		}
	}
	// a power cycle puts the banking registers back
	tp.Write(tpak.RegionPower, tpak.PowerOff)
	tp.Write(tpak.RegionPower, tpak.PowerOn)
	tp.Write(tpak.RegionBank, 0)
	return total, nil
}

// selectBank maps ROM bank n and returns the window (0 or 1) it appears in.
func selectBank(tp *tpak.TransferPak, family cart.Family, n int) byte {
	if n == 0 {
		if family == cart.FamilyMBC1 {
			writeCart(tp, 0x6000, 0x00)
		}
		return 0
	}
	switch family {
	case cart.FamilyMBC1:
		writeCart(tp, 0x4000, byte(n>>5))
		if n&0x1F == 0 {
			// 0x20, 0x40, 0x60 only show in the fixed area in mode 1
			writeCart(tp, 0x6000, 0x01)
			return 0
		}
		writeCart(tp, 0x6000, 0x00)
		writeCart(tp, 0x2000, byte(n&0x1F))
	case cart.FamilyMBC2:
		writeCart(tp, 0x2100, byte(n))
	case cart.FamilyMBC3:
		writeCart(tp, 0x2000, byte(n))
	case cart.FamilyMBC5:
		writeCart(tp, 0x2000, byte(n))
		writeCart(tp, 0x3000, byte(n>>8))
	}
	return 1
}
