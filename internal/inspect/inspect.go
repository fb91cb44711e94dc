// Package inspect formats Transfer Pak and cartridge state for display.
package inspect

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/tpak"
)

const bytesPerRow = 16

// Reader is anything addressable byte by byte, such as a TransferPak.
type Reader interface {
	Read(addr uint16) byte
}

// HexDump renders rows lines of 16 bytes starting at base, with an ASCII
// column. Addresses wrap at 0xFFFF.
func HexDump(r Reader, base uint16, rows int) []string {
	out := make([]string, 0, rows)
	var sb strings.Builder
	for row := 0; row < rows; row++ {
		addr := base + uint16(row*bytesPerRow)
		sb.Reset()
		fmt.Fprintf(&sb, "%04X ", addr)
		var ascii [bytesPerRow]byte
		for i := 0; i < bytesPerRow; i++ {
			b := r.Read(addr + uint16(i))
			fmt.Fprintf(&sb, " %02X", b)
			if b >= 0x20 && b < 0x7F {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}
		sb.WriteString("  ")
		sb.Write(ascii[:])
		out = append(out, sb.String())
	}
	return out
}

// Status names the bits set in a Transfer Pak status byte.
func Status(s byte) string {
	var names []string
	for _, f := range []struct {
		bit  byte
		name string
	}{
		{tpak.StatusPowered, "POWERED"},
		{tpak.StatusRemoved, "REMOVED"},
		{tpak.StatusIsResetting, "RESETTING"},
		{tpak.StatusWasReset, "WAS_RESET"},
		{tpak.StatusReady, "READY"},
	} {
		if s&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("%02X (idle)", s)
	}
	return fmt.Sprintf("%02X %s", s, strings.Join(names, "|"))
}

// HeaderLines summarises a parsed header.
func HeaderLines(h *cart.Header) []string {
	info, known := cart.LookupType(byte(h.CartType))
	mbc := "?"
	if known {
		mbc = info.Family.String()
	}
	return []string{
		fmt.Sprintf("Title:   %s", h.Title),
		fmt.Sprintf("Type:    %02X %s (%s)", byte(h.CartType), h.CartType, mbc),
		fmt.Sprintf("ROM:     %dKB, %d banks", h.ROMSizeBytes/1024, h.ROMBanks),
		fmt.Sprintf("RAM:     %dB, %d banks", h.RAMSizeBytes, h.RAMBanks),
		fmt.Sprintf("Battery: %t  CGB: %02X  SGB: %02X", cart.HasBattery(byte(h.CartType)), h.CGBFlag, h.SGBFlag),
		fmt.Sprintf("Version: %d  Sum: %02X  Global: %04X", h.ROMVersion, h.HeaderChecksum, h.GlobalChecksum),
	}
}

// Logo dimensions in pixels.
const (
	LogoWidth  = 48
	LogoHeight = 8
)

// LogoPixel reports whether pixel (x, y) of a 48-byte header logo is set.
// The logo is two rows of twelve 4x4 tiles; each tile is two bytes, one
// nibble per pixel row.
func LogoPixel(logo []byte, x, y int) bool {
	if x < 0 || x >= LogoWidth || y < 0 || y >= LogoHeight {
		return false
	}
	half, tile, row := y/4, x/4, y%4
	i := half*24 + tile*2 + row/2
	if i >= len(logo) {
		return false
	}
	nib := logo[i] >> 4
	if row%2 == 1 {
		nib = logo[i] & 0x0F
	}
	return nib&(0x08>>(x%4)) != 0
}

// LogoImage renders a header logo as a 48x8 image, dark on light.
func LogoImage(logo []byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, LogoWidth, LogoHeight))
	on := color.RGBA{0x0F, 0x38, 0x0F, 0xFF}
	off := color.RGBA{0x9B, 0xBC, 0x0F, 0xFF}
	for y := 0; y < LogoHeight; y++ {
		for x := 0; x < LogoWidth; x++ {
			if LogoPixel(logo, x, y) {
				img.SetRGBA(x, y, on)
			} else {
				img.SetRGBA(x, y, off)
			}
		}
	}
	return img
}
