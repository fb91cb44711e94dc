package host

import (
	"bytes"
	"errors"
	"testing"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/tpak"
)

func patternROM(cartType, romCode byte, banks int) []byte {
	rom := make([]byte, banks*cart.ROMBankSize)
	for i := range rom {
		rom[i] = byte(i>>14) ^ byte(i*31)
	}
	rom[cart.OffsetType] = cartType
	rom[cart.OffsetROMSize] = romCode
	rom[cart.OffsetRAMSize] = cart.RAMSizeNone
	return rom
}

func TestDumpROM(t *testing.T) {
	cases := []struct {
		name     string
		cartType cart.Type
		romCode  byte
		banks    int
	}{
		{"ROM", cart.TypeROMOnly, cart.ROMSize32K, 2},
		{"MBC1", cart.TypeMBC1, cart.ROMSize2M, 128},
		{"MBC2", cart.TypeMBC2, cart.ROMSize256K, 16},
		{"MBC3", cart.TypeMBC3, cart.ROMSize1M, 64},
		{"MBC5", cart.TypeMBC5, cart.ROMSize8M, 512},
	}
	for _, tc := range cases {
		rom := patternROM(byte(tc.cartType), tc.romCode, tc.banks)
		c, err := cart.NewCartridge(rom, tc.name)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		tp := tpak.New()
		tp.Insert(c)
		var out bytes.Buffer
		n, err := DumpROM(tp, &out)
		if err != nil {
			t.Fatalf("%s: DumpROM: %v", tc.name, err)
		}
		if n != len(rom) || !bytes.Equal(out.Bytes(), rom) {
			for i := range rom {
				if out.Bytes()[i] != rom[i] {
					t.Fatalf("%s: dump differs at %X (bank %d): got %02X want %02X", tc.name, i, i/cart.ROMBankSize, out.Bytes()[i], rom[i])
				}
			}
			t.Fatalf("%s: dump length %d want %d", tc.name, n, len(rom))
		}
		if c.ROMBank() != 1 {
			t.Fatalf("%s: banking left at %d", tc.name, c.ROMBank())
		}
	}
}

func TestDumpROM_NoCartridge(t *testing.T) {
	if _, err := DumpROM(tpak.New(), &bytes.Buffer{}); !errors.Is(err, ErrNoCartridge) {
		t.Fatalf("err got %v", err)
	}
}
