package cart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Header offsets. ref https://gbdev.io/pandocs/The_Cartridge_Header.html
const (
	OffsetLogo         = 0x0104 // 48 bytes
	OffsetTitle        = 0x0134 // 16 bytes
	OffsetManufacturer = 0x013F // 4 bytes, overlaps the title on newer carts
	OffsetCGBFlag      = 0x0143
	OffsetNewLicensee  = 0x0144
	OffsetSGBFlag      = 0x0146
	OffsetType         = 0x0147
	OffsetROMSize      = 0x0148
	OffsetRAMSize      = 0x0149
	OffsetDestination  = 0x014A
	OffsetOldLicensee  = 0x014B
	OffsetVersion      = 0x014C
	OffsetHeaderSum    = 0x014D
	OffsetGlobalSum    = 0x014E

	headerEnd = 0x014F
	// minHeader is the smallest slice InitCartridge accepts: through the RAM size byte.
	minHeader = OffsetRAMSize + 1
)

// ROM size codes.
const (
	ROMSize32K   = 0x00
	ROMSize64K   = 0x01
	ROMSize128K  = 0x02
	ROMSize256K  = 0x03
	ROMSize512K  = 0x04
	ROMSize1M    = 0x05
	ROMSize2M    = 0x06
	ROMSize4M    = 0x07
	ROMSize8M    = 0x08
	ROMSize1152K = 0x52
	ROMSize1280K = 0x53
	ROMSize1536K = 0x54
)

// RAM size codes. With MBC2, RAMSizeNone still means the built-in 512x4 bits.
const (
	RAMSizeNone = 0x00
	RAMSize2K   = 0x01
	RAMSize8K   = 0x02
	RAMSize32K  = 0x03
	RAMSize128K = 0x04
	RAMSize64K  = 0x05
)

var (
	ErrShortHeader    = errors.New("header too short")
	ErrUnknownType    = errors.New("unknown cartridge type")
	ErrUnknownROMSize = errors.New("unknown ROM size code")
	ErrUnknownRAMSize = errors.New("unknown RAM size code")
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the decoded cartridge header, used for logs and the viewer.
type Header struct {
	Title          string // (trimmed ASCII)
	Manufacturer   string // 0x013F-0x0142
	CGBFlag        byte   // 0x0143
	NewLicensee    string // 0x0144-0x0145 (ASCII), if old==0x33
	SGBFlag        byte   // 0x0146
	CartType       Type   // 0x0147
	ROMSizeCode    byte   // 0x0148
	RAMSizeCode    byte   // 0x0149
	Destination    byte   // 0x014A
	OldLicensee    byte   // 0x014B
	ROMVersion     byte   // 0x014C
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F

	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	RAMBanks     int
}

// ParseHeader decodes the full header from the start of a ROM image.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(rom))
	}

	rawTitle := rom[OffsetTitle : OffsetTitle+16]
	title := strings.TrimRight(string(rawTitle), "\x00")

	h := &Header{
		Title:          title,
		Manufacturer:   string(rom[OffsetManufacturer : OffsetManufacturer+4]),
		CGBFlag:        rom[OffsetCGBFlag],
		NewLicensee:    string(rom[OffsetNewLicensee : OffsetNewLicensee+2]),
		SGBFlag:        rom[OffsetSGBFlag],
		CartType:       Type(rom[OffsetType]),
		ROMSizeCode:    rom[OffsetROMSize],
		RAMSizeCode:    rom[OffsetRAMSize],
		Destination:    rom[OffsetDestination],
		OldLicensee:    rom[OffsetOldLicensee],
		ROMVersion:     rom[OffsetVersion],
		HeaderChecksum: rom[OffsetHeaderSum],
		GlobalChecksum: binary.BigEndian.Uint16(rom[OffsetGlobalSum : OffsetGlobalSum+2]),
	}

	h.ROMBanks, _ = decodeROMSize(h.ROMSizeCode)
	h.ROMSizeBytes = h.ROMBanks * ROMBankSize
	info, _ := LookupType(byte(h.CartType))
	h.RAMSizeBytes, h.RAMBanks, _ = decodeRAMSize(info, h.RAMSizeCode)

	return h, nil
}

// HeaderChecksumOK verifies the boot ROM checksum over 0x0134-0x014C.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) <= OffsetHeaderSum {
		return false
	}
	var sum byte
	for addr := OffsetTitle; addr <= OffsetVersion; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[OffsetHeaderSum]
}

// LogoOK reports whether the logo bitmap matches the one the boot ROM checks.
// A bad logo usually means a dirty contact on a real cartridge.
func LogoOK(rom []byte) bool {
	if len(rom) < OffsetLogo+len(nintendoLogo) {
		return false
	}
	for i, b := range nintendoLogo {
		if rom[OffsetLogo+i] != b {
			return false
		}
	}
	return true
}

// decodeROMSize returns the number of 16KB banks for a size code.
func decodeROMSize(code byte) (banks int, ok bool) {
	switch {
	case code <= ROMSize8M:
		return 2 << code, true
	case code == ROMSize1152K:
		return 72, true
	case code == ROMSize1280K:
		return 80, true
	case code == ROMSize1536K:
		return 96, true
	}
	return 2, false
}

// decodeRAMSize returns the RAM byte total and 8KB bank count for a size code.
func decodeRAMSize(info TypeInfo, code byte) (size, banks int, ok bool) {
	if info.Family == FamilyMBC2 {
		return mbc2RAMSize, 1, true
	}
	switch code {
	case RAMSizeNone:
		size = 0
	case RAMSize2K:
		size = 2 * 1024
	case RAMSize8K:
		size = 8 * 1024
	case RAMSize32K:
		size = 32 * 1024
	case RAMSize128K:
		size = 128 * 1024
	case RAMSize64K:
		size = 64 * 1024
	default:
		return 0, 0, false
	}
	if !info.RAM || size == 0 {
		return 0, 0, true
	}
	banks = size / RAMBankSize
	if banks == 0 {
		banks = 1 // 2KB carts mirror a partial bank
	}
	return size, banks, true
}

// InitCartridge classifies a header and returns a cartridge in its power-on
// register state. header is indexed at absolute cartridge offsets, so the first
// 0x150 bytes of a ROM image are a valid argument.
//
// Unknown type or size codes are not fatal: the cartridge is still returned,
// classified as ROM only (or with the smallest ROM), together with an error
// wrapping ErrUnknownType or ErrUnknownROMSize.
func InitCartridge(header []byte, filename string) (*Cartridge, error) {
	if len(header) < minHeader {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(header))
	}

	var errs []error
	code := header[OffsetType]
	info, ok := LookupType(code)
	if !ok {
		errs = append(errs, fmt.Errorf("%w: %02X", ErrUnknownType, code))
		code = byte(TypeROMOnly)
		info = typeTable[TypeROMOnly]
	}

	romBanks, ok := decodeROMSize(header[OffsetROMSize])
	if !ok {
		errs = append(errs, fmt.Errorf("%w: %02X", ErrUnknownROMSize, header[OffsetROMSize]))
	}
	ramSize, ramBanks, ok := decodeRAMSize(info, header[OffsetRAMSize])
	if !ok {
		errs = append(errs, fmt.Errorf("%w: %02X", ErrUnknownRAMSize, header[OffsetRAMSize]))
	}

	c := &Cartridge{
		Type:        Type(code),
		Info:        info,
		Filename:    filename,
		ROMSize:     romBanks * ROMBankSize,
		RAMSize:     ramSize,
		NumROMBanks: romBanks,
		NumRAMBanks: ramBanks,
	}
	copy(c.Title[:], header[OffsetTitle:OffsetTitle+16])
	if info.Timer {
		c.rtc = NewRTC()
	}
	c.mbc = newController(c)
	c.ResetRegisters()

	return c, errors.Join(errs...)
}

// NewCartridge parses the header at the start of rom and attaches rom as the
// cartridge's ROM image.
func NewCartridge(rom []byte, filename string) (*Cartridge, error) {
	c, err := InitCartridge(rom, filename)
	if c != nil {
		c.SetROM(rom)
	}
	return c, err
}

// NintendoLogo returns the logo bitmap the boot ROM compares against.
func NintendoLogo() [48]byte { return nintendoLogo }
