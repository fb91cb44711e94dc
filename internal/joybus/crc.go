package joybus

// addressCRCTable holds the CRC contribution of each address bit 5-15.
var addressCRCTable = [16]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x15, 0x1F, 0x0B,
	0x16, 0x19, 0x07, 0x0E, 0x1C, 0x0D, 0x1A, 0x01,
}

// AddressCRC returns the 5-bit check carried in the low bits of a pak address.
func AddressCRC(addr uint16) byte {
	var crc byte
	for bit := 15; bit >= 5; bit-- {
		if addr>>bit&1 != 0 {
			crc ^= addressCRCTable[bit]
		}
	}
	return crc & 0x1F
}

// EncodeAddress aligns addr to a block and appends its CRC.
func EncodeAddress(addr uint16) uint16 {
	addr &= addressMask
	return addr | uint16(AddressCRC(addr))
}

// DataCRC is the 8-bit CRC (polynomial 0x85) the pak returns after a block.
// The register is shifted through 8 extra zero bits at the end.
func DataCRC(data []byte) byte {
	var crc byte
	for i := 0; i <= len(data); i++ {
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			var tap byte
			if crc&0x80 != 0 {
				tap = 0x85
			}
			crc <<= 1
			if i < len(data) && data[i]&mask != 0 {
				crc |= 1
			}
			crc ^= tap
		}
	}
	return crc
}
