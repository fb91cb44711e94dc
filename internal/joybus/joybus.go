package joybus

import (
	"errors"
	"fmt"
)

// Controller commands that reach the pak.
const (
	CmdInfo  = 0x00
	CmdRead  = 0x02
	CmdWrite = 0x03
	CmdReset = 0xFF
)

const (
	// BlockSize is the payload of one pak read or write.
	BlockSize = 32

	addressMask = 0xFFE0

	// Identity bytes of a standard controller.
	controllerID0 = 0x05
	controllerID1 = 0x00

	pakPresent = 0x01
	pakAbsent  = 0x02
)

var (
	ErrShortCommand   = errors.New("short command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrAddressCRC     = errors.New("address CRC mismatch")
)

// Pak is a per-byte accessory such as a Transfer Pak.
type Pak interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

type resetter interface {
	Reset()
}

// ReadBlock fills buf with consecutive bytes starting at addr.
func ReadBlock(p Pak, addr uint16, buf []byte) {
	for i := range buf {
		buf[i] = p.Read(addr + uint16(i))
	}
}

// WriteBlock writes data to consecutive addresses starting at addr.
func WriteBlock(p Pak, addr uint16, data []byte) {
	for i, b := range data {
		p.Write(addr+uint16(i), b)
	}
}

// Port answers controller commands for one port. A nil Pak means the
// controller has nothing plugged in.
type Port struct {
	Pak Pak
}

func NewPort(p Pak) *Port {
	return &Port{Pak: p}
}

// Handle executes one command frame and returns the reply frame.
func (pt *Port) Handle(cmd []byte) ([]byte, error) {
	if len(cmd) == 0 {
		return nil, ErrShortCommand
	}
	switch cmd[0] {
	case CmdInfo, CmdReset:
		if cmd[0] == CmdReset {
			if r, ok := pt.Pak.(resetter); ok {
				r.Reset()
			}
		}
		status := byte(pakAbsent)
		if pt.Pak != nil {
			status = pakPresent
		}
		return []byte{controllerID0, controllerID1, status}, nil

	case CmdRead:
		addr, err := decodeAddress(cmd, 3)
		if err != nil {
			return nil, err
		}
		reply := make([]byte, BlockSize+1)
		if pt.Pak == nil {
			return reply, nil
		}
		ReadBlock(pt.Pak, addr, reply[:BlockSize])
		reply[BlockSize] = DataCRC(reply[:BlockSize])
		return reply, nil

	case CmdWrite:
		addr, err := decodeAddress(cmd, 3+BlockSize)
		if err != nil {
			return nil, err
		}
		data := cmd[3 : 3+BlockSize]
		if pt.Pak == nil {
			return []byte{0}, nil
		}
		WriteBlock(pt.Pak, addr, data)
		return []byte{DataCRC(data)}, nil
	}
	return nil, fmt.Errorf("%w: %02X", ErrUnknownCommand, cmd[0])
}

func decodeAddress(cmd []byte, need int) (uint16, error) {
	if len(cmd) < need {
		return 0, fmt.Errorf("%w: command %02X has %d bytes, need %d", ErrShortCommand, cmd[0], len(cmd), need)
	}
	raw := uint16(cmd[1])<<8 | uint16(cmd[2])
	addr := raw & addressMask
	if crc := byte(raw & 0x1F); crc != AddressCRC(addr) {
		return 0, fmt.Errorf("%w: %04X", ErrAddressCRC, raw)
	}
	return addr, nil
}
