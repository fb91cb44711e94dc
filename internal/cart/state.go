package cart

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
)

var ErrBadState = errors.New("cartridge state out of range")

// cartState is the gob payload for SaveState/LoadState. RAM contents are not
// included: they live in the save file owned by the loader.
type cartState struct {
	Type       Type
	ROMBank    int
	RAMBank    int
	RAMEnabled bool
	Mode       byte
	LatchPrev  byte
	Rumble     bool
	RTC        []byte
}

// SaveState serializes the banking registers and clock.
func (c *Cartridge) SaveState() []byte {
	s := cartState{
		Type:       c.Type,
		ROMBank:    c.SelectedROMBank,
		RAMBank:    c.SelectedRAMBank,
		RAMEnabled: c.EnableRAM,
		Mode:       c.ModeSelect,
		LatchPrev:  c.latchPrev,
		Rumble:     c.rumble,
	}
	if c.rtc != nil {
		s.RTC, _ = c.rtc.MarshalBinary()
	}
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// LoadState restores registers saved by SaveState on a cartridge of the same
// type.
func (c *Cartridge) LoadState(data []byte) error {
	var s cartState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("decode cartridge state: %w", err)
	}
	if s.Type != c.Type {
		return fmt.Errorf("state is for %s, cartridge is %s", s.Type, c.Type)
	}
	if err := c.checkRegisters(s); err != nil {
		return err
	}
	c.SelectedROMBank, c.SelectedRAMBank = s.ROMBank, s.RAMBank
	c.EnableRAM, c.ModeSelect = s.RAMEnabled, s.Mode
	c.latchPrev, c.rumble = s.LatchPrev, s.Rumble
	if c.rtc != nil && len(s.RTC) > 0 {
		if err := c.rtc.UnmarshalBinary(s.RTC); err != nil {
			return err
		}
	}
	return nil
}

// checkRegisters rejects register values no sequence of bus writes could
// produce on this cartridge's family.
func (c *Cartridge) checkRegisters(s cartState) error {
	maxROM, maxRAM := 1, 0
	switch c.Info.Family {
	case FamilyMBC1:
		maxROM, maxRAM = 0x7F, 0x03
	case FamilyMBC2:
		maxROM = 0x0F
	case FamilyMBC3:
		maxROM, maxRAM = 0x7F, 0x0F
	case FamilyMBC5:
		maxROM, maxRAM = 0x1FF, 0x0F
	}
	switch {
	case s.ROMBank < 0 || s.ROMBank > maxROM:
		return fmt.Errorf("%w: ROM bank %d", ErrBadState, s.ROMBank)
	case s.RAMBank < 0 || s.RAMBank > maxRAM:
		return fmt.Errorf("%w: RAM bank %d", ErrBadState, s.RAMBank)
	case s.Mode > 1:
		return fmt.Errorf("%w: mode %d", ErrBadState, s.Mode)
	}
	return nil
}
