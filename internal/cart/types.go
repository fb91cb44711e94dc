package cart

import "fmt"

// Type is the cartridge type byte found at OffsetType in the header.
type Type byte

// Cartridge types understood by the Transfer Pak. Values are fixed by the
// cartridge header format.
const (
	TypeROMOnly          Type = 0x00
	TypeMBC1             Type = 0x01
	TypeMBC1RAM          Type = 0x02
	TypeMBC1RAMBattery   Type = 0x03
	TypeMBC2             Type = 0x05
	TypeMBC2Battery      Type = 0x06
	TypeROMRAM           Type = 0x08
	TypeROMRAMBattery    Type = 0x09
	TypeMBC3TimerBattery Type = 0x0F
	TypeMBC3TimerRAMBat  Type = 0x10
	TypeMBC3             Type = 0x11
	TypeMBC3RAM          Type = 0x12
	TypeMBC3RAMBattery   Type = 0x13
	TypeMBC4             Type = 0x15
	TypeMBC4RAM          Type = 0x16
	TypeMBC4RAMBattery   Type = 0x17
	TypeMBC5             Type = 0x19
	TypeMBC5RAM          Type = 0x1A
	TypeMBC5RAMBattery   Type = 0x1B
	TypeMBC5Rumble       Type = 0x1C
	TypeMBC5RumbleRAM    Type = 0x1D
	TypeMBC5RumbleRAMBat Type = 0x1E
)

// Family groups cartridge types that share a memory bank controller.
type Family int

const (
	FamilyROMOnly Family = iota
	FamilyMBC1
	FamilyMBC2
	FamilyMBC3
	FamilyMBC5 // MBC4 shares the MBC5 register layout
)

func (f Family) String() string {
	switch f {
	case FamilyROMOnly:
		return "ROM"
	case FamilyMBC1:
		return "MBC1"
	case FamilyMBC2:
		return "MBC2"
	case FamilyMBC3:
		return "MBC3"
	case FamilyMBC5:
		return "MBC5"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// TypeInfo describes the hardware present on a cartridge type.
type TypeInfo struct {
	Name    string
	Family  Family
	RAM     bool
	Battery bool
	Timer   bool
	Rumble  bool
}

var typeTable = map[Type]TypeInfo{
	TypeROMOnly:          {Name: "ROM ONLY", Family: FamilyROMOnly},
	TypeROMRAM:           {Name: "ROM+RAM", Family: FamilyROMOnly, RAM: true},
	TypeROMRAMBattery:    {Name: "ROM+RAM+BATTERY", Family: FamilyROMOnly, RAM: true, Battery: true},
	TypeMBC1:             {Name: "MBC1", Family: FamilyMBC1},
	TypeMBC1RAM:          {Name: "MBC1+RAM", Family: FamilyMBC1, RAM: true},
	TypeMBC1RAMBattery:   {Name: "MBC1+RAM+BATTERY", Family: FamilyMBC1, RAM: true, Battery: true},
	TypeMBC2:             {Name: "MBC2", Family: FamilyMBC2, RAM: true},
	TypeMBC2Battery:      {Name: "MBC2+BATTERY", Family: FamilyMBC2, RAM: true, Battery: true},
	TypeMBC3:             {Name: "MBC3", Family: FamilyMBC3},
	TypeMBC3RAM:          {Name: "MBC3+RAM", Family: FamilyMBC3, RAM: true},
	TypeMBC3RAMBattery:   {Name: "MBC3+RAM+BATTERY", Family: FamilyMBC3, RAM: true, Battery: true},
	TypeMBC3TimerBattery: {Name: "MBC3+TIMER+BATTERY", Family: FamilyMBC3, Battery: true, Timer: true},
	TypeMBC3TimerRAMBat:  {Name: "MBC3+TIMER+RAM+BATTERY", Family: FamilyMBC3, RAM: true, Battery: true, Timer: true},
	TypeMBC4:             {Name: "MBC4", Family: FamilyMBC5},
	TypeMBC4RAM:          {Name: "MBC4+RAM", Family: FamilyMBC5, RAM: true},
	TypeMBC4RAMBattery:   {Name: "MBC4+RAM+BATTERY", Family: FamilyMBC5, RAM: true, Battery: true},
	TypeMBC5:             {Name: "MBC5", Family: FamilyMBC5},
	TypeMBC5RAM:          {Name: "MBC5+RAM", Family: FamilyMBC5, RAM: true},
	TypeMBC5RAMBattery:   {Name: "MBC5+RAM+BATTERY", Family: FamilyMBC5, RAM: true, Battery: true},
	TypeMBC5Rumble:       {Name: "MBC5+RUMBLE", Family: FamilyMBC5, Rumble: true},
	TypeMBC5RumbleRAM:    {Name: "MBC5+RUMBLE+RAM", Family: FamilyMBC5, RAM: true, Rumble: true},
	TypeMBC5RumbleRAMBat: {Name: "MBC5+RUMBLE+RAM+BATTERY", Family: FamilyMBC5, RAM: true, Battery: true, Rumble: true},
}

// LookupType returns the capabilities of a cartridge type byte. The boolean is
// false for bytes outside the known table.
func LookupType(code byte) (TypeInfo, bool) {
	info, ok := typeTable[Type(code)]
	return info, ok
}

func (t Type) String() string {
	if info, ok := typeTable[t]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(%02X)", byte(t))
}

// HasBattery reports whether the cartridge type keeps its RAM (and clock)
// alive with a battery, i.e. whether the RAM should be written back on eject.
func HasBattery(code byte) bool {
	return typeTable[Type(code)].Battery
}
