package tpak

import "github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"

// Status byte bits, read from the access-control region.
const (
	StatusReady       = 0x01 // powered and cartridge access enabled
	StatusWasReset    = 0x04 // one-shot after Reset
	StatusIsResetting = 0x08 // never held: Reset completes synchronously
	StatusRemoved     = 0x40 // no cartridge attached
	StatusPowered     = 0x80
)

// Values written to the power-control region.
const (
	PowerOn  = 0x84
	PowerOff = 0xFE
)

// Region bases of the accessory address space.
const (
	RegionPower  = 0x8000
	RegionBank   = 0xA000
	RegionAccess = 0xB000
	RegionWindow = 0xC000

	bankMask   = 0x03
	windowMask = 0x3FFF
	openBus    = 0xFF
)

// TransferPak is the accessory attached to one controller port. It is not
// safe for concurrent use; one goroutine drives it.
type TransferPak struct {
	cart *cart.Cartridge

	power         bool
	access        bool
	accessChanged bool
	bank          byte
	justReset     bool
}

func New() *TransferPak {
	return &TransferPak{}
}

// Insert attaches a cartridge, replacing any previous one.
func (tp *TransferPak) Insert(c *cart.Cartridge) {
	tp.cart = c
	if c != nil && tp.power {
		c.ResetRegisters()
	}
}

// Eject detaches and returns the current cartridge.
func (tp *TransferPak) Eject() *cart.Cartridge {
	c := tp.cart
	tp.cart = nil
	return c
}

func (tp *TransferPak) Cartridge() *cart.Cartridge { return tp.cart }
func (tp *TransferPak) Powered() bool              { return tp.power }
func (tp *TransferPak) AccessEnabled() bool        { return tp.access }
func (tp *TransferPak) Bank() byte                 { return tp.bank }

// AccessChanged reports whether the access state changed since the last call.
func (tp *TransferPak) AccessChanged() bool {
	v := tp.accessChanged
	tp.accessChanged = false
	return v
}

// Reset powers the pak down and clears its registers. The cartridge stays
// attached; the next status read reports StatusWasReset.
func (tp *TransferPak) Reset() {
	tp.power = false
	tp.access = false
	tp.accessChanged = false
	tp.bank = 0
	tp.justReset = true
}

// Status returns the status byte without consuming the reset flag.
func (tp *TransferPak) Status() byte {
	var s byte
	if tp.power {
		s |= StatusPowered
		if tp.access {
			s |= StatusReady
		}
	}
	if tp.justReset {
		s |= StatusWasReset
	}
	if tp.cart == nil {
		s |= StatusRemoved
	}
	return s
}

func (tp *TransferPak) Read(addr uint16) byte {
	switch {
	case addr >= RegionWindow:
		if tp.cart == nil || !tp.power {
			return openBus
		}
		return tp.cart.Read(tp.cartAddr(addr))
	case addr >= RegionAccess:
		s := tp.Status()
		tp.justReset = false
		return s
	case addr >= RegionBank:
		if tp.power {
			return tp.bank
		}
		return 0x00
	case addr >= RegionPower && addr < RegionPower+0x1000:
		if tp.power {
			return PowerOn
		}
		return 0x00
	default:
		return 0x00
	}
}

func (tp *TransferPak) Write(addr uint16, value byte) {
	switch {
	case addr >= RegionWindow:
		if tp.cart == nil || !tp.power {
			return
		}
		tp.cart.Write(tp.cartAddr(addr), value)
	case addr >= RegionAccess:
		on := value&0x01 != 0
		if on != tp.access {
			tp.access = on
			tp.accessChanged = true
		}
	case addr >= RegionBank:
		tp.bank = value & bankMask
	case addr >= RegionPower && addr < RegionPower+0x1000:
		switch value {
		case PowerOn:
			if !tp.power && tp.cart != nil {
				tp.cart.ResetRegisters()
			}
			tp.power = true
		case PowerOff:
			tp.power = false
		}
	}
}

// CartAddress returns the cartridge bus address that a window address maps to
// under the current paging bank.
func (tp *TransferPak) CartAddress(addr uint16) uint16 {
	return tp.cartAddr(addr)
}

// cartAddr maps the 16KB window at C000-FFFF onto the cartridge bus. The
// 2-bit bank register picks one of four 16KB slices; bank 2 puts cartridge RAM
// (A000-BFFF) at E000-FFFF.
func (tp *TransferPak) cartAddr(addr uint16) uint16 {
	return uint16(tp.bank)<<14 | addr&windowMask
}

// State is the register snapshot carried in save states.
type State struct {
	Power  bool
	Access bool
	Bank   byte
}

func (tp *TransferPak) State() State {
	return State{Power: tp.power, Access: tp.access, Bank: tp.bank}
}

// SetState restores registers from a snapshot without touching the cartridge.
func (tp *TransferPak) SetState(s State) {
	tp.power, tp.access, tp.bank = s.Power, s.Access, s.Bank&bankMask
	tp.accessChanged, tp.justReset = false, false
}
