package cart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"
)

// nowUnix is swapped in tests.
var nowUnix = func() int64 { return time.Now().Unix() }

// Bits of the RTC day-high register (DH).
const (
	DayHighBit8  = 0x01 // bit 8 of the day counter
	DayHighHalt  = 0x40
	DayHighCarry = 0x80 // day counter overflowed past 511
)

// RTC register indices, as selected by writing 0x08-0x0C to 4000-5FFF.
const (
	RegSeconds = iota
	RegMinutes
	RegHours
	RegDayLow
	RegDayHigh
	rtcRegisters
)

// RTCFooterSize is the length of the clock block appended to save files.
const RTCFooterSize = 48

var ErrRTCFooter = errors.New("bad RTC footer")

// Clock is a decoded set of MBC3 clock registers.
type Clock struct {
	Seconds byte   // 0-59
	Minutes byte   // 0-59
	Hours   byte   // 0-23
	Days    uint16 // 0-511
	Halt    bool
	Carry   bool
}

// Bytes encodes the clock as the five RTC registers S, M, H, DL, DH.
func (c Clock) Bytes() [5]byte {
	high := byte(c.Days>>8) & DayHighBit8
	if c.Halt {
		high |= DayHighHalt
	}
	if c.Carry {
		high |= DayHighCarry
	}
	return [5]byte{c.Seconds, c.Minutes, c.Hours, byte(c.Days), high}
}

// ClockFromBytes decodes the five RTC registers. Unused bits are dropped.
func ClockFromBytes(b [5]byte) Clock {
	return Clock{
		Seconds: b[RegSeconds] & 0x3F,
		Minutes: b[RegMinutes] & 0x3F,
		Hours:   b[RegHours] & 0x1F,
		Days:    uint16(b[RegDayLow]) | uint16(b[RegDayHigh]&DayHighBit8)<<8,
		Halt:    b[RegDayHigh]&DayHighHalt != 0,
		Carry:   b[RegDayHigh]&DayHighCarry != 0,
	}
}

func (c Clock) String() string {
	return fmt.Sprintf("day %03d %02d:%02d:%02d halt=%t carry=%t",
		c.Days, c.Hours, c.Minutes, c.Seconds, c.Halt, c.Carry)
}

// advance runs the seconds -> minutes -> hours -> days carry chain.
func (c *Clock) advance(secs uint64) {
	if c.Halt || secs == 0 {
		return
	}
	total := uint64(c.Seconds) + secs
	c.Seconds = byte(total % 60)
	total = uint64(c.Minutes) + total/60
	c.Minutes = byte(total % 60)
	total = uint64(c.Hours) + total/60
	c.Hours = byte(total % 24)
	days := uint64(c.Days) + total/24
	if days > 511 {
		c.Carry = true
	}
	c.Days = uint16(days % 512)
}

// RTC is the MBC3 real-time clock: a live counter advanced by the host and a
// latched copy that the cartridge bus reads.
//
// The host's clock ticker and save flusher run on other goroutines than the
// cartridge bus, so all state is guarded by mu.
type RTC struct {
	mu       sync.Mutex
	live     Clock
	lastSync int64 // unix seconds of the last Sync, 0 before the first
	latched  [5]byte
}

func NewRTC() *RTC {
	return &RTC{}
}

// Advance moves the live counter forward. A halted clock does not move.
func (r *RTC) Advance(seconds uint64) {
	r.mu.Lock()
	r.live.advance(seconds)
	r.mu.Unlock()
}

// Sync advances the live counter by the whole seconds elapsed since the
// previous Sync. The first call only records the reference time.
func (r *RTC) Sync(now time.Time) {
	t := now.Unix()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastSync != 0 && t > r.lastSync {
		r.live.advance(uint64(t - r.lastSync))
	}
	if r.lastSync == 0 || t > r.lastSync {
		r.lastSync = t
	}
}

// Latch copies the live counter into the registers visible on the bus.
func (r *RTC) Latch() {
	r.mu.Lock()
	r.latched = r.live.Bytes()
	r.mu.Unlock()
}

// Live returns the running counter.
func (r *RTC) Live() Clock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// SetLive replaces the running counter.
func (r *RTC) SetLive(c Clock) {
	r.mu.Lock()
	r.live = c
	r.mu.Unlock()
}

// Latched returns the registers as last latched.
func (r *RTC) Latched() Clock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ClockFromBytes(r.latched)
}

func (r *RTC) readRegister(reg int) byte {
	if reg < 0 || reg >= rtcRegisters {
		return openBus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latched[reg]
}

// writeRegister sets a live register, which is how games set the clock.
func (r *RTC) writeRegister(reg int, value byte) {
	if reg < 0 || reg >= rtcRegisters {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.live.Bytes()
	b[reg] = value
	r.live = ClockFromBytes(b)
}

// MarshalBinary encodes the 48 byte save-file footer: the five live and five
// latched registers as little-endian uint32 values followed by a 64-bit unix
// timestamp.
func (r *RTC) MarshalBinary() ([]byte, error) {
	out := make([]byte, RTCFooterSize)
	r.mu.Lock()
	live, latched := r.live.Bytes(), r.latched
	r.mu.Unlock()
	for i := range live {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(live[i]))
		binary.LittleEndian.PutUint32(out[20+i*4:], uint32(latched[i]))
	}
	binary.LittleEndian.PutUint64(out[40:], uint64(nowUnix()))
	return out, nil
}

// UnmarshalBinary restores a footer written by MarshalBinary. The stored
// timestamp becomes the reference for the next Sync, so time spent while the
// cartridge was out is caught up.
func (r *RTC) UnmarshalBinary(data []byte) error {
	if len(data) < RTCFooterSize {
		return fmt.Errorf("%w: %d bytes", ErrRTCFooter, len(data))
	}
	var live, latched [5]byte
	for i := range live {
		live[i] = byte(binary.LittleEndian.Uint32(data[i*4:]))
		latched[i] = byte(binary.LittleEndian.Uint32(data[20+i*4:]))
	}
	ts := int64(binary.LittleEndian.Uint64(data[40:]))

	r.mu.Lock()
	r.live = ClockFromBytes(live)
	r.latched = latched
	r.lastSync = ts
	r.mu.Unlock()
	return nil
}
