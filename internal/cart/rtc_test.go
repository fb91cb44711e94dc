package cart

import (
	"errors"
	"testing"
	"time"
)

func TestClock_CarryChain(t *testing.T) {
	c := Clock{Seconds: 59, Minutes: 59, Hours: 23, Days: 511}
	c.advance(1)
	if c.Seconds != 0 || c.Minutes != 0 || c.Hours != 0 || c.Days != 0 || !c.Carry {
		t.Fatalf("rollover got %v", c)
	}

	c = Clock{Seconds: 30, Minutes: 59, Hours: 22, Days: 0xFF}
	c.advance(20)
	if c.Seconds != 50 || c.Minutes != 59 {
		t.Fatalf("advance 20s got %v", c)
	}
	c.advance(3600)
	if c.Hours != 23 || c.Days != 0xFF {
		t.Fatalf("advance 1h got %v", c)
	}
	c.advance(3600)
	if c.Hours != 0 || c.Days != 0x100 || c.Carry {
		t.Fatalf("advance into day 256 got %v", c)
	}
	b := c.Bytes()
	if b[RegDayLow] != 0x00 || b[RegDayHigh] != DayHighBit8 {
		t.Fatalf("day registers got %02X %02X", b[RegDayLow], b[RegDayHigh])
	}
}

func TestClock_Halt(t *testing.T) {
	c := Clock{Seconds: 10, Halt: true}
	c.advance(100)
	if c.Seconds != 10 {
		t.Fatalf("halted clock moved: %v", c)
	}
}

func TestClock_Bytes(t *testing.T) {
	c := Clock{Seconds: 1, Minutes: 2, Hours: 3, Days: 0x1AB, Halt: true, Carry: true}
	b := c.Bytes()
	want := [5]byte{1, 2, 3, 0xAB, DayHighBit8 | DayHighHalt | DayHighCarry}
	if b != want {
		t.Fatalf("Bytes got % X want % X", b, want)
	}
	if got := ClockFromBytes(b); got != c {
		t.Fatalf("ClockFromBytes got %v want %v", got, c)
	}
	// unused DH bits are dropped
	if got := ClockFromBytes([5]byte{0, 0, 0, 0, 0x3E}); got.Days != 0 || got.Halt || got.Carry {
		t.Fatalf("unused bits leaked: %v", got)
	}
}

func TestRTC_Sync(t *testing.T) {
	r := NewRTC()
	t0 := time.Unix(1_000_000, 0)
	r.Sync(t0)
	if got := r.Live(); got != (Clock{}) {
		t.Fatalf("first sync moved the clock: %v", got)
	}
	r.Sync(t0.Add(90 * time.Second))
	if got := r.Live(); got.Minutes != 1 || got.Seconds != 30 {
		t.Fatalf("sync +90s got %v", got)
	}
	// going backwards is ignored
	r.Sync(t0)
	r.Sync(t0.Add(91 * time.Second))
	if got := r.Live(); got.Seconds != 31 {
		t.Fatalf("sync after backwards step got %v", got)
	}
}

func TestRTC_LatchIsolatesReads(t *testing.T) {
	r := NewRTC()
	r.SetLive(Clock{Seconds: 40})
	r.Latch()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			r.Advance(1)
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		if got := r.readRegister(RegSeconds); got != 40 {
			t.Errorf("latched seconds got %d want 40", got)
			break
		}
	}
	<-done
	if got := r.Live().Minutes; got != 17 {
		t.Fatalf("live minutes got %d want 17", got)
	}
}

func TestRTC_Footer(t *testing.T) {
	prevNow := nowUnix
	nowUnix = func() int64 { return 1_600_000_000 }
	defer func() { nowUnix = prevNow }()

	r := NewRTC()
	r.SetLive(Clock{Seconds: 50, Minutes: 59, Hours: 23, Days: 0x1FF})
	r.Latch()
	r.SetLive(Clock{Seconds: 55, Minutes: 59, Hours: 23, Days: 0x1FF})
	data, err := r.MarshalBinary()
	if err != nil || len(data) != RTCFooterSize {
		t.Fatalf("MarshalBinary got %d bytes, %v", len(data), err)
	}
	if data[0] != 55 || data[20] != 50 || data[16] != DayHighBit8 {
		t.Fatalf("footer layout got % X", data[:24])
	}

	n := NewRTC()
	if err := n.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if n.Live() != r.Live() || n.Latched() != r.Latched() {
		t.Fatalf("footer round trip got %v / %v", n.Live(), n.Latched())
	}
	// ten seconds later the clock rolls over into day 0 with carry
	n.Sync(time.Unix(1_600_000_010, 0))
	if got := n.Live(); got.Days != 0 || !got.Carry || got.Seconds != 5 {
		t.Fatalf("catch-up after load got %v", got)
	}

	if err := n.UnmarshalBinary(data[:20]); !errors.Is(err, ErrRTCFooter) {
		t.Fatalf("short footer err got %v", err)
	}
}
