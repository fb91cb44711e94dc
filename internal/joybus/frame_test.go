package joybus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"
)

// loopback feeds in to the server and collects what it writes.
type loopback struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *loopback) Write(p []byte) (int, error) { return l.out.Write(p) }

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := WriteFrame(&buf, nil); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf)
	if err != nil || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("frame got % X, %v", got, err)
	}
	got, err = ReadFrame(&buf)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty frame got % X, %v", got, err)
	}
	if _, err := ReadFrame(&buf); !errors.Is(err, io.EOF) {
		t.Fatalf("end of stream err got %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader([]byte{4, 1})); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("truncated frame err got %v", err)
	}
	if err := WriteFrame(&buf, make([]byte, 256)); err == nil {
		t.Fatalf("oversized frame accepted")
	}
}

func TestServe(t *testing.T) {
	pt, _, _ := newPakPort(t)
	var in bytes.Buffer
	WriteFrame(&in, []byte{CmdInfo})
	WriteFrame(&in, command(CmdWrite, 0x8000, fill(0x84)))
	WriteFrame(&in, command(CmdRead, 0x8000, nil))
	WriteFrame(&in, []byte{0x13}) // unknown: empty reply

	lb := &loopback{in: bytes.NewReader(in.Bytes())}
	if err := Serve(context.Background(), lb, pt, log.New(io.Discard, "", 0)); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	info, _ := ReadFrame(&lb.out)
	if !bytes.Equal(info, []byte{0x05, 0x00, pakPresent}) {
		t.Fatalf("info reply % X", info)
	}
	wr, _ := ReadFrame(&lb.out)
	if len(wr) != 1 || wr[0] != DataCRC(fill(0x84)) {
		t.Fatalf("write reply % X", wr)
	}
	rd, _ := ReadFrame(&lb.out)
	if len(rd) != BlockSize+1 || rd[0] != 0x84 || rd[BlockSize] != DataCRC(fill(0x84)) {
		t.Fatalf("read reply % X", rd)
	}
	bad, err := ReadFrame(&lb.out)
	if err != nil || len(bad) != 0 {
		t.Fatalf("unknown command reply % X, %v", bad, err)
	}
}

func TestServe_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lb := &loopback{in: bytes.NewReader([]byte{1, CmdInfo})}
	if err := Serve(ctx, lb, NewPort(nil), log.New(io.Discard, "", 0)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err got %v", err)
	}
}
