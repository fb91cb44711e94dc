package joybus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

// Frames on a byte stream are a length byte followed by that many bytes. An
// empty reply frame means the port did not answer.

// ReadFrame reads one length-prefixed frame. It returns io.EOF only when the
// stream ends cleanly between frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	var n [1]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return nil, err
	}
	buf := make([]byte, n[0])
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteFrame writes one length-prefixed frame.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > 0xFF {
		return fmt.Errorf("frame of %d bytes too long", len(data))
	}
	_, err := w.Write(append([]byte{byte(len(data))}, data...))
	return err
}

// Handler answers one command frame.
type Handler interface {
	Handle(cmd []byte) ([]byte, error)
}

// Serve answers frames from rw until the stream ends or ctx is cancelled.
// Commands the handler rejects get an empty reply. A clean end of stream
// returns nil.
func Serve(ctx context.Context, rw io.ReadWriter, h Handler, vlog *log.Logger) error {
	for ctx.Err() == nil {
		cmd, err := ReadFrame(rw)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		reply, err := h.Handle(cmd)
		if err != nil {
			vlog.Printf("joybus: % X: %v", cmd, err)
			reply = nil
		}
		if err := WriteFrame(rw, reply); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
	return ctx.Err()
}
