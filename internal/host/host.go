package host

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/joybus"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/storage"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/tpak"
)

var ErrNoCartridge = errors.New("no cartridge inserted")

// Port is one controller port with a Transfer Pak plugged in. It owns the
// files backing the inserted cartridge.
//
// Handle, Load and Eject are called from one goroutine. Run may be started
// alongside to keep the cartridge clock and save file current.
type Port struct {
	cfg Config
	tp  *tpak.TransferPak
	jb  *joybus.Port

	mu      sync.Mutex // guards the fields below against Run
	cart    *cart.Cartridge
	rom     *storage.ROM
	save    *storage.Save
	romPath string

	now func() time.Time
}

func New(cfg Config) *Port {
	cfg.Defaults()
	tp := tpak.New()
	return &Port{cfg: cfg, tp: tp, jb: joybus.NewPort(tp), now: time.Now}
}

func (p *Port) TransferPak() *tpak.TransferPak { return p.tp }

// Handle executes one controller command frame against the pak.
func (p *Port) Handle(cmd []byte) ([]byte, error) {
	return p.jb.Handle(cmd)
}

// Cartridge returns the inserted cartridge, or nil.
func (p *Port) Cartridge() *cart.Cartridge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cart
}

// ROMPath returns the currently loaded ROM file path, if any.
func (p *Port) ROMPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.romPath
}

// LoadROMFromFile replaces the current cartridge with a ROM from disk. Battery
// RAM and the clock are restored from the save file when SaveRAM is set.
func (p *Port) LoadROMFromFile(path string) error {
	if err := p.Eject(); err != nil && !errors.Is(err, ErrNoCartridge) {
		log.Printf("host: eject before load: %v", err)
	}

	rom, err := storage.OpenROM(path)
	if err != nil {
		return err
	}
	c, err := cart.NewCartridge(rom.Bytes(), path)
	if c == nil {
		rom.Close()
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err != nil {
		log.Printf("host: %s: %v", filepath.Base(path), err)
	}
	if len(rom.Bytes()) < c.ROMSize {
		log.Printf("host: %s: image is %d bytes, header says %d", filepath.Base(path), len(rom.Bytes()), c.ROMSize)
	}

	var save *storage.Save
	footer := 0
	if c.RTC() != nil {
		footer = cart.RTCFooterSize
	}
	// a battery type whose header declares no RAM has nothing to keep
	if p.cfg.SaveRAM && cart.HasBattery(byte(c.Type)) && c.RAMSize+footer > 0 {
		save, err = storage.OpenSave(storage.SavePath(path, p.cfg.SaveDir), c.RAMSize, footer)
		if err != nil {
			rom.Close()
			return err
		}
		c.SetRAM(save.RAM())
		if f := save.Footer(); f != nil && !allZero(f) {
			if err := c.RTC().UnmarshalBinary(f); err != nil {
				log.Printf("host: %s: clock not restored: %v", filepath.Base(path), err)
			}
		}
	} else if c.RAMSize > 0 {
		c.SetRAM(make([]byte, c.RAMSize))
	}

	p.mu.Lock()
	p.cart, p.rom, p.save, p.romPath = c, rom, save, path
	p.mu.Unlock()
	p.tp.Insert(c)

	log.Printf("host: inserted %q (%s, %d ROM banks, %d RAM banks)", c.TitleString(), c.Type, c.NumROMBanks, c.NumRAMBanks)
	return nil
}

// Eject removes the cartridge, writing back battery RAM and the clock.
func (p *Port) Eject() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cart == nil {
		return ErrNoCartridge
	}
	p.tp.Eject()

	var errs []error
	if p.save != nil {
		p.writeFooter()
		errs = append(errs, p.save.Close())
		log.Printf("host: saved %s", p.save.Path())
	}
	errs = append(errs, p.rom.Close())
	p.cart, p.rom, p.save, p.romPath = nil, nil, nil, ""
	return errors.Join(errs...)
}

// Flush writes battery RAM and the clock footer to disk.
func (p *Port) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.save == nil {
		return nil
	}
	p.writeFooter()
	return p.save.Flush()
}

// writeFooter stores the clock in the save footer. p.mu must be held.
func (p *Port) writeFooter() {
	f := p.save.Footer()
	if f == nil || p.cart.RTC() == nil {
		return
	}
	data, _ := p.cart.RTC().MarshalBinary()
	copy(f, data)
}

// SyncClock advances the cartridge clock to wall time.
func (p *Port) SyncClock() {
	p.mu.Lock()
	c := p.cart
	p.mu.Unlock()
	if c != nil && c.RTC() != nil {
		c.RTC().Sync(p.now())
	}
}

// Run keeps the cartridge clock synced and the save file flushed until ctx is
// cancelled.
func (p *Port) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.NewTicker(p.cfg.TickInterval)
		defer t.Stop()
		p.SyncClock()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				p.SyncClock()
			}
		}
	})
	g.Go(func() error {
		t := time.NewTicker(p.cfg.FlushInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				if err := p.Flush(); err != nil {
					return err
				}
			}
		}
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// --- Save/Load state ---
type portState struct {
	ROMPath string
	Pak     tpak.State
	Cart    []byte
}

func (p *Port) SaveState() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cart == nil {
		return nil, ErrNoCartridge
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(portState{ROMPath: p.romPath, Pak: p.tp.State(), Cart: p.cart.SaveState()}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Port) LoadState(data []byte) error {
	var s portState
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cart == nil {
		return ErrNoCartridge
	}
	if err := p.cart.LoadState(s.Cart); err != nil {
		return err
	}
	p.tp.SetState(s.Pak)
	return nil
}

// StatePath returns the file for a save-state slot of the current ROM.
func (p *Port) StatePath(slot int) string {
	base := filepath.Base(p.ROMPath())
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.cfg.StatesDir, fmt.Sprintf("%s.slot%d.state", name, slot+1))
}

func (p *Port) SaveStateToFile(path string) error {
	data, err := p.SaveState()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (p *Port) LoadStateFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return p.LoadState(data)
}

// FindROMs recursively collects .gb/.gbc files under dir.
func FindROMs(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		low := strings.ToLower(d.Name())
		if strings.HasSuffix(low, ".gb") || strings.HasSuffix(low, ".gbc") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
