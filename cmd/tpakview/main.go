package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/host"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/inspect"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/ui"
)

type CLIFlags struct {
	ROMPath string
	ROMsDir string
	SaveDir string
	SaveRAM bool // map battery RAM to ROM.sav
	Scale   int
	Title   string
	Verbose bool

	// headless
	Headless bool
	DumpOut  string
	Expect   string // expected CRC32 of the dumped ROM (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb/.gbc) to insert")
	flag.StringVar(&f.ROMsDir, "romsdir", "roms", "directory to browse for ROMs")
	flag.StringVar(&f.SaveDir, "savedir", "", "directory for .sav files (default: next to the ROM)")
	flag.BoolVar(&f.SaveRAM, "save", true, "map battery RAM and clock to ROM.sav")
	flag.IntVar(&f.Scale, "scale", 2, "window scale")
	flag.StringVar(&f.Title, "title", "tpakview", "window title")
	flag.BoolVar(&f.Verbose, "verbose", false, "log header details")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "dump the ROM through the pak without a window")
	flag.StringVar(&f.DumpOut, "out", "", "write the dumped ROM to path")
	flag.StringVar(&f.Expect, "expect", "", "assert dumped ROM CRC32 (hex)")
	flag.Parse()
	return f
}

func runHeadless(p *host.Port, outPath, expectCRC string) error {
	var buf bytes.Buffer
	start := time.Now()
	n, err := host.DumpROM(p.TransferPak(), &buf)
	if err != nil {
		return err
	}
	dur := time.Since(start)
	crc := crc32.ChecksumIEEE(buf.Bytes())

	log.Printf("headless: bytes=%d elapsed=%s crc32=%08x", n, dur.Truncate(time.Millisecond), crc)

	if outPath != "" {
		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
		log.Printf("wrote %s", outPath)
	}

	if expectCRC != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func main() {
	f := parseFlags()
	vlog := log.New(io.Discard, "", 0)
	if f.Verbose {
		vlog = log.New(os.Stderr, "", log.LstdFlags)
	}

	p := host.New(host.Config{SaveRAM: f.SaveRAM, SaveDir: f.SaveDir})
	if f.ROMPath != "" {
		// prefer absolute path for state/save placement consistency
		path := f.ROMPath
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if err := p.LoadROMFromFile(path); err != nil {
			log.Fatalf("load cart: %v", err)
		}
		if c := p.Cartridge(); c != nil {
			if h, err := cart.ParseHeader(c.ROM()); err == nil {
				for _, l := range inspect.HeaderLines(h) {
					vlog.Print(l)
				}
				vlog.Printf("header checksum ok=%t logo ok=%t", cart.HeaderChecksumOK(c.ROM()), cart.LogoOK(c.ROM()))
			}
		}
	}
	defer func() {
		if err := p.Eject(); err != nil && !errors.Is(err, host.ErrNoCartridge) {
			log.Printf("eject: %v", err)
		}
	}()

	if f.Headless {
		if err := runHeadless(p, f.DumpOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale, ROMsDir: f.ROMsDir}, p)
	if err := app.Run(); err != nil {
		log.Print(err)
	}
	cancel()
	if err := <-done; err != nil {
		log.Printf("port: %v", err)
	}
}
