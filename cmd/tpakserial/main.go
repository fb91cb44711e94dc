package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/go-serial/serial"
	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/host"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/joybus"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/statsview"
)

var (
	elog *log.Logger // always output to stderr
	vlog *log.Logger // verbose output
)

func usage() {
	fmt.Println("tpakserial usage:")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial port of the controller adapter")
	baud := flag.Uint("baud", 115200, "baud rate")
	chartimeout := flag.Uint("chartimeout", 100, "inter-character timeout (ms)")
	romPath := flag.String("rom", "", "path to ROM (.gb/.gbc) to insert")
	saveDir := flag.String("savedir", "", "directory for .sav files (default: next to the ROM)")
	save := flag.Bool("save", true, "map battery RAM and clock to ROM.sav")
	verbose := flag.Bool("verbose", false, "log every rejected frame")
	stats := flag.String("statsview", "", "serve runtime charts at this address (e.g. localhost:12600)")
	flag.Parse()

	elog = log.New(os.Stderr, "", log.Lshortfile)
	if *verbose {
		vlog = log.New(os.Stderr, "", log.Lshortfile)
	} else {
		vlog = log.New(io.Discard, "", 0)
	}
	if *port == "" || *romPath == "" {
		elog.Println("Must specify -port and -rom")
		usage()
	}

	p := host.New(host.Config{SaveRAM: *save, SaveDir: *saveDir})
	if err := p.LoadROMFromFile(*romPath); err != nil {
		elog.Fatalf("load cart: %v", err)
	}

	options := serial.OpenOptions{
		PortName:              *port,
		BaudRate:              *baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: *chartimeout,
		ParityMode:            serial.PARITY_NONE,
	}
	f, err := serial.Open(options)
	if err != nil {
		p.Eject()
		elog.Fatalf("open %s: %v", *port, err)
	}
	log.Printf("serving %s at %d baud", *port, *baud)
	if *stats != "" {
		stopStats := statsview.Launch(*stats, os.Stderr)
		defer stopStats()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(ctx) })
	g.Go(func() error {
		// reads time out between frames; keep serving until cancelled
		for ctx.Err() == nil {
			err := joybus.Serve(ctx, f, p, vlog)
			switch {
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, io.ErrUnexpectedEOF):
				vlog.Printf("dropped partial frame: %v", err)
			case err != nil:
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return f.Close()
	})

	err = g.Wait()
	if ejectErr := p.Eject(); ejectErr != nil {
		elog.Printf("eject: %v", ejectErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		elog.Fatal(err)
	}
}
