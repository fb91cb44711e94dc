package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
)

var (
	ErrEmptyFile = errors.New("empty file")
	ErrNoSave    = errors.New("cartridge has nothing to save")
)

// ROM is a read-only mapping of a ROM image.
type ROM struct {
	file *os.File
	mmap mmap.MMap
}

// OpenROM maps the file at path read-only.
func OpenROM(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ROM: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat ROM: %w", err)
	}
	if fi.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("map ROM: %w", err)
	}
	return &ROM{file: f, mmap: m}, nil
}

// Bytes returns the mapped image. It must not be written.
func (r *ROM) Bytes() []byte { return r.mmap }

func (r *ROM) Close() error {
	err := r.mmap.Unmap()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Save is a battery save file mapped read-write: the cartridge RAM image
// followed by an optional clock footer.
type Save struct {
	path       string
	file       *os.File
	mmap       mmap.MMap
	ramSize    int
	footerSize int
}

// OpenSave maps the save file at path, creating or growing it to hold
// ramSize bytes of RAM plus footerSize bytes of footer. Existing contents are
// kept.
func OpenSave(path string, ramSize, footerSize int) (*Save, error) {
	size := ramSize + footerSize
	if size == 0 {
		return nil, ErrNoSave
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open save: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat save: %w", err)
	}
	switch {
	case fi.Size() == 0:
		log.Printf("storage: save file created. Path: %s\n", path)
	case fi.Size() < int64(size):
		log.Printf("storage: save file grown from %d to %d bytes. Path: %s\n", fi.Size(), size, path)
	default:
		log.Printf("storage: save file loaded. Path: %s\n", path)
	}
	if fi.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("resize save: %w", err)
		}
	}
	m, err := mmap.MapRegion(f, size, mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("map save: %w", err)
	}
	return &Save{path: path, file: f, mmap: m, ramSize: ramSize, footerSize: footerSize}, nil
}

func (s *Save) Path() string { return s.path }

// RAM returns the mapped cartridge RAM. Writes go straight to the file
// mapping.
func (s *Save) RAM() []byte { return s.mmap[:s.ramSize] }

// Footer returns the mapped footer, or nil if none was requested.
func (s *Save) Footer() []byte {
	if s.footerSize == 0 {
		return nil
	}
	return s.mmap[s.ramSize : s.ramSize+s.footerSize]
}

// Flush writes dirty pages back to the file.
func (s *Save) Flush() error {
	if err := s.mmap.Flush(); err != nil {
		return fmt.Errorf("flush save: %w", err)
	}
	return nil
}

// Close flushes and unmaps the save file.
func (s *Save) Close() error {
	err := s.Flush()
	if uerr := s.mmap.Unmap(); err == nil {
		err = uerr
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// SavePath returns the save file path for a ROM: the ROM's base name with a
// .sav extension, in dir or next to the ROM when dir is empty.
func SavePath(romPath, dir string) string {
	base := filepath.Base(romPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(filepath.Clean(romPath))
	}
	return filepath.Join(dir, name+".sav")
}
